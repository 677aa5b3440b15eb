package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{".5", "0.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.00", "", false},
		{"abc", "", false},
		{"NaN", "", false},
		{"Inf", "", false},
		{"1e3", "", false},
		{"1.2.3", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := NewMoney(0.01).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := NewMoney(0).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := NewMoney(-3).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	sum := NewMoney(0.1).Add(NewMoney(0.2))
	if !sum.Equal(NewMoney(0.3)) {
		t.Fatalf("0.1 + 0.2 = %s, want 0.3", sum)
	}
	if got := NewMoney(10).Sub(NewMoney(12.5)); !got.IsNegative() || got.String() != "-2.5" {
		t.Fatalf("10 - 12.5 = %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}{NewMoney(5200), NewMoney(5.5)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":5200,"b":5.5}` {
		t.Fatalf("unexpected encoding: %s", b)
	}

	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":45.99,"b":"12.30"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.A.Equal(NewMoney(45.99)) || !v.B.Equal(NewMoney(12.3)) {
		t.Fatalf("unexpected values: %s %s", v.A, v.B)
	}

	if err := json.Unmarshal([]byte(`{"a":"lots"}`), &v); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		m        Money
		currency string
		want     string
	}{
		{NewMoney(1200), "USD", "$1,200.00"},
		{NewMoney(5.5), "usd", "$5.50"},
		{NewMoney(45.999), "USD", "$46.00"},
		{NewMoney(12), "ZZZ", "$12.00"},
	}
	for _, tc := range cases {
		if got := tc.m.Format(tc.currency); got != tc.want {
			t.Errorf("Format(%s, %s) = %q, want %q", tc.m, tc.currency, got, tc.want)
		}
	}
}
