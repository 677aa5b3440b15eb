package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/services"
)

func newPostRequest(contentType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestRequestBodyParser(t *testing.T) {
	want := services.DraftInput{Merchant: "Shop", Amount: "9.99", Category: "Misc", Status: "pending", Type: "expense"}

	tests := []struct {
		name        string
		contentType string
		body        string
		wantJSON    bool
	}{
		{"json", "application/json", `{"merchant":"Shop","amount":"9.99","category":"Misc","status":"pending","type":"expense"}`, true},
		{"json with charset", "application/json; charset=utf-8", `{"merchant":" Shop ","amount":9.99,"category":"Misc","status":"pending","type":"expense"}`, true},
		{"form", "application/x-www-form-urlencoded", "merchant=Shop&amount=9.99&category=Misc&status=pending&type=expense", false},
		{"sniffed json", "", `{"merchant":"Shop","amount":"9.99","category":"Misc","status":"pending","type":"expense"}`, true},
		{"sniffed form", "", "merchant=Shop&amount=9.99&category=Misc&status=pending&type=expense", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewRequestBodyParser(newPostRequest(tt.contentType, tt.body))
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Fatalf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			if got := p.DraftInput(); got != want {
				t.Fatalf("DraftInput() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantErr     error
	}{
		{"unsupported type", "text/plain", "hello", ErrUnsupportedBody},
		{"bad media type", "application/json; =", "{}", ErrUnsupportedBody},
		{"too large", "application/x-www-form-urlencoded", "merchant=" + strings.Repeat("a", maxBodyBytes), ErrBodyTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRequestBodyParser(newPostRequest(tt.contentType, tt.body)).Parse()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	for _, body := range []string{"[1,2]", `{"amount":1}{"amount":2}`} {
		if err := NewRequestBodyParser(newPostRequest("application/json", body)).Parse(); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestRequestBodyParser_KeepsNumericAmountDigits(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"amount":12345678901234567.89}`, "12345678901234567.89"},
		{`{"amount":0.1000000000000000055}`, "0.1000000000000000055"},
		{`{"amount":42}`, "42"},
	}
	for _, tt := range tests {
		p := NewRequestBodyParser(newPostRequest("application/json", tt.body))
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse(%s) error = %v", tt.body, err)
		}
		if got := p.Get("amount"); got != tt.want {
			t.Fatalf("amount from %s = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestRequestBodyParser_SanitizesControlCharacters(t *testing.T) {
	p := NewRequestBodyParser(newPostRequest("application/json", `{"merchant":"Sh\u0000op\u0007"}`))
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.Get("merchant"); got != "Shop" {
		t.Fatalf("Get(merchant) = %q, want %q", got, "Shop")
	}
	if got := p.Get("missing"); got != "" {
		t.Fatalf("Get(missing) = %q, want empty", got)
	}
}

func TestParseMonths(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback int
		want     int
		wantErr  bool
	}{
		{"absent uses fallback", "", 6, 6, false},
		{"absent with zero fallback", "", 0, 6, false},
		{"explicit", "12", 6, 12, false},
		{"lower bound", "1", 6, 1, false},
		{"upper bound", "24", 6, 24, false},
		{"zero", "0", 6, 0, true},
		{"too large", "25", 6, 0, true},
		{"negative", "-3", 6, 0, true},
		{"not a number", "six", 6, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{}
			if tt.raw != "" {
				q.Set("months", tt.raw)
			}
			got, err := ParseMonths(q, tt.fallback)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonths() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("ParseMonths() = %d, want %d", got, tt.want)
			}
		})
	}
}
