package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"

	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// DateLayout is the ISO calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

type (
	Status string

	Type string

	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID       string `json:"id"`
		Amount   Money  `json:"amount"`
		Status   Status `json:"status"`
		Merchant string `json:"merchant"`
		Category string `json:"category"`
		Date     Date   `json:"date"`
		Type     Type   `json:"type"`
	}

	// Draft is caller-supplied transaction data. The store assigns ID and Date.
	Draft struct {
		Amount   Money
		Status   Status
		Merchant string
		Category string
		Type     Type
	}
)

var (
	ErrEmptyMerchant = errors.New("empty merchant")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidType   = errors.New("invalid type")
	ErrInvalidDate   = errors.New("invalid date")
)

// ValidationError reports a draft field that failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseStatus converts user input into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusFailed:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// UnmarshalText rejects unknown statuses so a malformed record fails to decode.
func (s *Status) UnmarshalText(b []byte) error {
	st := Status(b)
	if !st.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(b))
	}
	*s = st
	return nil
}

// ParseType converts user input into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

func (t Type) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (t Type) String() string { return string(t) }

func (t *Type) UnmarshalText(b []byte) error {
	tt := Type(b)
	if !tt.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, string(b))
	}
	*t = tt
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalText and MarshalJSON override the RFC 3339 encodings promoted from time.Time.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	return []byte(d.Format(DateLayout)), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	b, err := d.MarshalText()
	if err != nil {
		return nil, err
	}
	return strconv.AppendQuote(nil, string(b)), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	return d.UnmarshalText([]byte(s))
}

// Validate checks the fields a caller is responsible for. Amounts must be
// strictly positive.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Merchant) == "" {
		return &ValidationError{Field: "merchant", Err: ErrEmptyMerchant}
	}
	if strings.TrimSpace(d.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if err := d.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if !d.Status.IsValid() {
		return &ValidationError{Field: "status", Err: ErrInvalidStatus}
	}
	if !d.Type.IsValid() {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	return nil
}

// Transaction builds the transaction for this draft with the store-assigned fields.
func (d Draft) Transaction(id string, date Date) Transaction {
	return Transaction{
		ID:       id,
		Amount:   d.Amount,
		Status:   d.Status,
		Merchant: strings.TrimSpace(d.Merchant),
		Category: strings.TrimSpace(d.Category),
		Date:     date,
		Type:     d.Type,
	}
}

func (t Transaction) IsIncome() bool  { return t.Type == TypeIncome }
func (t Transaction) IsExpense() bool { return t.Type == TypeExpense }
