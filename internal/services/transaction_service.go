package services

import (
	"context"
	"strings"

	"fintrack/internal/core"
)

// TransactionStore is the store surface the service drives.
type TransactionStore interface {
	Add(ctx context.Context, d core.Draft) (core.Transaction, error)
	Delete(ctx context.Context, id string) bool
	List() []core.Transaction
}

// DraftInput is a transaction as typed into a form: every field is text.
type DraftInput struct {
	Merchant string `json:"merchant"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Type     string `json:"type"`
}

// Draft parses the input. Status defaults to paid and type to expense, as in
// the add dialog.
func (in DraftInput) Draft() (core.Draft, error) {
	d := core.Draft{
		Merchant: strings.TrimSpace(in.Merchant),
		Category: strings.TrimSpace(in.Category),
		Status:   core.StatusPaid,
		Type:     core.TypeExpense,
	}

	if d.Merchant == "" {
		return core.Draft{}, &core.ValidationError{Field: "merchant", Err: core.ErrEmptyMerchant}
	}
	if d.Category == "" {
		return core.Draft{}, &core.ValidationError{Field: "category", Err: core.ErrEmptyCategory}
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Draft{}, &core.ValidationError{Field: "amount", Err: err}
	}
	d.Amount = amount

	if strings.TrimSpace(in.Status) != "" {
		if d.Status, err = core.ParseStatus(in.Status); err != nil {
			return core.Draft{}, &core.ValidationError{Field: "status", Err: err}
		}
	}
	if strings.TrimSpace(in.Type) != "" {
		if d.Type, err = core.ParseType(in.Type); err != nil {
			return core.Draft{}, &core.ValidationError{Field: "type", Err: err}
		}
	}
	if err := d.Validate(); err != nil {
		return core.Draft{}, err
	}
	return d, nil
}

// TransactionService turns text input into store operations.
type TransactionService struct {
	store TransactionStore
}

func NewTransactionService(store TransactionStore) *TransactionService {
	return &TransactionService{store: store}
}

// Create parses in and adds the resulting draft.
func (s *TransactionService) Create(ctx context.Context, in DraftInput) (core.Transaction, error) {
	d, err := in.Draft()
	if err != nil {
		return core.Transaction{}, err
	}
	return s.store.Add(ctx, d)
}

// Delete removes every id and returns the ids that were not found.
func (s *TransactionService) Delete(ctx context.Context, ids ...string) []string {
	var missing []string
	for _, id := range ids {
		if !s.store.Delete(ctx, id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// List returns the transactions matching query, newest first.
func (s *TransactionService) List(query string) []core.Transaction {
	return core.Filter(s.store.List(), query)
}
