// Package store owns the authoritative transaction list for a session and
// keeps the durable record in sync with it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const maxIDAttempts = 5

// ErrIDExhausted is returned when the id generator keeps producing ids that
// are already taken.
var ErrIDExhausted = errors.New("could not generate a unique transaction id")

var (
	// ErrNoRecord is returned by Reload when nothing is stored under the key.
	ErrNoRecord = errors.New("no stored transactions")
	// ErrMalformedRecord wraps decode failures of the stored record.
	ErrMalformedRecord = errors.New("stored transactions are malformed")
)

// Store holds the ordered transaction list, newest first. It is safe for
// concurrent use; every mutation rewrites the full record under its key.
type Store struct {
	kv       storage.KV
	key      string
	now      func() time.Time
	newID    func() string
	loc      *time.Location
	logger   *log.Logger
	notifier Notifier

	mu      sync.RWMutex
	txs     []core.Transaction
	version uint64
}

// Open builds a store over kv and loads the persisted list. It never fails:
// an absent or unreadable record yields the seed set.
func Open(ctx context.Context, kv storage.KV, opts ...Option) *Store {
	if kv == nil {
		kv = discard{}
	}
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		now:    time.Now,
		newID:  newUUID,
		loc:    time.Local,
		logger: log.Discard().WithComponent(log.ComponentStore),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(ctx)
	return s
}

// Key returns the storage key the store reads and writes.
func (s *Store) Key() string { return s.key }

// Load replaces the in-memory list with the persisted record and returns a
// copy of it. A missing key, a read error or a malformed record all fall back
// to the seed transactions.
func (s *Store) Load(ctx context.Context) []core.Transaction {
	txs, err := s.read(ctx)
	switch {
	case errors.Is(err, ErrNoRecord):
		s.logger.InfoContext(ctx, "No stored transactions, using seed data", log.FieldKey, s.key)
		txs = core.SeedTransactions()
	case err != nil:
		s.logger.WarnContext(ctx, "Failed to load transactions, using seed data",
			log.FieldKey, s.key, log.FieldOperation, log.OpLoad, log.FieldError, err)
		txs = core.SeedTransactions()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = txs
	s.version++
	return clone(txs)
}

// Reload replaces the in-memory list with the persisted record. Unlike Load
// it never substitutes the seed set: when the record cannot be read, is
// missing or is malformed, the current list is kept and the error returned.
func (s *Store) Reload(ctx context.Context) error {
	txs, err := s.read(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = txs
	s.version++
	return nil
}

func (s *Store) read(ctx context.Context) ([]core.Transaction, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	if !found {
		return nil, ErrNoRecord
	}
	txs, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	txs, dropped := dedupe(txs)
	if dropped > 0 {
		s.logger.WarnContext(ctx, "Dropped transactions with duplicate ids",
			log.FieldKey, s.key, log.FieldCount, dropped)
	}
	s.logger.DebugContext(ctx, "Transactions loaded", log.FieldKey, s.key, log.FieldCount, len(txs))
	return txs, nil
}

// Add validates d, assigns it an id and today's date, and prepends it to the
// list. A failed write is logged and does not undo the in-memory change.
func (s *Store) Add(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}
	today := core.DateOf(s.now().In(s.loc))

	s.mu.Lock()
	id, err := s.uniqueID()
	if err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	tx := d.Transaction(id, today)

	txs := make([]core.Transaction, 0, len(s.txs)+1)
	txs = append(txs, tx)
	txs = append(txs, s.txs...)
	s.txs = txs
	s.version++
	s.persistLocked(ctx, log.OpAdd)
	count := len(s.txs)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction added", log.NewFields().
		WithTransaction(tx.ID, tx.Merchant, tx.Category, tx.Amount.String(), tx.Type.String()).
		WithOperation(log.OpAdd).ToSlice()...)

	s.notify(ctx, core.ChangeEvent{Kind: core.TransactionAdded, Transaction: tx, Count: count, OccurredAt: s.now()})
	return tx, nil
}

// Delete removes the transaction with the given id and reports whether one
// was found. The record is rewritten either way.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	var (
		removed core.Transaction
		found   bool
	)
	kept := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if !found && tx.ID == id {
			removed, found = tx, true
			continue
		}
		kept = append(kept, tx)
	}
	if found {
		s.txs = kept
		s.version++
	}
	s.persistLocked(ctx, log.OpDelete)
	count := len(s.txs)
	s.mu.Unlock()

	if !found {
		s.logger.DebugContext(ctx, "Delete of unknown transaction ignored", log.FieldTxID, id)
		return false
	}

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTxID, id, log.FieldCount, count)
	s.notify(ctx, core.ChangeEvent{Kind: core.TransactionDeleted, Transaction: removed, Count: count, OccurredAt: s.now()})
	return true
}

// List returns a copy of the current list, newest first.
func (s *Store) List() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.txs)
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// Version increases on every load and every mutation that changes the list.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns the list together with the version it belongs to.
func (s *Store) Snapshot() ([]core.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.txs), s.version
}

func (s *Store) uniqueID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id != "" && !s.hasLocked(id) {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

func (s *Store) hasLocked(id string) bool {
	for _, tx := range s.txs {
		if tx.ID == id {
			return true
		}
	}
	return false
}

// persistLocked writes the full list. Callers hold s.mu so that concurrent
// mutations reach storage in the order they were applied.
func (s *Store) persistLocked(ctx context.Context, op string) {
	raw, err := json.Marshal(s.txs)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode transactions",
			log.FieldOperation, op, log.FieldError, err)
		return
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transactions",
			log.FieldKey, s.key, log.FieldOperation, op, log.FieldError, err)
	}
}

func (s *Store) notify(ctx context.Context, event core.ChangeEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			log.FieldOperation, log.OpNotify, log.FieldTxID, event.Transaction.ID, log.FieldError, err)
	}
}

// decode parses a stored record. Anything other than a JSON array of
// well-formed transactions is an error; an empty array is valid.
func decode(raw []byte) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	if txs == nil {
		return nil, errors.New("decode transactions: record is not an array")
	}
	for i, tx := range txs {
		if err := checkStored(tx); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return txs, nil
}

func checkStored(tx core.Transaction) error {
	switch {
	case tx.ID == "":
		return errors.New("missing id")
	case !tx.Status.IsValid():
		return core.ErrInvalidStatus
	case !tx.Type.IsValid():
		return core.ErrInvalidType
	case tx.Date.IsZero():
		return core.ErrInvalidDate
	case tx.Amount.IsNegative():
		return core.ErrInvalidAmount
	}
	return nil
}

// dedupe keeps the first transaction for every id.
func dedupe(txs []core.Transaction) ([]core.Transaction, int) {
	seen := make(map[string]struct{}, len(txs))
	out := txs[:0:0]
	for _, tx := range txs {
		if _, ok := seen[tx.ID]; ok {
			continue
		}
		seen[tx.ID] = struct{}{}
		out = append(out, tx)
	}
	return out, len(txs) - len(out)
}

func clone(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	return out
}

// discard stands in when no storage is supplied.
type discard struct{}

func (discard) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (discard) Set(context.Context, string, []byte) error         { return nil }
