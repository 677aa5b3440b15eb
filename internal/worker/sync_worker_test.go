package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
	"fintrack/internal/store"
)

type countingStore struct {
	loads int
	err   error
}

func (s *countingStore) Reload(context.Context) error {
	s.loads++
	return s.err
}

func (s *countingStore) Version() uint64 { return uint64(s.loads) }

// flakyKV fails the next failGets reads and otherwise defers to memory.
type flakyKV struct {
	*memory.Store
	mu       sync.Mutex
	failGets int
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.failGets > 0
	if fail {
		f.failGets--
	}
	f.mu.Unlock()
	if fail {
		return nil, false, errors.New("connection reset")
	}
	return f.Store.Get(ctx, key)
}

type fakeWatcher struct {
	events []core.ChangeEvent
	err    error
}

func (f fakeWatcher) Watch(ctx context.Context, handler func(core.ChangeEvent) error) error {
	for _, e := range f.events {
		if err := handler(e); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleEventSkipsOwnSource(t *testing.T) {
	st := &countingStore{}
	w := NewSyncWorker(st, "me", nil)
	ctx := context.Background()

	tests := []struct {
		source    string
		wantLoads int
	}{
		{"me", 0},
		{"other", 1},
		{"", 2},
	}
	for _, tt := range tests {
		if err := w.HandleEvent(ctx, core.ChangeEvent{Kind: core.TransactionAdded, Source: tt.source}); err != nil {
			t.Fatalf("HandleEvent(%q): %v", tt.source, err)
		}
		if st.loads != tt.wantLoads {
			t.Fatalf("after source %q loads = %d, want %d", tt.source, st.loads, tt.wantLoads)
		}
	}
	if w.Reloads() != 2 || w.Skipped() != 1 {
		t.Fatalf("reloads=%d skipped=%d", w.Reloads(), w.Skipped())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	st := &countingStore{}
	w := NewSyncWorker(st, "me", nil)
	ctx, cancel := context.WithCancel(context.Background())

	watcher := fakeWatcher{events: []core.ChangeEvent{
		{Kind: core.TransactionDeleted, Source: "other"},
	}}
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, watcher) }()
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run() = %v, want nil after cancel", err)
	}
	if st.loads != 1 {
		t.Fatalf("loads = %d, want 1", st.loads)
	}
}

func TestRunReturnsWatchError(t *testing.T) {
	boom := errors.New("message channel closed")
	w := NewSyncWorker(&countingStore{}, "me", nil)
	if err := w.Run(context.Background(), fakeWatcher{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("Run() = %v, want %v", err, boom)
	}
}

func TestHandleEventReloadFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Store: memory.New()}
	if err := kv.Set(ctx, store.DefaultKey, []byte(`[]`)); err != nil {
		t.Fatalf("seed storage: %v", err)
	}
	s := store.Open(ctx, kv)
	if _, err := s.Add(ctx, core.Draft{
		Amount:   core.NewMoney(42),
		Status:   core.StatusPaid,
		Merchant: "Mine",
		Category: "Food",
		Type:     core.TypeExpense,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	w := NewSyncWorker(s, "me", nil)
	kv.failGets = 1
	if err := w.HandleEvent(ctx, core.ChangeEvent{Kind: core.TransactionAdded, Source: "other"}); err != nil {
		t.Fatalf("HandleEvent() = %v, want nil", err)
	}
	if w.Failed() != 1 || w.Reloads() != 0 {
		t.Fatalf("failed=%d reloads=%d, want 1 and 0", w.Failed(), w.Reloads())
	}
	if got := s.List(); len(got) != 1 || got[0].Merchant != "Mine" {
		t.Fatalf("list after failed reload = %+v", got)
	}

	if _, err := s.Add(ctx, core.Draft{
		Amount:   core.NewMoney(3),
		Status:   core.StatusPending,
		Merchant: "Next",
		Category: "Food",
		Type:     core.TypeExpense,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	reopened := store.Open(ctx, kv).List()
	if len(reopened) != 2 || reopened[0].Merchant != "Next" || reopened[1].Merchant != "Mine" {
		t.Fatalf("persisted list = %+v, want [Next Mine]", reopened)
	}
	for _, tx := range reopened {
		if tx.ID == "tx-1" {
			t.Fatalf("seed transaction persisted: %+v", reopened)
		}
	}
}

func TestHandleEventMissingRecordKeepsList(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Store: memory.NewWith(map[string][]byte{store.DefaultKey: []byte(`[]`)})}
	s := store.Open(ctx, kv)

	kv.Store = memory.New()
	w := NewSyncWorker(s, "me", nil)
	if err := w.HandleEvent(ctx, core.ChangeEvent{Kind: core.TransactionDeleted, Source: "other"}); err != nil {
		t.Fatalf("HandleEvent() = %v", err)
	}
	if w.Failed() != 1 {
		t.Fatalf("failed = %d, want 1", w.Failed())
	}
	if got := s.List(); len(got) != 0 {
		t.Fatalf("missing record replaced the list with %d transactions", len(got))
	}
}
