// Package worker keeps a process's transaction list in step with changes
// published by other processes sharing the same backend.
package worker

import (
	"context"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Reloader re-reads the persisted transaction list. A failed reload must
// leave the current list in place.
type Reloader interface {
	Reload(ctx context.Context) error
	Version() uint64
}

// Watcher delivers change events until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, handler func(core.ChangeEvent) error) error
}

// SyncWorker reloads the store when another process reports a change.
type SyncWorker struct {
	store   Reloader
	source  string
	logger  *log.Logger
	reloads atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

// NewSyncWorker creates a worker. Events stamped with source are this
// process's own and are skipped.
func NewSyncWorker(store Reloader, source string, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		store:  store,
		source: source,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes a single change event.
func (w *SyncWorker) HandleEvent(ctx context.Context, e core.ChangeEvent) error {
	if e.Source != "" && e.Source == w.source {
		w.skipped.Add(1)
		w.logger.DebugContext(ctx, "Skipping own change event",
			log.FieldRoutingKey, string(e.Kind), log.FieldTxID, e.Transaction.ID)
		return nil
	}

	if err := w.store.Reload(ctx); err != nil {
		// The in-memory list stays authoritative; the next event retries.
		w.failed.Add(1)
		w.logger.WarnContext(ctx, "Reload after remote change failed, keeping current list",
			log.FieldRoutingKey, string(e.Kind),
			log.FieldTxID, e.Transaction.ID,
			log.FieldError, err,
			"source", e.Source)
		return nil
	}
	w.reloads.Add(1)
	w.logger.InfoContext(ctx, "Reloaded transactions after remote change",
		log.FieldRoutingKey, string(e.Kind),
		log.FieldTxID, e.Transaction.ID,
		"version", w.store.Version(),
		"source", e.Source)
	return nil
}

// Run consumes events from watcher until ctx is done. Cancellation is not
// an error.
func (w *SyncWorker) Run(ctx context.Context, watcher Watcher) error {
	w.logger.InfoContext(ctx, "Sync worker started")
	err := watcher.Watch(ctx, func(e core.ChangeEvent) error {
		return w.HandleEvent(ctx, e)
	})
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Sync worker stopped",
			"reloads", w.reloads.Load(), "skipped", w.skipped.Load(), "failed", w.failed.Load())
		return nil
	}
	return err
}

// Reloads returns how many remote changes triggered a reload.
func (w *SyncWorker) Reloads() int64 {
	return w.reloads.Load()
}

// Failed returns how many reloads were abandoned because the record could
// not be read.
func (w *SyncWorker) Failed() int64 {
	return w.failed.Load()
}

// Skipped returns how many own events were ignored.
func (w *SyncWorker) Skipped() int64 {
	return w.skipped.Load()
}
