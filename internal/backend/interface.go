package backend

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
	"fintrack/internal/store"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult carries the storage, the optional change notifier and their
// combined cleanup. Notifier and Broker are nil when AMQP is disabled or
// unreachable; when set, Notifier is Broker.
type BackendResult struct {
	Backend  storage.KV
	Notifier store.Notifier
	Broker   *amqp.Client
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// file
	DataDirectory string

	// sqlite
	SQLiteDBPath string

	// postgres
	PostgresURL string

	// Optional change notifications
	AMQPURL      string
	AMQPExchange string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	NoneBackend     BackendType = "none"
	FileBackend     BackendType = "file"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, NoneBackend, FileBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
