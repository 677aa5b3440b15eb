package core

import "time"

// ChangeKind names a store mutation.
type ChangeKind string

const (
	TransactionAdded   ChangeKind = "transaction.added"
	TransactionDeleted ChangeKind = "transaction.deleted"
)

// ChangeEvent describes a single store mutation for downstream consumers.
type ChangeEvent struct {
	Kind        ChangeKind  `json:"kind"`
	Transaction Transaction `json:"transaction"`
	Count       int         `json:"count"` // list length after the mutation
	OccurredAt  time.Time   `json:"occurredAt"`
	Source      string      `json:"source,omitempty"` // publishing process, set by the broker client
}
