package amqp

import (
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
)

// RoutingKeyPattern binds a queue to every transaction change.
const RoutingKeyPattern = "transaction.*"

// RoutingKey returns the topic routing key for an event kind.
func RoutingKey(kind core.ChangeKind) string {
	return string(kind)
}

// EncodeEvent converts a change event into a message body.
func EncodeEvent(e core.ChangeEvent) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses a message body produced by EncodeEvent.
func DecodeEvent(data []byte) (core.ChangeEvent, error) {
	var e core.ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return core.ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	switch e.Kind {
	case core.TransactionAdded, core.TransactionDeleted:
	default:
		return core.ChangeEvent{}, fmt.Errorf("decode change event: unknown kind %q", e.Kind)
	}
	return e, nil
}
