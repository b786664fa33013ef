package messaging

import (
	"context"
)

// Broker defines the interface for the realtime change-notification channel.
// Subscribe delivers raw payloads until ctx is cancelled, then closes the channel.
// Publish never waits on a subscriber: one whose buffer is full is dropped and
// its channel closed early, so consumers must treat an early close as a gap.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Change event types, named after the row operations they describe.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

// ChangeEvent is the envelope published for a row change on a table.
type ChangeEvent struct {
	Type   string      `json:"type"`
	Schema string      `json:"schema"`
	Table  string      `json:"table"`
	Record interface{} `json:"record"`
}

// TableChannel returns the channel name carrying change events for a table.
func TableChannel(table string) string {
	return "realtime:public:" + table
}
