package persistence

import (
	"context"
	"time"

	"nft-marketplace/internal/marketplace"
)

// EventRecord represents a persisted event record
type EventRecord struct {
	Version    int                 `json:"version"`
	Collection marketplace.Address `json:"collection"`
	Sequence   int64               `json:"sequence"`
	Type       string              `json:"type"`
	OccurredAt time.Time           `json:"occurred_at"`
	Payload    any                 `json:"payload"`
}

// LedgerSnapshot represents a point-in-time snapshot of the full ledger state
type LedgerSnapshot struct {
	Version    int                `json:"version"`
	CapturedAt time.Time          `json:"captured_at"`
	State      *marketplace.State `json:"state"`
}

// EventStore defines the interface for event log persistence
type EventStore interface {
	// Append appends an event to the log for a specific collection
	Append(ctx context.Context, collection marketplace.Address, event marketplace.Event) error

	// ReadFrom reads events from a specific sequence number (inclusive)
	ReadFrom(ctx context.Context, collection marketplace.Address, fromSeq int64) ([]marketplace.Event, error)

	// GetLastSequence returns the last sequence number for a collection
	GetLastSequence(ctx context.Context, collection marketplace.Address) (int64, error)

	// ListCollections lists all collections that have event logs
	ListCollections(ctx context.Context) ([]marketplace.Address, error)

	// Close closes the event store
	Close() error
}

// SnapshotStore defines the interface for ledger snapshot persistence
type SnapshotStore interface {
	// Save saves a snapshot of the full ledger state
	Save(ctx context.Context, snapshot *LedgerSnapshot) error

	// Load loads the latest snapshot, or nil if none exists
	Load(ctx context.Context) (*LedgerSnapshot, error)
}
