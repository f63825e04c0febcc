package marketplace

import "time"

// Event domain event interface.
// Sequences are per-collection, strictly increasing, assigned at emit time.
type Event interface {
	EventID() string
	EventType() string
	Sequence() int64
	Collection() Address
	OccurredAt() time.Time
}

// EventSink receives ledger events.
// Publication is fire-and-forget in operation order; sink failures never
// affect the originating operation.
type EventSink interface {
	Publish(event Event)
}

// SinkFunc adapts a function to the EventSink interface
type SinkFunc func(event Event)

func (f SinkFunc) Publish(event Event) { f(event) }

// ListingCreatedEvent is emitted when an item is listed or its price updated.
// A price update is observably identical to a fresh listing.
type ListingCreatedEvent struct {
	EventIDValue    string    `json:"event_id"`
	SequenceValue   int64     `json:"sequence"`
	CollectionValue Address   `json:"collection"`
	OccurredAtValue time.Time `json:"occurred_at"`
	TokenID         uint64    `json:"token_id"`
	Seller          Address   `json:"seller"`
	Price           int64     `json:"price"`
}

func (e *ListingCreatedEvent) EventID() string       { return e.EventIDValue }
func (e *ListingCreatedEvent) EventType() string     { return "ListingCreated" }
func (e *ListingCreatedEvent) Sequence() int64       { return e.SequenceValue }
func (e *ListingCreatedEvent) Collection() Address   { return e.CollectionValue }
func (e *ListingCreatedEvent) OccurredAt() time.Time { return e.OccurredAtValue }

// ListingCanceledEvent is emitted when a seller cancels a listing
type ListingCanceledEvent struct {
	EventIDValue    string    `json:"event_id"`
	SequenceValue   int64     `json:"sequence"`
	CollectionValue Address   `json:"collection"`
	OccurredAtValue time.Time `json:"occurred_at"`
	TokenID         uint64    `json:"token_id"`
	Seller          Address   `json:"seller"`
}

func (e *ListingCanceledEvent) EventID() string       { return e.EventIDValue }
func (e *ListingCanceledEvent) EventType() string     { return "ListingCanceled" }
func (e *ListingCanceledEvent) Sequence() int64       { return e.SequenceValue }
func (e *ListingCanceledEvent) Collection() Address   { return e.CollectionValue }
func (e *ListingCanceledEvent) OccurredAt() time.Time { return e.OccurredAtValue }

// ItemSoldEvent is emitted after a successful purchase.
// Seller is the credited party, carried on the event so that replay does not
// depend on which listing is current at replay time.
type ItemSoldEvent struct {
	EventIDValue    string    `json:"event_id"`
	SequenceValue   int64     `json:"sequence"`
	CollectionValue Address   `json:"collection"`
	OccurredAtValue time.Time `json:"occurred_at"`
	TokenID         uint64    `json:"token_id"`
	Seller          Address   `json:"seller"`
	Buyer           Address   `json:"buyer"`
	Price           int64     `json:"price"`
}

func (e *ItemSoldEvent) EventID() string       { return e.EventIDValue }
func (e *ItemSoldEvent) EventType() string     { return "ItemSold" }
func (e *ItemSoldEvent) Sequence() int64       { return e.SequenceValue }
func (e *ItemSoldEvent) Collection() Address   { return e.CollectionValue }
func (e *ItemSoldEvent) OccurredAt() time.Time { return e.OccurredAtValue }
