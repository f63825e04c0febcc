package index

import (
	"context"
	"errors"
	"fmt"
	"log"

	"nft-marketplace/internal/marketplace"
)

// Projector consumes ledger events and updates read models
type Projector struct {
	listingRepo ListingRepository
	saleRepo    SaleRepository
}

// NewProjector creates a new projector
func NewProjector(listingRepo ListingRepository, saleRepo SaleRepository) *Projector {
	return &Projector{
		listingRepo: listingRepo,
		saleRepo:    saleRepo,
	}
}

// Sink adapts the projector to a ledger event sink. Projection failures are
// logged, never propagated: event publication is fire-and-forget.
func (p *Projector) Sink() marketplace.SinkFunc {
	return func(event marketplace.Event) {
		if err := p.Project(context.Background(), event); err != nil {
			log.Printf("projection failed: %v", err)
		}
	}
}

// EventSource provides journaled events for rebuilding read models
type EventSource interface {
	ListCollections(ctx context.Context) ([]marketplace.Address, error)
	ReadFrom(ctx context.Context, collection marketplace.Address, fromSeq int64) ([]marketplace.Event, error)
}

// Rebuild replays the full journal through the projector. Must run at startup
// before live events arrive: the repositories start with their cursors at
// zero, so an event resuming at a recovered sequence would otherwise be
// rejected by the continuity check.
func (p *Projector) Rebuild(ctx context.Context, source EventSource) error {
	collections, err := source.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, collection := range collections {
		events, err := source.ReadFrom(ctx, collection, 1)
		if err != nil {
			return fmt.Errorf("failed to read events for collection %s: %w", collection, err)
		}
		for _, event := range events {
			if err := p.Project(ctx, event); err != nil {
				return fmt.Errorf("failed to replay collection %s: %w", collection, err)
			}
		}
	}

	return nil
}

// Project applies a single event to the read models
// Returns error if sequence validation fails or projection fails
func (p *Projector) Project(ctx context.Context, event marketplace.Event) error {
	if event == nil {
		return fmt.Errorf("event is nil")
	}

	collection := event.Collection()
	sequence := event.Sequence()

	// Validate sequence continuity
	if err := p.validateSequence(ctx, collection, sequence); err != nil {
		return err
	}

	// Apply event based on type
	switch e := event.(type) {
	case *marketplace.ListingCreatedEvent:
		if err := p.projectListingCreated(ctx, e); err != nil {
			return fmt.Errorf("failed to project ListingCreated: %w", err)
		}
	case *marketplace.ListingCanceledEvent:
		if err := p.projectListingCanceled(ctx, e); err != nil {
			return fmt.Errorf("failed to project ListingCanceled: %w", err)
		}
	case *marketplace.ItemSoldEvent:
		if err := p.projectItemSold(ctx, e); err != nil {
			return fmt.Errorf("failed to project ItemSold: %w", err)
		}
	default:
		return fmt.Errorf("unknown event type: %T", event)
	}

	// Advance sequence cursor after successful projection.
	// IMPORTANT: advance sale first, then listing.
	// Sequence validation uses listingRepo as source of truth; if listing
	// advances first and sale fails, replay would be blocked by sequence
	// regression.
	if err := p.saleRepo.SetLastSequence(ctx, collection, sequence); err != nil {
		return fmt.Errorf("failed to advance sale sequence: %w", err)
	}
	if err := p.listingRepo.SetLastSequence(ctx, collection, sequence); err != nil {
		return fmt.Errorf("failed to advance listing sequence: %w", err)
	}

	return nil
}

// validateSequence checks if the event sequence is valid (must be last + 1)
func (p *Projector) validateSequence(ctx context.Context, collection marketplace.Address, sequence int64) error {
	listingLastSeq, err := p.listingRepo.GetLastSequence(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get listing last sequence: %w", err)
	}
	saleLastSeq, err := p.saleRepo.GetLastSequence(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get sale last sequence: %w", err)
	}
	if listingLastSeq != saleLastSeq {
		return fmt.Errorf("projection sequence mismatch: collection=%s listing_last=%d sale_last=%d",
			collection, listingLastSeq, saleLastSeq)
	}
	lastSeq := listingLastSeq

	// First event for this collection should have sequence 1
	if lastSeq == 0 && sequence != 1 {
		return fmt.Errorf("first event must have sequence 1, got %d", sequence)
	}

	// Subsequent events must be exactly last + 1
	if lastSeq > 0 && sequence != lastSeq+1 {
		if sequence < lastSeq+1 {
			return fmt.Errorf("sequence regression: collection=%s last=%d event=%d", collection, lastSeq, sequence)
		}
		return fmt.Errorf("sequence gap detected: collection=%s last=%d event=%d", collection, lastSeq, sequence)
	}

	return nil
}

// projectListingCreated creates or refreshes a listing view.
// Both fresh listings and price updates arrive as this event.
func (p *Projector) projectListingCreated(ctx context.Context, event *marketplace.ListingCreatedEvent) error {
	existing, err := p.listingRepo.Get(ctx, event.Collection(), event.TokenID)
	if err != nil && !errors.Is(err, ErrListingNotFound) {
		return fmt.Errorf("failed to get listing: %w", err)
	}

	listing := &ListingView{
		Collection:   event.Collection(),
		TokenID:      event.TokenID,
		Seller:       event.Seller,
		Price:        event.Price,
		Status:       ListingStatusActive,
		ListedAt:     event.OccurredAt(),
		UpdatedAt:    event.OccurredAt(),
		LastSequence: event.Sequence(),
	}

	if existing != nil {
		// Idempotent retry: this event has already been applied.
		if existing.LastSequence >= event.Sequence() {
			return nil
		}
		// A re-listing after cancel or sale keeps the original listed time
		// only when the active listing is being repriced.
		if existing.Status == ListingStatusActive {
			listing.ListedAt = existing.ListedAt
		}
	}

	return p.listingRepo.Save(ctx, listing)
}

// projectListingCanceled updates listing status to canceled
func (p *Projector) projectListingCanceled(ctx context.Context, event *marketplace.ListingCanceledEvent) error {
	listing, err := p.listingRepo.Get(ctx, event.Collection(), event.TokenID)
	if err != nil {
		return fmt.Errorf("failed to get listing: %w", err)
	}
	if listing.LastSequence >= event.Sequence() {
		return nil
	}

	listing.Status = ListingStatusCanceled
	listing.UpdatedAt = event.OccurredAt()
	listing.LastSequence = event.Sequence()

	return p.listingRepo.Save(ctx, listing)
}

// projectItemSold marks the listing sold and creates a sale view
func (p *Projector) projectItemSold(ctx context.Context, event *marketplace.ItemSoldEvent) error {
	listing, err := p.listingRepo.Get(ctx, event.Collection(), event.TokenID)
	if err != nil {
		return fmt.Errorf("failed to get listing: %w", err)
	}

	if listing.LastSequence < event.Sequence() {
		listing.Status = ListingStatusSold
		listing.UpdatedAt = event.OccurredAt()
		listing.LastSequence = event.Sequence()
		if err := p.listingRepo.Save(ctx, listing); err != nil {
			return fmt.Errorf("failed to update listing: %w", err)
		}
	}

	sale := &SaleView{
		SaleID:     event.EventID(),
		Collection: event.Collection(),
		TokenID:    event.TokenID,
		Seller:     event.Seller,
		Buyer:      event.Buyer,
		Price:      event.Price,
		OccurredAt: event.OccurredAt(),
		Sequence:   event.Sequence(),
	}

	return p.saleRepo.Save(ctx, sale)
}
