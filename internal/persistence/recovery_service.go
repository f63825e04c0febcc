package persistence

import (
	"context"
	"fmt"

	"nft-marketplace/internal/marketplace"
)

// RecoveryService rebuilds ledger state from the latest snapshot plus the
// events journaled after it.
//
// Listings are reconstructed exactly: the three journaled event types fully
// determine the active-listing set. Proceeds are restored from the snapshot
// plus replayed sale credits; withdrawals are not journaled, so proceeds paid
// out after the last snapshot reappear until the next snapshot is taken.
type RecoveryService struct {
	events    EventStore
	snapshots SnapshotStore
}

// NewRecoveryService creates a new recovery service
func NewRecoveryService(events EventStore, snapshots SnapshotStore) *RecoveryService {
	return &RecoveryService{
		events:    events,
		snapshots: snapshots,
	}
}

// Recover returns the reconstructed ledger state
func (s *RecoveryService) Recover(ctx context.Context) (*marketplace.State, error) {
	state := &marketplace.State{
		Collections: make(map[marketplace.Address]marketplace.CollectionState),
		Proceeds:    make(map[marketplace.Address]int64),
	}

	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snapshot != nil && snapshot.State != nil {
		for collection, cs := range snapshot.State.Collections {
			restored := marketplace.CollectionState{
				Listings:     make(map[uint64]marketplace.Listing, len(cs.Listings)),
				LastSequence: cs.LastSequence,
			}
			for tokenID, listing := range cs.Listings {
				restored.Listings[tokenID] = listing
			}
			state.Collections[collection] = restored
		}
		for seller, balance := range snapshot.State.Proceeds {
			state.Proceeds[seller] = balance
		}
	}

	collections, err := s.events.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	for _, collection := range collections {
		if err := s.replayCollection(ctx, state, collection); err != nil {
			return nil, fmt.Errorf("failed to replay collection %s: %w", collection, err)
		}
	}

	return state, nil
}

// replayCollection applies journaled events after the snapshot cursor
func (s *RecoveryService) replayCollection(ctx context.Context, state *marketplace.State, collection marketplace.Address) error {
	cs, exists := state.Collections[collection]
	if !exists {
		cs = marketplace.CollectionState{Listings: make(map[uint64]marketplace.Listing)}
	}

	fromSeq := cs.LastSequence + 1
	events, err := s.events.ReadFrom(ctx, collection, fromSeq)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	if len(events) == 0 {
		state.Collections[collection] = cs
		return nil
	}

	if err := validateSequence(events, fromSeq); err != nil {
		return fmt.Errorf("sequence validation failed: %w", err)
	}

	for _, event := range events {
		switch e := event.(type) {
		case *marketplace.ListingCreatedEvent:
			cs.Listings[e.TokenID] = marketplace.Listing{Price: e.Price, Seller: e.Seller}

		case *marketplace.ListingCanceledEvent:
			delete(cs.Listings, e.TokenID)

		case *marketplace.ItemSoldEvent:
			if _, listed := cs.Listings[e.TokenID]; !listed {
				return fmt.Errorf("sale of unlisted token: collection=%s token_id=%d sequence=%d",
					collection, e.TokenID, e.Sequence())
			}
			// Credit the seller carried on the event, not the tracked
			// listing: the token may have been re-listed during the
			// purchase's transfer callback.
			state.Proceeds[e.Seller] += e.Price
			delete(cs.Listings, e.TokenID)

		default:
			return fmt.Errorf("unknown event type: %T", event)
		}
		cs.LastSequence = event.Sequence()
	}

	state.Collections[collection] = cs
	return nil
}

// validateSequence validates that event sequences start at fromSeq and are
// continuous
func validateSequence(events []marketplace.Event, fromSeq int64) error {
	if len(events) == 0 {
		return nil
	}

	if first := events[0].Sequence(); first != fromSeq {
		return fmt.Errorf("sequence gap detected: expected %d, got %d", fromSeq, first)
	}

	for i := 1; i < len(events); i++ {
		prevSeq := events[i-1].Sequence()
		currSeq := events[i].Sequence()

		if currSeq != prevSeq+1 {
			return fmt.Errorf("sequence gap detected: expected %d, got %d", prevSeq+1, currSeq)
		}
	}

	return nil
}
