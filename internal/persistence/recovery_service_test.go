package persistence

import (
	"context"
	"strings"
	"testing"
	"time"

	"nft-marketplace/internal/marketplace"
)

func TestRecoveryFromEventsOnly(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	events, err := NewFileEventStore(dir + "/events")
	if err != nil {
		t.Fatalf("NewFileEventStore failed: %v", err)
	}
	defer events.Close()

	snapshots, err := NewFileSnapshotStore(dir + "/snapshots")
	if err != nil {
		t.Fatalf("NewFileSnapshotStore failed: %v", err)
	}

	// List token 0, list token 1, sell token 0, cancel token 1
	log := []marketplace.Event{
		newCreatedEvent(1, 0, 100),
		newCreatedEvent(2, 1, 200),
		&marketplace.ItemSoldEvent{
			EventIDValue:    "evt_test",
			SequenceValue:   3,
			CollectionValue: testCollection,
			OccurredAtValue: time.Now().UTC(),
			TokenID:         0,
			Seller:          "0xALICE",
			Buyer:           "0xBOB",
			Price:           100,
		},
		&marketplace.ListingCanceledEvent{
			EventIDValue:    "evt_test",
			SequenceValue:   4,
			CollectionValue: testCollection,
			OccurredAtValue: time.Now().UTC(),
			TokenID:         1,
			Seller:          "0xALICE",
		},
	}
	for _, event := range log {
		if err := events.Append(ctx, testCollection, event); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	service := NewRecoveryService(events, snapshots)
	state, err := service.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	cs, ok := state.Collections[testCollection]
	if !ok {
		t.Fatal("expected collection state")
	}
	if len(cs.Listings) != 0 {
		t.Errorf("expected no active listings, got %d", len(cs.Listings))
	}
	if cs.LastSequence != 4 {
		t.Errorf("expected last sequence 4, got %d", cs.LastSequence)
	}
	if state.Proceeds["0xALICE"] != 100 {
		t.Errorf("expected seller proceeds 100, got %d", state.Proceeds["0xALICE"])
	}
}

func TestRecoveryFromSnapshotAndEvents(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	events, err := NewFileEventStore(dir + "/events")
	if err != nil {
		t.Fatalf("NewFileEventStore failed: %v", err)
	}
	defer events.Close()

	snapshots, err := NewFileSnapshotStore(dir + "/snapshots")
	if err != nil {
		t.Fatalf("NewFileSnapshotStore failed: %v", err)
	}

	// Snapshot: token 0 listed at 100, cursor at sequence 1
	snapshot := &LedgerSnapshot{
		Version:    1,
		CapturedAt: time.Now().UTC(),
		State: &marketplace.State{
			Collections: map[marketplace.Address]marketplace.CollectionState{
				testCollection: {
					Listings: map[uint64]marketplace.Listing{
						0: {Price: 100, Seller: "0xALICE"},
					},
					LastSequence: 1,
				},
			},
			Proceeds: map[marketplace.Address]int64{"0xALICE": 50},
		},
	}
	if err := snapshots.Save(ctx, snapshot); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Journal includes the pre-snapshot event plus a sale after it
	if err := events.Append(ctx, testCollection, newCreatedEvent(1, 0, 100)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	sold := &marketplace.ItemSoldEvent{
		EventIDValue:    "evt_test",
		SequenceValue:   2,
		CollectionValue: testCollection,
		OccurredAtValue: time.Now().UTC(),
		TokenID:         0,
		Seller:          "0xALICE",
		Buyer:           "0xBOB",
		Price:           100,
	}
	if err := events.Append(ctx, testCollection, sold); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	service := NewRecoveryService(events, snapshots)
	state, err := service.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	cs := state.Collections[testCollection]
	if len(cs.Listings) != 0 {
		t.Errorf("expected no active listings, got %d", len(cs.Listings))
	}
	if cs.LastSequence != 2 {
		t.Errorf("expected last sequence 2, got %d", cs.LastSequence)
	}
	// 50 from snapshot plus 100 from the replayed sale
	if state.Proceeds["0xALICE"] != 150 {
		t.Errorf("expected seller proceeds 150, got %d", state.Proceeds["0xALICE"])
	}
}

func TestRecoveryCreditsSellerFromEvent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	events, err := NewFileEventStore(dir + "/events")
	if err != nil {
		t.Fatalf("NewFileEventStore failed: %v", err)
	}
	defer events.Close()

	snapshots, err := NewFileSnapshotStore(dir + "/snapshots")
	if err != nil {
		t.Fatalf("NewFileSnapshotStore failed: %v", err)
	}

	// The sale event names a different seller than the tracked listing
	// (the token was re-listed while the purchase's transfer was in flight).
	// The event's seller is authoritative for the credit.
	if err := events.Append(ctx, testCollection, newCreatedEvent(1, 0, 100)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	sold := &marketplace.ItemSoldEvent{
		EventIDValue:    "evt_test",
		SequenceValue:   2,
		CollectionValue: testCollection,
		OccurredAtValue: time.Now().UTC(),
		TokenID:         0,
		Seller:          "0xCAROL",
		Buyer:           "0xBOB",
		Price:           100,
	}
	if err := events.Append(ctx, testCollection, sold); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	service := NewRecoveryService(events, snapshots)
	state, err := service.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	if state.Proceeds["0xCAROL"] != 100 {
		t.Errorf("expected event seller credited 100, got %d", state.Proceeds["0xCAROL"])
	}
	if state.Proceeds["0xALICE"] != 0 {
		t.Errorf("expected listing seller uncredited, got %d", state.Proceeds["0xALICE"])
	}
}

func TestRecoveryDetectsSequenceGap(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	events, err := NewFileEventStore(dir + "/events")
	if err != nil {
		t.Fatalf("NewFileEventStore failed: %v", err)
	}
	defer events.Close()

	snapshots, err := NewFileSnapshotStore(dir + "/snapshots")
	if err != nil {
		t.Fatalf("NewFileSnapshotStore failed: %v", err)
	}

	if err := events.Append(ctx, testCollection, newCreatedEvent(1, 0, 100)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	// Sequence 2 is missing
	if err := events.Append(ctx, testCollection, newCreatedEvent(3, 1, 200)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	service := NewRecoveryService(events, snapshots)
	if _, err := service.Recover(ctx); err == nil {
		t.Fatal("expected sequence gap error")
	} else if !strings.Contains(err.Error(), "sequence gap") {
		t.Errorf("expected sequence gap error, got: %v", err)
	}
}

func TestRecoveryRejectsSaleOfUnlistedToken(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	events, err := NewFileEventStore(dir + "/events")
	if err != nil {
		t.Fatalf("NewFileEventStore failed: %v", err)
	}
	defer events.Close()

	snapshots, err := NewFileSnapshotStore(dir + "/snapshots")
	if err != nil {
		t.Fatalf("NewFileSnapshotStore failed: %v", err)
	}

	sold := &marketplace.ItemSoldEvent{
		EventIDValue:    "evt_test",
		SequenceValue:   1,
		CollectionValue: testCollection,
		OccurredAtValue: time.Now().UTC(),
		TokenID:         7,
		Seller:          "0xALICE",
		Buyer:           "0xBOB",
		Price:           100,
	}
	if err := events.Append(ctx, testCollection, sold); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	service := NewRecoveryService(events, snapshots)
	if _, err := service.Recover(ctx); err == nil {
		t.Fatal("expected error replaying sale of unlisted token")
	}
}

func TestRecoveryEmptyStores(t *testing.T) {
	dir := t.TempDir()

	events, err := NewFileEventStore(dir + "/events")
	if err != nil {
		t.Fatalf("NewFileEventStore failed: %v", err)
	}
	defer events.Close()

	snapshots, err := NewFileSnapshotStore(dir + "/snapshots")
	if err != nil {
		t.Fatalf("NewFileSnapshotStore failed: %v", err)
	}

	service := NewRecoveryService(events, snapshots)
	state, err := service.Recover(context.Background())
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}
	if len(state.Collections) != 0 || len(state.Proceeds) != 0 {
		t.Errorf("expected empty state, got %+v", state)
	}
}
