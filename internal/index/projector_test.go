package index

import (
	"context"
	"testing"
	"time"

	"nft-marketplace/internal/marketplace"
)

const (
	testCollection = marketplace.Address("0xCOLLECTION")
	alice          = marketplace.Address("0xALICE")
	bob            = marketplace.Address("0xBOB")
)

func newTestProjector() (*Projector, *MemoryListingRepository, *MemorySaleRepository) {
	listingRepo := NewMemoryListingRepository()
	saleRepo := NewMemorySaleRepository()
	return NewProjector(listingRepo, saleRepo), listingRepo, saleRepo
}

func createdEvent(seq int64, tokenID uint64, price int64) *marketplace.ListingCreatedEvent {
	return &marketplace.ListingCreatedEvent{
		EventIDValue:    "evt_created",
		SequenceValue:   seq,
		CollectionValue: testCollection,
		OccurredAtValue: time.Now().UTC(),
		TokenID:         tokenID,
		Seller:          alice,
		Price:           price,
	}
}

func canceledEvent(seq int64, tokenID uint64) *marketplace.ListingCanceledEvent {
	return &marketplace.ListingCanceledEvent{
		EventIDValue:    "evt_canceled",
		SequenceValue:   seq,
		CollectionValue: testCollection,
		OccurredAtValue: time.Now().UTC(),
		TokenID:         tokenID,
		Seller:          alice,
	}
}

func soldEvent(seq int64, tokenID uint64, price int64) *marketplace.ItemSoldEvent {
	return &marketplace.ItemSoldEvent{
		EventIDValue:    "evt_sold",
		SequenceValue:   seq,
		CollectionValue: testCollection,
		OccurredAtValue: time.Now().UTC(),
		TokenID:         tokenID,
		Seller:          alice,
		Buyer:           bob,
		Price:           price,
	}
}

// fakeEventSource is a test double for the journal
type fakeEventSource struct {
	events map[marketplace.Address][]marketplace.Event
}

func (s *fakeEventSource) ListCollections(ctx context.Context) ([]marketplace.Address, error) {
	var collections []marketplace.Address
	for collection := range s.events {
		collections = append(collections, collection)
	}
	return collections, nil
}

func (s *fakeEventSource) ReadFrom(ctx context.Context, collection marketplace.Address, fromSeq int64) ([]marketplace.Event, error) {
	var out []marketplace.Event
	for _, event := range s.events[collection] {
		if event.Sequence() >= fromSeq {
			out = append(out, event)
		}
	}
	return out, nil
}

func TestProjectListingCreated(t *testing.T) {
	projector, listingRepo, _ := newTestProjector()
	ctx := context.Background()

	if err := projector.Project(ctx, createdEvent(1, 0, 100)); err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	listing, err := listingRepo.Get(ctx, testCollection, 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if listing.Status != ListingStatusActive {
		t.Errorf("expected status ACTIVE, got %s", listing.Status)
	}
	if listing.Seller != alice || listing.Price != 100 {
		t.Errorf("unexpected listing: %+v", listing)
	}
	if listing.LastSequence != 1 {
		t.Errorf("expected last sequence 1, got %d", listing.LastSequence)
	}
}

func TestProjectPriceUpdateKeepsListedAt(t *testing.T) {
	projector, listingRepo, _ := newTestProjector()
	ctx := context.Background()

	first := createdEvent(1, 0, 100)
	if err := projector.Project(ctx, first); err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	update := createdEvent(2, 0, 250)
	update.OccurredAtValue = first.OccurredAtValue.Add(time.Minute)
	if err := projector.Project(ctx, update); err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	listing, err := listingRepo.Get(ctx, testCollection, 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if listing.Price != 250 {
		t.Errorf("expected updated price 250, got %d", listing.Price)
	}
	if !listing.ListedAt.Equal(first.OccurredAtValue) {
		t.Errorf("expected listed time preserved, got %v", listing.ListedAt)
	}
	if !listing.UpdatedAt.Equal(update.OccurredAtValue) {
		t.Errorf("expected updated time advanced, got %v", listing.UpdatedAt)
	}
}

func TestProjectListingCanceled(t *testing.T) {
	projector, listingRepo, _ := newTestProjector()
	ctx := context.Background()

	if err := projector.Project(ctx, createdEvent(1, 0, 100)); err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if err := projector.Project(ctx, canceledEvent(2, 0)); err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	listing, err := listingRepo.Get(ctx, testCollection, 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if listing.Status != ListingStatusCanceled {
		t.Errorf("expected status CANCELED, got %s", listing.Status)
	}
}

func TestProjectItemSold(t *testing.T) {
	projector, listingRepo, saleRepo := newTestProjector()
	ctx := context.Background()

	if err := projector.Project(ctx, createdEvent(1, 0, 100)); err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if err := projector.Project(ctx, soldEvent(2, 0, 100)); err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	listing, err := listingRepo.Get(ctx, testCollection, 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if listing.Status != ListingStatusSold {
		t.Errorf("expected status SOLD, got %s", listing.Status)
	}

	sales, err := saleRepo.ListByCollection(ctx, testCollection, 0, 0)
	if err != nil {
		t.Fatalf("ListByCollection failed: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(sales))
	}
	sale := sales[0]
	if sale.Seller != alice || sale.Buyer != bob || sale.Price != 100 {
		t.Errorf("unexpected sale: %+v", sale)
	}
	if sale.Sequence != 2 {
		t.Errorf("expected sale sequence 2, got %d", sale.Sequence)
	}
}

func TestProjectFirstEventMustBeSequenceOne(t *testing.T) {
	projector, _, _ := newTestProjector()

	err := projector.Project(context.Background(), createdEvent(5, 0, 100))
	if err == nil {
		t.Fatal("expected error for first event with sequence 5")
	}
}

func TestProjectSequenceGapRejected(t *testing.T) {
	projector, _, _ := newTestProjector()
	ctx := context.Background()

	if err := projector.Project(ctx, createdEvent(1, 0, 100)); err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if err := projector.Project(ctx, canceledEvent(3, 0)); err == nil {
		t.Fatal("expected sequence gap error")
	}
}

func TestProjectDuplicateEventIsIdempotent(t *testing.T) {
	projector, listingRepo, _ := newTestProjector()
	ctx := context.Background()

	event := createdEvent(1, 0, 100)
	if err := projector.Project(ctx, event); err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	// Replaying the same sequence must be rejected at validation, leaving
	// the view unchanged
	if err := projector.Project(ctx, event); err == nil {
		t.Fatal("expected sequence regression error on replay")
	}

	listing, err := listingRepo.Get(ctx, testCollection, 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if listing.LastSequence != 1 {
		t.Errorf("expected last sequence 1, got %d", listing.LastSequence)
	}
}

func TestProjectSoldWithoutListingFails(t *testing.T) {
	projector, _, _ := newTestProjector()

	if err := projector.Project(context.Background(), soldEvent(1, 0, 100)); err == nil {
		t.Fatal("expected error projecting sale without listing")
	}
}

func TestRebuildResumesAfterRestart(t *testing.T) {
	projector, listingRepo, saleRepo := newTestProjector()
	ctx := context.Background()

	// Journal from a previous run: list, sell, list again
	source := &fakeEventSource{
		events: map[marketplace.Address][]marketplace.Event{
			testCollection: {
				createdEvent(1, 0, 100),
				soldEvent(2, 0, 100),
				createdEvent(3, 1, 200),
			},
		},
	}

	if err := projector.Rebuild(ctx, source); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	// Cursors line up with the journal: the next live event is accepted
	if err := projector.Project(ctx, canceledEvent(4, 1)); err != nil {
		t.Fatalf("Project after rebuild failed: %v", err)
	}

	listing, err := listingRepo.Get(ctx, testCollection, 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if listing.Status != ListingStatusSold {
		t.Errorf("expected status SOLD, got %s", listing.Status)
	}

	listing, err = listingRepo.Get(ctx, testCollection, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if listing.Status != ListingStatusCanceled {
		t.Errorf("expected status CANCELED, got %s", listing.Status)
	}

	sales, err := saleRepo.ListByCollection(ctx, testCollection, 0, 0)
	if err != nil {
		t.Fatalf("ListByCollection failed: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale after rebuild, got %d", len(sales))
	}

	seq, err := listingRepo.GetLastSequence(ctx, testCollection)
	if err != nil {
		t.Fatalf("GetLastSequence failed: %v", err)
	}
	if seq != 4 {
		t.Errorf("expected cursor 4, got %d", seq)
	}
}

func TestRebuildEmptyJournal(t *testing.T) {
	projector, _, _ := newTestProjector()

	source := &fakeEventSource{events: map[marketplace.Address][]marketplace.Event{}}
	if err := projector.Rebuild(context.Background(), source); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	// Fresh deployment: the first live event starts at sequence 1
	if err := projector.Project(context.Background(), createdEvent(1, 0, 100)); err != nil {
		t.Fatalf("Project failed: %v", err)
	}
}

func TestProjectorSinkAppliesEvents(t *testing.T) {
	projector, listingRepo, _ := newTestProjector()

	sink := projector.Sink()
	sink(createdEvent(1, 0, 100))

	listing, err := listingRepo.Get(context.Background(), testCollection, 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if listing.Price != 100 {
		t.Errorf("expected price 100, got %d", listing.Price)
	}
}
