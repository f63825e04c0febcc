package marketplace

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger is an in-memory implementation of the marketplace ledger.
//
// Ordering discipline: BuyItem and WithdrawProceeds mutate ledger state under
// the lock, release the lock, and only then invoke the external collaborator.
// A re-entrant call arriving during the external step therefore observes
// consistent, already-updated state (the listing is gone, the balance is
// zero). If the external call fails the staged mutation is undone explicitly
// before the error is returned.
type MemoryLedger struct {
	operator Address // the marketplace's own identity, checked against registry approvals
	registry AssetRegistry
	payments PaymentChannel
	sinks    []EventSink

	mu        sync.RWMutex
	listings  map[ListingKey]Listing
	proceeds  map[Address]int64
	sequences map[Address]int64 // collection -> last assigned event sequence
}

// NewMemoryLedger creates a new in-memory ledger.
// operator is the identity sellers must approve in the registry before listing.
func NewMemoryLedger(operator Address, registry AssetRegistry, payments PaymentChannel, sinks ...EventSink) *MemoryLedger {
	return &MemoryLedger{
		operator:  operator,
		registry:  registry,
		payments:  payments,
		sinks:     sinks,
		listings:  make(map[ListingKey]Listing),
		proceeds:  make(map[Address]int64),
		sequences: make(map[Address]int64),
	}
}

// ListItem creates a listing for an asset owned by caller
func (l *MemoryLedger) ListItem(collection Address, tokenID uint64, price int64, caller Address) error {
	if price <= 0 {
		return ErrInvalidPrice
	}

	key := ListingKey{Collection: collection, TokenID: tokenID}

	l.mu.RLock()
	_, exists := l.listings[key]
	l.mu.RUnlock()
	if exists {
		return &AlreadyListedError{Collection: collection, TokenID: tokenID}
	}

	// The registry is the source of truth for ownership and approval
	owner, err := l.registry.OwnerOf(collection, tokenID)
	if err != nil {
		return fmt.Errorf("registry owner lookup: %w", err)
	}
	if owner != caller {
		return ErrNotOwner
	}

	approved, err := l.registry.ApprovedOperator(collection, tokenID)
	if err != nil {
		return fmt.Errorf("registry approval lookup: %w", err)
	}
	if approved != l.operator {
		return ErrNotApprovedForMarketplace
	}

	l.mu.Lock()
	if _, exists := l.listings[key]; exists {
		l.mu.Unlock()
		return &AlreadyListedError{Collection: collection, TokenID: tokenID}
	}
	l.listings[key] = Listing{Price: price, Seller: caller}
	event := &ListingCreatedEvent{
		EventIDValue:    newEventID(),
		SequenceValue:   l.nextSequence(collection),
		CollectionValue: collection,
		OccurredAtValue: time.Now(),
		TokenID:         tokenID,
		Seller:          caller,
		Price:           price,
	}
	l.mu.Unlock()

	l.emit(event)
	return nil
}

// CancelListing removes the caller's listing for an asset
func (l *MemoryLedger) CancelListing(collection Address, tokenID uint64, caller Address) error {
	key := ListingKey{Collection: collection, TokenID: tokenID}

	l.mu.Lock()
	listing, exists := l.listings[key]
	if !exists {
		l.mu.Unlock()
		return &NotListedError{Collection: collection, TokenID: tokenID}
	}
	if listing.Seller != caller {
		l.mu.Unlock()
		return ErrNotOwner
	}
	delete(l.listings, key)
	event := &ListingCanceledEvent{
		EventIDValue:    newEventID(),
		SequenceValue:   l.nextSequence(collection),
		CollectionValue: collection,
		OccurredAtValue: time.Now(),
		TokenID:         tokenID,
		Seller:          caller,
	}
	l.mu.Unlock()

	l.emit(event)
	return nil
}

// UpdateListing overwrites the price of the caller's listing.
// Observably identical to a fresh listing: emits ListingCreated.
func (l *MemoryLedger) UpdateListing(collection Address, tokenID uint64, newPrice int64, caller Address) error {
	key := ListingKey{Collection: collection, TokenID: tokenID}

	l.mu.Lock()
	listing, exists := l.listings[key]
	if !exists {
		l.mu.Unlock()
		return &NotListedError{Collection: collection, TokenID: tokenID}
	}
	if listing.Seller != caller {
		l.mu.Unlock()
		return ErrNotOwner
	}
	if newPrice <= 0 {
		l.mu.Unlock()
		return ErrInvalidPrice
	}
	listing.Price = newPrice
	l.listings[key] = listing
	event := &ListingCreatedEvent{
		EventIDValue:    newEventID(),
		SequenceValue:   l.nextSequence(collection),
		CollectionValue: collection,
		OccurredAtValue: time.Now(),
		TokenID:         tokenID,
		Seller:          caller,
		Price:           newPrice,
	}
	l.mu.Unlock()

	l.emit(event)
	return nil
}

// BuyItem purchases a listed asset for exactly the listed price
func (l *MemoryLedger) BuyItem(collection Address, tokenID uint64, caller Address, value int64) error {
	key := ListingKey{Collection: collection, TokenID: tokenID}

	l.mu.Lock()
	listing, exists := l.listings[key]
	if !exists {
		l.mu.Unlock()
		return &NotListedError{Collection: collection, TokenID: tokenID}
	}
	if value != listing.Price {
		l.mu.Unlock()
		return &PriceNotMetError{
			Collection: collection,
			TokenID:    tokenID,
			Required:   listing.Price,
			Supplied:   value,
		}
	}

	// Delete the listing and credit proceeds before the external transfer:
	// a re-entrant BuyItem for this key must see NotListed.
	delete(l.listings, key)
	l.proceeds[listing.Seller] += value
	l.mu.Unlock()

	if err := l.registry.Transfer(collection, tokenID, listing.Seller, caller); err != nil {
		// Undo the staged mutation: listing restored, credit reversed.
		// A re-entrant withdrawal during Transfer may already have consumed
		// the staged credit; reverse at most what is left so the balance
		// never goes negative.
		l.mu.Lock()
		l.listings[key] = listing
		if current := l.proceeds[listing.Seller]; current > value {
			l.proceeds[listing.Seller] = current - value
		} else {
			delete(l.proceeds, listing.Seller)
		}
		l.mu.Unlock()
		return &TransferFailedError{Op: "buy", Err: err}
	}

	l.mu.Lock()
	event := &ItemSoldEvent{
		EventIDValue:    newEventID(),
		SequenceValue:   l.nextSequence(collection),
		CollectionValue: collection,
		OccurredAtValue: time.Now(),
		TokenID:         tokenID,
		Seller:          listing.Seller,
		Buyer:           caller,
		Price:           value,
	}
	l.mu.Unlock()

	l.emit(event)
	return nil
}

// WithdrawProceeds pays out the caller's accumulated sale proceeds
func (l *MemoryLedger) WithdrawProceeds(caller Address) (int64, error) {
	l.mu.Lock()
	amount := l.proceeds[caller]
	if amount <= 0 {
		l.mu.Unlock()
		return 0, ErrNoProceeds
	}

	// Zero the balance before the external payment: a re-entrant withdrawal
	// during the transfer must see zero and fail with NoProceeds.
	delete(l.proceeds, caller)
	l.mu.Unlock()

	if err := l.payments.Pay(caller, amount); err != nil {
		// Restore additively: a sale may have credited the caller during Pay
		l.mu.Lock()
		l.proceeds[caller] += amount
		l.mu.Unlock()
		return 0, &TransferFailedError{Op: "withdraw", Err: err}
	}

	return amount, nil
}

// GetListing returns the active listing for an asset, if any
func (l *MemoryLedger) GetListing(collection Address, tokenID uint64) (Listing, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	listing, exists := l.listings[ListingKey{Collection: collection, TokenID: tokenID}]
	return listing, exists
}

// GetProceeds returns the withdrawable balance for a seller
func (l *MemoryLedger) GetProceeds(seller Address) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.proceeds[seller]
}

// nextSequence assigns the next event sequence for a collection.
// Caller must hold the write lock.
func (l *MemoryLedger) nextSequence(collection Address) int64 {
	l.sequences[collection]++
	return l.sequences[collection]
}

// emit publishes an event to all sinks. Called outside the lock so that a
// sink may safely call back into the ledger.
func (l *MemoryLedger) emit(event Event) {
	for _, sink := range l.sinks {
		sink.Publish(event)
	}
}

func newEventID() string {
	return "evt_" + uuid.New().String()
}
