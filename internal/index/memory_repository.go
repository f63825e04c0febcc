package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"nft-marketplace/internal/marketplace"
)

// MemoryListingRepository is an in-memory implementation of ListingRepository
type MemoryListingRepository struct {
	mu sync.RWMutex

	// Primary storage: (collection, token_id) -> ListingView
	listings map[marketplace.ListingKey]*ListingView

	// Indexes for efficient queries
	byCollection map[marketplace.Address][]*ListingView // collection -> []*ListingView
	bySeller     map[marketplace.Address][]*ListingView // seller -> []*ListingView

	// Last applied sequence per collection
	lastSequence map[marketplace.Address]int64
}

// NewMemoryListingRepository creates a new in-memory listing repository
func NewMemoryListingRepository() *MemoryListingRepository {
	return &MemoryListingRepository{
		listings:     make(map[marketplace.ListingKey]*ListingView),
		byCollection: make(map[marketplace.Address][]*ListingView),
		bySeller:     make(map[marketplace.Address][]*ListingView),
		lastSequence: make(map[marketplace.Address]int64),
	}
}

// Save creates or updates a listing view
func (r *MemoryListingRepository) Save(ctx context.Context, listing *ListingView) error {
	if listing == nil {
		return ErrInvalidArgument
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	listingCopy := cloneListingView(listing)
	key := marketplace.ListingKey{Collection: listingCopy.Collection, TokenID: listingCopy.TokenID}

	// Remove a previous version from the indexes before updating
	if existing, exists := r.listings[key]; exists {
		r.removeFromIndexes(existing)
	}

	r.listings[key] = listingCopy
	r.addToIndexes(listingCopy)

	return nil
}

// Get retrieves a listing by collection and token_id
func (r *MemoryListingRepository) Get(ctx context.Context, collection marketplace.Address, tokenID uint64) (*ListingView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, exists := r.listings[marketplace.ListingKey{Collection: collection, TokenID: tokenID}]
	if !exists {
		return nil, ErrListingNotFound
	}

	return cloneListingView(listing), nil
}

// ListByCollection retrieves listings for a specific collection
func (r *MemoryListingRepository) ListByCollection(ctx context.Context, collection marketplace.Address, activeOnly bool, limit int) ([]*ListingView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings, exists := r.byCollection[collection]
	if !exists {
		return []*ListingView{}, nil
	}

	var filtered []*ListingView
	if activeOnly {
		for _, listing := range listings {
			if listing.Status == ListingStatusActive {
				filtered = append(filtered, listing)
			}
		}
	} else {
		filtered = listings
	}

	if limit > 0 && len(filtered) > limit {
		return cloneListingViews(filtered[:limit]), nil
	}

	return cloneListingViews(filtered), nil
}

// ListBySeller retrieves listings for a specific seller
func (r *MemoryListingRepository) ListBySeller(ctx context.Context, seller marketplace.Address, limit int) ([]*ListingView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings, exists := r.bySeller[seller]
	if !exists {
		return []*ListingView{}, nil
	}

	if limit > 0 && len(listings) > limit {
		return cloneListingViews(listings[:limit]), nil
	}

	return cloneListingViews(listings), nil
}

// GetLastSequence returns the last applied sequence number for a collection
func (r *MemoryListingRepository) GetLastSequence(ctx context.Context, collection marketplace.Address) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastSequence[collection], nil
}

// SetLastSequence updates the last applied sequence number for a collection
func (r *MemoryListingRepository) SetLastSequence(ctx context.Context, collection marketplace.Address, sequence int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.lastSequence[collection]
	if sequence < current {
		return fmt.Errorf("%w: collection=%s current=%d new=%d", ErrSequenceRegression, collection, current, sequence)
	}

	r.lastSequence[collection] = sequence
	return nil
}

// addToIndexes adds a listing to all indexes
func (r *MemoryListingRepository) addToIndexes(listing *ListingView) {
	r.byCollection[listing.Collection] = append(r.byCollection[listing.Collection], listing)
	r.bySeller[listing.Seller] = append(r.bySeller[listing.Seller], listing)
}

// removeFromIndexes removes a listing from all indexes
func (r *MemoryListingRepository) removeFromIndexes(listing *ListingView) {
	if listings, exists := r.byCollection[listing.Collection]; exists {
		for i, l := range listings {
			if l.TokenID == listing.TokenID {
				r.byCollection[listing.Collection] = append(listings[:i], listings[i+1:]...)
				break
			}
		}
		if len(r.byCollection[listing.Collection]) == 0 {
			delete(r.byCollection, listing.Collection)
		}
	}

	if listings, exists := r.bySeller[listing.Seller]; exists {
		for i, l := range listings {
			if l.Collection == listing.Collection && l.TokenID == listing.TokenID {
				r.bySeller[listing.Seller] = append(listings[:i], listings[i+1:]...)
				break
			}
		}
		if len(r.bySeller[listing.Seller]) == 0 {
			delete(r.bySeller, listing.Seller)
		}
	}
}

// MemorySaleRepository is an in-memory implementation of SaleRepository
type MemorySaleRepository struct {
	mu sync.RWMutex

	// Primary storage: sale_id -> SaleView
	sales map[string]*SaleView

	// Indexes for efficient queries
	byCollection map[marketplace.Address][]*SaleView // collection -> []*SaleView (sorted by sequence)
	bySeller     map[marketplace.Address][]*SaleView // seller -> []*SaleView

	// Last applied sequence per collection
	lastSequence map[marketplace.Address]int64
}

// NewMemorySaleRepository creates a new in-memory sale repository
func NewMemorySaleRepository() *MemorySaleRepository {
	return &MemorySaleRepository{
		sales:        make(map[string]*SaleView),
		byCollection: make(map[marketplace.Address][]*SaleView),
		bySeller:     make(map[marketplace.Address][]*SaleView),
		lastSequence: make(map[marketplace.Address]int64),
	}
}

// Save creates a sale view
func (r *MemorySaleRepository) Save(ctx context.Context, sale *SaleView) error {
	if sale == nil {
		return ErrInvalidArgument
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	saleCopy := cloneSaleView(sale)

	// Idempotency: same sale ID should not create duplicate index entries.
	if existing, exists := r.sales[saleCopy.SaleID]; exists {
		if sameSale(existing, saleCopy) {
			return nil
		}
		return fmt.Errorf("%w: sale_id=%s", ErrSaleConflict, saleCopy.SaleID)
	}

	r.sales[saleCopy.SaleID] = saleCopy

	// Index by collection (maintain sequence order)
	r.byCollection[saleCopy.Collection] = append(r.byCollection[saleCopy.Collection], saleCopy)
	sort.Slice(r.byCollection[saleCopy.Collection], func(i, j int) bool {
		return r.byCollection[saleCopy.Collection][i].Sequence < r.byCollection[saleCopy.Collection][j].Sequence
	})

	r.bySeller[saleCopy.Seller] = append(r.bySeller[saleCopy.Seller], saleCopy)

	return nil
}

// GetByID retrieves a sale by sale_id
func (r *MemorySaleRepository) GetByID(ctx context.Context, saleID string) (*SaleView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sale, exists := r.sales[saleID]
	if !exists {
		return nil, ErrSaleNotFound
	}

	return cloneSaleView(sale), nil
}

// ListByCollection retrieves sales for a specific collection
func (r *MemorySaleRepository) ListByCollection(ctx context.Context, collection marketplace.Address, fromSequence int64, limit int) ([]*SaleView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sales, exists := r.byCollection[collection]
	if !exists {
		return []*SaleView{}, nil
	}

	var filtered []*SaleView
	if fromSequence > 0 {
		for _, sale := range sales {
			if sale.Sequence >= fromSequence {
				filtered = append(filtered, sale)
			}
		}
	} else {
		filtered = sales
	}

	if limit > 0 && len(filtered) > limit {
		return cloneSaleViews(filtered[:limit]), nil
	}

	return cloneSaleViews(filtered), nil
}

// ListBySeller retrieves sales for a specific seller
func (r *MemorySaleRepository) ListBySeller(ctx context.Context, seller marketplace.Address, limit int) ([]*SaleView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sales, exists := r.bySeller[seller]
	if !exists {
		return []*SaleView{}, nil
	}

	if limit > 0 && len(sales) > limit {
		return cloneSaleViews(sales[:limit]), nil
	}

	return cloneSaleViews(sales), nil
}

// GetLastSequence returns the last applied sequence number for a collection
func (r *MemorySaleRepository) GetLastSequence(ctx context.Context, collection marketplace.Address) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastSequence[collection], nil
}

// SetLastSequence updates the last applied sequence number for a collection
func (r *MemorySaleRepository) SetLastSequence(ctx context.Context, collection marketplace.Address, sequence int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.lastSequence[collection]
	if sequence < current {
		return fmt.Errorf("%w: collection=%s current=%d new=%d", ErrSequenceRegression, collection, current, sequence)
	}

	r.lastSequence[collection] = sequence
	return nil
}

func cloneListingView(in *ListingView) *ListingView {
	if in == nil {
		return nil
	}
	cp := *in
	return &cp
}

func cloneListingViews(in []*ListingView) []*ListingView {
	out := make([]*ListingView, 0, len(in))
	for _, v := range in {
		out = append(out, cloneListingView(v))
	}
	return out
}

func cloneSaleView(in *SaleView) *SaleView {
	if in == nil {
		return nil
	}
	cp := *in
	return &cp
}

func cloneSaleViews(in []*SaleView) []*SaleView {
	out := make([]*SaleView, 0, len(in))
	for _, v := range in {
		out = append(out, cloneSaleView(v))
	}
	return out
}

func sameSale(a, b *SaleView) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.SaleID == b.SaleID &&
		a.Collection == b.Collection &&
		a.TokenID == b.TokenID &&
		a.Seller == b.Seller &&
		a.Buyer == b.Buyer &&
		a.Price == b.Price &&
		a.Sequence == b.Sequence &&
		a.OccurredAt.Equal(b.OccurredAt)
}
