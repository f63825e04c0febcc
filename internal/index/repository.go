package index

import (
	"context"
	"errors"

	"nft-marketplace/internal/marketplace"
)

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrSequenceRegression = errors.New("sequence regression")
	ErrSaleConflict       = errors.New("sale conflict")
)

// ListingRepository defines the interface for listing read model storage
type ListingRepository interface {
	// Save creates or updates a listing view
	Save(ctx context.Context, listing *ListingView) error

	// Get retrieves a listing by collection and token_id
	Get(ctx context.Context, collection marketplace.Address, tokenID uint64) (*ListingView, error)

	// ListByCollection retrieves listings for a specific collection
	// If activeOnly is true, only ACTIVE listings are returned
	ListByCollection(ctx context.Context, collection marketplace.Address, activeOnly bool, limit int) ([]*ListingView, error)

	// ListBySeller retrieves listings for a specific seller
	ListBySeller(ctx context.Context, seller marketplace.Address, limit int) ([]*ListingView, error)

	// GetLastSequence returns the last applied sequence number for a collection
	GetLastSequence(ctx context.Context, collection marketplace.Address) (int64, error)

	// SetLastSequence updates the last applied sequence number for a collection
	SetLastSequence(ctx context.Context, collection marketplace.Address, sequence int64) error
}

// SaleRepository defines the interface for sale read model storage
type SaleRepository interface {
	// Save creates a sale view
	Save(ctx context.Context, sale *SaleView) error

	// GetByID retrieves a sale by sale_id
	GetByID(ctx context.Context, saleID string) (*SaleView, error)

	// ListByCollection retrieves sales for a specific collection
	// fromSequence: if > 0, only return sales with sequence >= fromSequence
	ListByCollection(ctx context.Context, collection marketplace.Address, fromSequence int64, limit int) ([]*SaleView, error)

	// ListBySeller retrieves sales for a specific seller
	ListBySeller(ctx context.Context, seller marketplace.Address, limit int) ([]*SaleView, error)

	// GetLastSequence returns the last applied sequence number for a collection
	GetLastSequence(ctx context.Context, collection marketplace.Address) (int64, error)

	// SetLastSequence updates the last applied sequence number for a collection
	SetLastSequence(ctx context.Context, collection marketplace.Address, sequence int64) error
}
