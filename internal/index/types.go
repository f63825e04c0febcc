package index

import (
	"time"

	"nft-marketplace/internal/marketplace"
)

// ListingStatus represents the status of a listing in the read model
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "ACTIVE"
	ListingStatusCanceled ListingStatus = "CANCELED"
	ListingStatusSold     ListingStatus = "SOLD"
)

// ListingView represents the read model for a listing
type ListingView struct {
	Collection   marketplace.Address `json:"collection"`
	TokenID      uint64              `json:"token_id"`
	Seller       marketplace.Address `json:"seller"`
	Price        int64               `json:"price"`
	Status       ListingStatus       `json:"status"`
	ListedAt     time.Time           `json:"listed_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	LastSequence int64               `json:"last_sequence"` // Last event sequence that updated this listing
}

// SaleView represents the read model for a completed sale
type SaleView struct {
	SaleID     string              `json:"sale_id"`
	Collection marketplace.Address `json:"collection"`
	TokenID    uint64              `json:"token_id"`
	Seller     marketplace.Address `json:"seller"`
	Buyer      marketplace.Address `json:"buyer"`
	Price      int64               `json:"price"`
	OccurredAt time.Time           `json:"occurred_at"`
	Sequence   int64               `json:"sequence"` // Event sequence number
}
