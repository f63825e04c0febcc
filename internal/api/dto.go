package api

import "time"

// ListItemRequest represents the request body for listing an item
type ListItemRequest struct {
	Collection string `json:"collection"` // Collection address
	TokenID    uint64 `json:"token_id"`   // Token ID within the collection
	Price      int64  `json:"price"`      // Price in smallest currency unit
	Seller     string `json:"seller"`     // Caller identity, must own the token
}

// UpdateListingRequest represents the request body for updating a listing price
type UpdateListingRequest struct {
	Price  int64  `json:"price"`  // New price in smallest currency unit
	Caller string `json:"caller"` // Caller identity, must be the seller
}

// BuyItemRequest represents the request body for purchasing a listed item
type BuyItemRequest struct {
	Collection string `json:"collection"` // Collection address
	TokenID    uint64 `json:"token_id"`   // Token ID within the collection
	Buyer      string `json:"buyer"`      // Caller identity
	Value      int64  `json:"value"`      // Payment supplied, must equal the listing price
}

// WithdrawRequest represents the request body for withdrawing proceeds
type WithdrawRequest struct {
	Seller string `json:"seller"` // Caller identity
}

// MintAssetRequest represents the request body for minting a token
type MintAssetRequest struct {
	Collection string `json:"collection"` // Collection address
	TokenID    uint64 `json:"token_id"`   // Token ID within the collection
	Owner      string `json:"owner"`      // Initial owner
}

// ApproveAssetRequest represents the request body for approving an operator
type ApproveAssetRequest struct {
	Collection string `json:"collection"` // Collection address
	TokenID    uint64 `json:"token_id"`   // Token ID within the collection
	Caller     string `json:"caller"`     // Caller identity, must own the token
	Operator   string `json:"operator"`   // Operator to authorize, empty clears
}

// ListingResponse represents an active listing
type ListingResponse struct {
	Collection string `json:"collection"` // Collection address
	TokenID    uint64 `json:"token_id"`   // Token ID within the collection
	Price      int64  `json:"price"`      // Price in smallest currency unit
	Seller     string `json:"seller"`     // Seller identity
}

// ListingViewResponse represents a listing in the read model
type ListingViewResponse struct {
	Collection string    `json:"collection"` // Collection address
	TokenID    uint64    `json:"token_id"`   // Token ID within the collection
	Seller     string    `json:"seller"`     // Seller identity
	Price      int64     `json:"price"`      // Price in smallest currency unit
	Status     string    `json:"status"`     // ACTIVE, CANCELED or SOLD
	ListedAt   time.Time `json:"listed_at"`  // First listing time
	UpdatedAt  time.Time `json:"updated_at"` // Last change time
}

// SaleViewResponse represents a completed sale in the read model
type SaleViewResponse struct {
	SaleID     string    `json:"sale_id"`     // Sale ID
	Collection string    `json:"collection"`  // Collection address
	TokenID    uint64    `json:"token_id"`    // Token ID within the collection
	Seller     string    `json:"seller"`      // Seller identity
	Buyer      string    `json:"buyer"`       // Buyer identity
	Price      int64     `json:"price"`       // Sale price
	OccurredAt time.Time `json:"occurred_at"` // Sale time
}

// WithdrawResponse represents the result of a proceeds withdrawal
type WithdrawResponse struct {
	Seller string `json:"seller"` // Seller identity
	Amount int64  `json:"amount"` // Amount paid out
}

// ProceedsResponse represents a seller's withdrawable balance
type ProceedsResponse struct {
	Seller   string `json:"seller"`   // Seller identity
	Proceeds int64  `json:"proceeds"` // Withdrawable balance, zero if none
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code    string `json:"code"`    // Error code
	Message string `json:"message"` // Error message
}
