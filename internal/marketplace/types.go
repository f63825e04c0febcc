package marketplace

// Address identifies a caller, owner, seller or collection.
// Identity is supplied by the host environment and passed explicitly to every operation.
type Address string

// Zero is the empty address, used to clear registry approvals.
const Zero Address = ""

// ListingKey identifies one asset: a token within a collection
type ListingKey struct {
	Collection Address
	TokenID    uint64
}

// Listing represents an active offer to sell one asset
type Listing struct {
	Price  int64   `json:"price"`  // price in smallest currency unit, always > 0 for an active listing
	Seller Address `json:"seller"` // identity that created the listing
}

// AssetRegistry is the external authority for asset ownership and approvals.
// The ledger's seller field is a cached claim; the registry is the source of truth
// and is re-consulted at transfer time.
type AssetRegistry interface {
	// OwnerOf returns the current owner of the asset
	OwnerOf(collection Address, tokenID uint64) (Address, error)

	// ApprovedOperator returns the identity currently authorized to transfer
	// the asset, or Zero if none
	ApprovedOperator(collection Address, tokenID uint64) (Address, error)

	// Transfer moves the asset from one owner to another.
	// Fails if from is not the current owner or no operator approval is present.
	Transfer(collection Address, tokenID uint64, from, to Address) error
}

// PaymentChannel pushes currency value to a recipient
type PaymentChannel interface {
	// Pay pushes amount to the recipient; may fail (insufficient funds,
	// recipient rejection)
	Pay(to Address, amount int64) error
}

// Ledger defines the marketplace ledger operations
type Ledger interface {
	// ListItem creates a listing for an asset owned by caller.
	// The registry must have the marketplace approved as operator.
	ListItem(collection Address, tokenID uint64, price int64, caller Address) error

	// CancelListing removes the caller's listing for an asset
	CancelListing(collection Address, tokenID uint64, caller Address) error

	// UpdateListing overwrites the price of the caller's listing
	UpdateListing(collection Address, tokenID uint64, newPrice int64, caller Address) error

	// BuyItem purchases a listed asset; value must equal the listing price exactly
	BuyItem(collection Address, tokenID uint64, caller Address, value int64) error

	// WithdrawProceeds pays out the caller's accumulated sale proceeds.
	// Returns the amount paid.
	WithdrawProceeds(caller Address) (int64, error)

	// GetListing returns the active listing for an asset, if any
	GetListing(collection Address, tokenID uint64) (Listing, bool)

	// GetProceeds returns the withdrawable balance for a seller (default zero)
	GetProceeds(seller Address) int64
}
