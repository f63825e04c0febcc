package registry

import (
	"fmt"
	"sync"

	"nft-marketplace/internal/marketplace"
)

// token holds the registry's authoritative record for one asset
type token struct {
	owner    marketplace.Address
	approved marketplace.Address // operator authorized to transfer, Zero if none
}

// MemoryRegistry is an in-memory asset registry implementing
// marketplace.AssetRegistry, plus the mint/approve administration the
// marketplace itself never performs.
type MemoryRegistry struct {
	mu     sync.RWMutex
	tokens map[marketplace.Address]map[uint64]*token // collection -> token_id -> record
}

// NewMemoryRegistry creates a new in-memory asset registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		tokens: make(map[marketplace.Address]map[uint64]*token),
	}
}

// Mint creates a new token owned by owner
func (r *MemoryRegistry) Mint(collection marketplace.Address, tokenID uint64, owner marketplace.Address) error {
	if owner == marketplace.Zero {
		return fmt.Errorf("owner required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	collectionTokens, exists := r.tokens[collection]
	if !exists {
		collectionTokens = make(map[uint64]*token)
		r.tokens[collection] = collectionTokens
	}

	if _, exists := collectionTokens[tokenID]; exists {
		return fmt.Errorf("%w: collection=%s token_id=%d", ErrTokenExists, collection, tokenID)
	}

	collectionTokens[tokenID] = &token{owner: owner}
	return nil
}

// Approve sets the approved operator for a token. Caller must be the current
// owner. Approving Zero clears the approval.
func (r *MemoryRegistry) Approve(collection marketplace.Address, tokenID uint64, caller, operator marketplace.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, err := r.get(collection, tokenID)
	if err != nil {
		return err
	}
	if tok.owner != caller {
		return ErrNotTokenOwner
	}

	tok.approved = operator
	return nil
}

// OwnerOf returns the current owner of a token
func (r *MemoryRegistry) OwnerOf(collection marketplace.Address, tokenID uint64) (marketplace.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tok, err := r.get(collection, tokenID)
	if err != nil {
		return marketplace.Zero, err
	}
	return tok.owner, nil
}

// ApprovedOperator returns the operator authorized to transfer a token,
// or Zero if none
func (r *MemoryRegistry) ApprovedOperator(collection marketplace.Address, tokenID uint64) (marketplace.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tok, err := r.get(collection, tokenID)
	if err != nil {
		return marketplace.Zero, err
	}
	return tok.approved, nil
}

// Transfer moves a token from one owner to another.
// Fails if from is not the current owner or no operator approval is present.
// The approval is cleared on a successful transfer.
func (r *MemoryRegistry) Transfer(collection marketplace.Address, tokenID uint64, from, to marketplace.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, err := r.get(collection, tokenID)
	if err != nil {
		return err
	}
	if tok.owner != from {
		return fmt.Errorf("%w: collection=%s token_id=%d owner=%s from=%s",
			ErrNotTokenOwner, collection, tokenID, tok.owner, from)
	}
	if tok.approved == marketplace.Zero {
		return fmt.Errorf("%w: no operator approved for collection=%s token_id=%d",
			ErrTransferNotAllowed, collection, tokenID)
	}

	tok.owner = to
	tok.approved = marketplace.Zero
	return nil
}

// get returns the token record. Caller must hold the lock.
func (r *MemoryRegistry) get(collection marketplace.Address, tokenID uint64) (*token, error) {
	collectionTokens, exists := r.tokens[collection]
	if !exists {
		return nil, &UnknownTokenError{Collection: collection, TokenID: tokenID}
	}
	tok, exists := collectionTokens[tokenID]
	if !exists {
		return nil, &UnknownTokenError{Collection: collection, TokenID: tokenID}
	}
	return tok, nil
}
