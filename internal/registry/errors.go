package registry

import (
	"errors"
	"fmt"

	"nft-marketplace/internal/marketplace"
)

// Common errors
var (
	ErrUnknownToken       = errors.New("unknown token")
	ErrTokenExists        = errors.New("token already exists")
	ErrNotTokenOwner      = errors.New("not token owner")
	ErrTransferNotAllowed = errors.New("transfer not allowed")
)

// UnknownTokenError reports a lookup for a token the registry has never minted
type UnknownTokenError struct {
	Collection marketplace.Address
	TokenID    uint64
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown token: collection=%s token_id=%d", e.Collection, e.TokenID)
}

func (e *UnknownTokenError) Is(target error) bool {
	return target == ErrUnknownToken
}
