package marketplace

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidPrice              = errors.New("price must be positive")
	ErrAlreadyListed             = errors.New("item already listed")
	ErrNotListed                 = errors.New("item not listed")
	ErrNotOwner                  = errors.New("caller is not the owner")
	ErrNotApprovedForMarketplace = errors.New("marketplace not approved for item")
	ErrPriceNotMet               = errors.New("price not met")
	ErrNoProceeds                = errors.New("no proceeds to withdraw")
	ErrTransferFailed            = errors.New("external transfer failed")
)

// AlreadyListedError reports a list attempt on an already-active key
type AlreadyListedError struct {
	Collection Address
	TokenID    uint64
}

func (e *AlreadyListedError) Error() string {
	return fmt.Sprintf("already listed: collection=%s token_id=%d", e.Collection, e.TokenID)
}

func (e *AlreadyListedError) Is(target error) bool {
	return target == ErrAlreadyListed
}

// NotListedError reports a cancel/update/buy attempt on an inactive key
type NotListedError struct {
	Collection Address
	TokenID    uint64
}

func (e *NotListedError) Error() string {
	return fmt.Sprintf("not listed: collection=%s token_id=%d", e.Collection, e.TokenID)
}

func (e *NotListedError) Is(target error) bool {
	return target == ErrNotListed
}

// PriceNotMetError reports a buy attempt with the wrong attached value.
// Under- and over-payment are both rejected.
type PriceNotMetError struct {
	Collection Address
	TokenID    uint64
	Required   int64
	Supplied   int64
}

func (e *PriceNotMetError) Error() string {
	return fmt.Sprintf("price not met: collection=%s token_id=%d required=%d supplied=%d",
		e.Collection, e.TokenID, e.Required, e.Supplied)
}

func (e *PriceNotMetError) Is(target error) bool {
	return target == ErrPriceNotMet
}

// TransferFailedError reports a failed registry or payment transfer.
// The enclosing operation has been rolled back in full.
type TransferFailedError struct {
	Op  string // "buy" or "withdraw"
	Err error
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("transfer failed during %s: %v", e.Op, e.Err)
}

func (e *TransferFailedError) Is(target error) bool {
	return target == ErrTransferFailed
}

func (e *TransferFailedError) Unwrap() error {
	return e.Err
}
