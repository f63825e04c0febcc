// Package payment provides the value-transfer collaborator the ledger pushes
// withdrawal payouts through.
package payment

import (
	"errors"
	"fmt"
	"sync"

	"nft-marketplace/internal/marketplace"
)

var ErrInvalidAmount = errors.New("invalid payment amount")

// MemoryChannel is an in-memory payment channel implementing
// marketplace.PaymentChannel. Received value accumulates per address.
type MemoryChannel struct {
	mu       sync.RWMutex
	received map[marketplace.Address]int64
}

// NewMemoryChannel creates a new in-memory payment channel
func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{
		received: make(map[marketplace.Address]int64),
	}
}

// Pay pushes amount to the recipient
func (c *MemoryChannel) Pay(to marketplace.Address, amount int64) error {
	if to == marketplace.Zero {
		return fmt.Errorf("recipient required")
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.received[to] += amount
	return nil
}

// Balance returns the total value pushed to an address (default zero)
func (c *MemoryChannel) Balance(addr marketplace.Address) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.received[addr]
}
