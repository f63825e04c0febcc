package marketplace

// CollectionState is the exported per-collection ledger state
type CollectionState struct {
	Listings     map[uint64]Listing `json:"listings"`
	LastSequence int64              `json:"last_sequence"`
}

// State is a point-in-time export of the full ledger state,
// used for snapshotting and recovery
type State struct {
	Collections map[Address]CollectionState `json:"collections"`
	Proceeds    map[Address]int64           `json:"proceeds"`
}

// ExportState returns a deep copy of the current ledger state
func (l *MemoryLedger) ExportState() *State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state := &State{
		Collections: make(map[Address]CollectionState),
		Proceeds:    make(map[Address]int64, len(l.proceeds)),
	}

	for key, listing := range l.listings {
		cs, exists := state.Collections[key.Collection]
		if !exists {
			cs = CollectionState{Listings: make(map[uint64]Listing)}
		}
		cs.Listings[key.TokenID] = listing
		state.Collections[key.Collection] = cs
	}

	// Collections with events but no active listings still carry their cursor
	for collection, seq := range l.sequences {
		cs, exists := state.Collections[collection]
		if !exists {
			cs = CollectionState{Listings: make(map[uint64]Listing)}
		}
		cs.LastSequence = seq
		state.Collections[collection] = cs
	}

	for seller, balance := range l.proceeds {
		state.Proceeds[seller] = balance
	}

	return state
}

// RestoreState replaces the ledger state with the given export.
// Intended for startup recovery before the ledger serves requests.
func (l *MemoryLedger) RestoreState(state *State) {
	if state == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.listings = make(map[ListingKey]Listing)
	l.proceeds = make(map[Address]int64)
	l.sequences = make(map[Address]int64)

	for collection, cs := range state.Collections {
		for tokenID, listing := range cs.Listings {
			l.listings[ListingKey{Collection: collection, TokenID: tokenID}] = listing
		}
		if cs.LastSequence > 0 {
			l.sequences[collection] = cs.LastSequence
		}
	}

	for seller, balance := range state.Proceeds {
		if balance > 0 {
			l.proceeds[seller] = balance
		}
	}
}
