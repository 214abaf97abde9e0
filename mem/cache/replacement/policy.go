// Package replacement provides the replacement policies that decide which
// cache block to evict.
//
// A policy owns a small piece of state per cache block. The tag store asks
// the policy for the state when it creates the block and hands the state back
// on every access, fill, and invalidation without looking into it.
package replacement

import (
	"fmt"
)

// Data is the per-block state that a replacement policy maintains.
type Data interface{}

// A Policy decides which of a list of candidate blocks should be evicted.
type Policy interface {
	// InstantiateEntry creates the state for one block.
	InstantiateEntry() Data

	// Invalidate marks the state as unused, so that the block is preferred
	// for eviction.
	Invalidate(data Data)

	// Touch updates the state when the block is accessed.
	Touch(data Data)

	// Reset updates the state when a new block is filled in.
	Reset(data Data)

	// GetVictim returns the index of the candidate to evict. The candidate
	// list must not be empty.
	GetVictim(candidates []Data) int
}

// New creates a replacement policy by name. Supported names are "lru",
// "fifo", "random", and "srrip".
func New(name string) (Policy, error) {
	switch name {
	case "lru":
		return NewLRU(), nil
	case "fifo":
		return NewFIFO(), nil
	case "random":
		return NewRandom(0), nil
	case "srrip":
		return NewSRRIP(2), nil
	default:
		return nil, fmt.Errorf("unknown replacement policy: %s", name)
	}
}

func mustHaveCandidates(candidates []Data) {
	if len(candidates) == 0 {
		panic("no candidate to evict")
	}
}
