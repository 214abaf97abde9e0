package tagging

import (
	"fmt"

	"github.com/sarchlab/skewcache/mem/cache/replacement"
)

// A Block is one storage slot of the cache, identified by its set and way.
//
// Blocks are created once, when the tag store is built, and live in one
// contiguous slice owned by the tag store. SetID and WayID never change.
type Block struct {
	// Tag is the tag of the resident address. Under skewed indexing the
	// address cannot be rebuilt by shifting the tag alone; use
	// RegenerateBlkAddr.
	Tag uint64

	// Microtag is a short fingerprint of the resident address used to
	// reject candidates before the full tag comparison.
	Microtag uint8

	IsValid  bool
	IsSecure bool

	SetID int
	WayID int

	// SkewWay is the logical way under which the resident address was
	// placed. With column-associative indexing it can differ from WayID.
	SkewWay int

	// CacheAddress is the offset of the payload of the block in the data
	// array.
	CacheAddress uint64

	// ReplacementData is owned by the replacement policy.
	ReplacementData replacement.Data
}

func (b *Block) String() string {
	state := "invalid"
	if b.IsValid {
		state = "valid"
		if b.IsSecure {
			state = "valid,secure"
		}
	}

	return fmt.Sprintf("[%d][%d] tag=0x%x utag=0x%02x %s",
		b.SetID, b.WayID, b.Tag, b.Microtag, state)
}
