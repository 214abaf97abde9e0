package tagging

import (
	"github.com/sarchlab/skewcache/mem/bitfield"
)

// SetAssociative is the conventional indexing policy. The set bits of an
// address select one set and every way of that set is a candidate.
type SetAssociative struct {
	indexingBase
}

// NewSetAssociative creates a conventional set-associative indexing policy.
func NewSetAssociative(numSets, assoc, blockSize int) (*SetAssociative, error) {
	base, err := newIndexingBase(numSets, assoc, blockSize)
	if err != nil {
		return nil, err
	}

	return &SetAssociative{indexingBase: base}, nil
}

// ExtractSet returns the set of an address. The way does not matter.
func (p *SetAssociative) ExtractSet(addr uint64, _ int) int {
	return int((addr >> uint(p.setShift)) & bitfield.Mask(p.log2Sets))
}

// GetPossibleEntries returns the blocks of the set of the address, in way
// order.
func (p *SetAssociative) GetPossibleEntries(addr uint64) []*Block {
	setID := p.ExtractSet(addr, 0)
	start := setID * p.assoc

	entries := make([]*Block, p.assoc)
	copy(entries, p.entries[start:start+p.assoc])

	return entries
}

// RegenerateAddr rebuilds an address from the tag and the set of the block.
func (p *SetAssociative) RegenerateAddr(tag uint64, block *Block) uint64 {
	return (tag << uint(p.tagShift)) | (uint64(block.SetID) << uint(p.setShift))
}
