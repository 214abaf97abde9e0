package tagging

import (
	"fmt"

	"github.com/sarchlab/skewcache/mem/bitfield"
)

// ColumnAssociative is a skewed indexing policy. Each logical way computes a
// different slot for the same address, so two addresses that conflict in one
// way rarely conflict in the others.
//
// Once the block offset is dropped, the address is split into two fields of
// equal width, low (bits [msbShift, 0]) and high (bits
// [2*msbShift+1, msbShift+1]). For way k, high is rotated right by k within
// its own width and XOR-ed with low. The result is a flat index over all the
// sets*ways slots: the upper bits select the set and the lower log2(ways) bits
// select the way in the set.
//
// Because the rotation is a permutation and XOR is invertible, the address can
// be rebuilt from the tag, the slot, and the logical way.
type ColumnAssociative struct {
	indexingBase

	// msbShift is the position of the most significant bit of the low field.
	msbShift int
}

// NewColumnAssociative creates a column-associative indexing policy.
//
// The rotation only yields distinct functions while the way number is less
// than the field width, so the associativity cannot exceed
// log2(numSets)+log2(assoc).
func NewColumnAssociative(
	numSets, assoc, blockSize int,
) (*ColumnAssociative, error) {
	base, err := newIndexingBase(numSets, assoc, blockSize)
	if err != nil {
		return nil, err
	}

	p := &ColumnAssociative{
		indexingBase: base,
		msbShift:     base.log2Sets + base.log2Assoc - 1,
	}

	fieldWidth := p.msbShift + 1
	if fieldWidth < 1 {
		return nil, fmt.Errorf(
			"%w: column associative indexing needs at least 2 blocks",
			ErrInvalidConfig)
	}

	if assoc > fieldWidth {
		return nil, fmt.Errorf(
			"%w: associativity %d exceeds the skewing field width %d",
			ErrInvalidConfig, assoc, fieldWidth)
	}

	if p.setShift+2*fieldWidth > 64 {
		return nil, fmt.Errorf(
			"%w: skewing fields do not fit in a 64-bit address",
			ErrInvalidConfig)
	}

	return p, nil
}

// skew rotates the high field right by way bits, within the field width.
func (p *ColumnAssociative) skew(high uint64, way int) uint64 {
	if way == 0 {
		return high
	}

	return bitfield.InsertBits(
		high>>uint(way),
		p.msbShift, p.msbShift-way+1,
		bitfield.Bits(high, way-1, 0),
	)
}

// hash computes the flat slot index of a block number (an address with the
// block offset dropped) for a way.
func (p *ColumnAssociative) hash(blockNumber uint64, way int) uint64 {
	low := bitfield.Bits(blockNumber, p.msbShift, 0)
	high := bitfield.Bits(blockNumber, 2*p.msbShift+1, p.msbShift+1)

	return low ^ p.skew(high, way)
}

// ExtractSet returns the flat slot index of an address for a way.
func (p *ColumnAssociative) ExtractSet(addr uint64, way int) int {
	if way < 0 || way >= p.assoc {
		panic(fmt.Sprintf("way %d out of range", way))
	}

	return int(p.hash(addr>>uint(p.setShift), way))
}

// GetPossibleEntries returns one block per logical way. The physical way of
// the block for logical way k is generally not k.
func (p *ColumnAssociative) GetPossibleEntries(addr uint64) []*Block {
	entries := make([]*Block, 0, p.assoc)

	for way := 0; way < p.assoc; way++ {
		index := p.ExtractSet(addr, way)
		setID := index >> uint(p.log2Assoc)
		wayID := index & (p.assoc - 1)
		entries = append(entries, p.GetEntry(setID, wayID))
	}

	return entries
}

// RegenerateAddr rebuilds the address stored in a block. It undoes the
// skewing of the logical way recorded in the block.
func (p *ColumnAssociative) RegenerateAddr(tag uint64, block *Block) uint64 {
	index := uint64(block.SetID<<uint(p.log2Assoc) | block.WayID)

	// The tag starts at set bit log2(sets), so the high field sits at tag
	// bit log2(assoc).
	high := bitfield.Bits(tag, p.msbShift+p.log2Assoc, p.log2Assoc)
	low := index ^ p.skew(high, block.SkewWay)

	setBits := low & bitfield.Mask(p.log2Sets)

	return (tag << uint(p.tagShift)) | (setBits << uint(p.setShift))
}
