package tagging

import (
	"errors"
	"fmt"

	"github.com/sarchlab/skewcache/mem/bitfield"
)

// ErrInvalidConfig is wrapped by all the errors caused by a cache geometry or
// a collaborator that cannot be used.
var ErrInvalidConfig = errors.New("invalid tag store configuration")

// Names of the indexing policies that can be selected by configuration.
const (
	SetAssociativeIndexing    = "set_associative"
	ColumnAssociativeIndexing = "column_associative"
)

// An IndexingPolicy maps addresses to the slots that may hold them.
//
// The policy does not own the blocks. The tag store binds each of its blocks
// to the policy once with SetEntry.
type IndexingPolicy interface {
	// SetEntry binds a block to the flat slot index, which is
	// setID*Associativity()+wayID.
	SetEntry(block *Block, index int)

	// GetEntry returns the block bound at a set and way.
	GetEntry(setID, wayID int) *Block

	// GetPossibleEntries returns, in lookup order, one candidate block per
	// way. The same block may appear more than once.
	GetPossibleEntries(addr uint64) []*Block

	// RegenerateAddr rebuilds the block-aligned address that is stored in a
	// block from its tag.
	RegenerateAddr(tag uint64, block *Block) uint64

	// ExtractSet returns the index that the policy computes for an address
	// in a logical way.
	ExtractSet(addr uint64, way int) int

	// ExtractTag returns the tag bits of an address.
	ExtractTag(addr uint64) uint64

	NumSets() int
	Associativity() int
	BlockSize() int
}

// NewIndexingPolicy creates an indexing policy by name.
func NewIndexingPolicy(
	name string,
	numSets, assoc, blockSize int,
) (IndexingPolicy, error) {
	switch name {
	case SetAssociativeIndexing:
		return NewSetAssociative(numSets, assoc, blockSize)
	case ColumnAssociativeIndexing:
		return NewColumnAssociative(numSets, assoc, blockSize)
	default:
		return nil, fmt.Errorf("%w: unknown indexing policy %q",
			ErrInvalidConfig, name)
	}
}

// indexingBase holds what all the indexing policies share: the geometry and
// the non-owning view of the blocks.
type indexingBase struct {
	numSets   int
	assoc     int
	blockSize int

	log2Sets  int
	log2Assoc int

	// setShift drops the block offset; tagShift drops offset and set bits.
	setShift int
	tagShift int

	entries []*Block
}

func newIndexingBase(numSets, assoc, blockSize int) (indexingBase, error) {
	if err := validateGeometry(numSets, assoc, blockSize); err != nil {
		return indexingBase{}, err
	}

	b := indexingBase{
		numSets:   numSets,
		assoc:     assoc,
		blockSize: blockSize,
		log2Sets:  bitfield.FloorLog2(uint64(numSets)),
		log2Assoc: bitfield.FloorLog2(uint64(assoc)),
		setShift:  bitfield.FloorLog2(uint64(blockSize)),
		entries:   make([]*Block, numSets*assoc),
	}
	b.tagShift = b.setShift + b.log2Sets

	return b, nil
}

func validateGeometry(numSets, assoc, blockSize int) error {
	if blockSize < 4 || !bitfield.IsPowerOf2(uint64(blockSize)) {
		return fmt.Errorf("%w: block size must be at least 4 and a power of 2, got %d",
			ErrInvalidConfig, blockSize)
	}

	if numSets <= 0 || !bitfield.IsPowerOf2(uint64(numSets)) {
		return fmt.Errorf("%w: number of sets must be a power of 2, got %d",
			ErrInvalidConfig, numSets)
	}

	if assoc <= 0 || !bitfield.IsPowerOf2(uint64(assoc)) {
		return fmt.Errorf("%w: associativity must be a power of 2, got %d",
			ErrInvalidConfig, assoc)
	}

	return nil
}

func (b *indexingBase) SetEntry(block *Block, index int) {
	if index < 0 || index >= len(b.entries) {
		panic(fmt.Sprintf("entry index %d out of range", index))
	}

	block.SetID = index / b.assoc
	block.WayID = index % b.assoc
	b.entries[index] = block
}

func (b *indexingBase) GetEntry(setID, wayID int) *Block {
	return b.entries[setID*b.assoc+wayID]
}

func (b *indexingBase) ExtractTag(addr uint64) uint64 {
	return addr >> uint(b.tagShift)
}

func (b *indexingBase) NumSets() int {
	return b.numSets
}

func (b *indexingBase) Associativity() int {
	return b.assoc
}

func (b *indexingBase) BlockSize() int {
	return b.blockSize
}
