// Package tagging provides the tag store of a cache: the blocks, the
// policies that map addresses to blocks, and the microtagged lookup.
package tagging

import (
	"errors"
	"fmt"

	"github.com/sarchlab/skewcache/mem"
	"github.com/sarchlab/skewcache/mem/bitfield"
	"github.com/sarchlab/skewcache/mem/cache/replacement"
	"github.com/sarchlab/skewcache/sim/hooking"
)

// Hook positions of a tag store. The item of the hook context is always a
// TagEvent.
var (
	HookPosTagLookup     = &hooking.HookPos{Name: "TagLookup"}
	HookPosTagInsert     = &hooking.HookPos{Name: "TagInsert"}
	HookPosTagEvict      = &hooking.HookPos{Name: "TagEvict"}
	HookPosTagInvalidate = &hooking.HookPos{Name: "TagInvalidate"}
)

// ErrNotACandidate is returned when inserting an address into a block that
// the indexing policy does not list for the address.
var ErrNotACandidate = errors.New("block is not a candidate for the address")

// ErrBlockInUse is returned when inserting into a block that is still valid.
var ErrBlockInUse = errors.New("block is still valid")

// ErrMicrotagShadowed is returned when inserting an address into a candidate
// that comes after another candidate with the same microtag. Lookups stop at
// the earlier candidate, so the inserted block could never be found.
var ErrMicrotagShadowed = errors.New("block is shadowed by a matching microtag")

// A TagEvent describes what happened to a tag store.
type TagEvent struct {
	Address uint64
	Secure  bool
	Block   *Block

	// Hit is only meaningful for lookups.
	Hit bool

	// MicrotagReject is set on a lookup that stopped at a block whose
	// microtag matched but whose tag, validity, or security did not.
	MicrotagReject bool
}

// MicrotaggedTags is a tag store that checks a short microtag of every
// candidate block before the full tag.
//
// The store is not safe for concurrent use.
type MicrotaggedTags struct {
	hooking.HookableBase

	name          string
	blockSize     int
	securityAware bool

	blocks            []Block
	indexingPolicy    IndexingPolicy
	replacementPolicy replacement.Policy
	dataArray         *mem.Storage

	tagsInUse int
	stats     Stats
}

// NewMicrotaggedTags creates a tag store and binds all of its blocks to the
// indexing policy and the replacement policy.
func NewMicrotaggedTags(
	name string,
	indexingPolicy IndexingPolicy,
	replacementPolicy replacement.Policy,
	securityAware bool,
) (*MicrotaggedTags, error) {
	if indexingPolicy == nil {
		return nil, fmt.Errorf("%w: an indexing policy is required",
			ErrInvalidConfig)
	}

	if replacementPolicy == nil {
		return nil, fmt.Errorf("%w: a replacement policy is required",
			ErrInvalidConfig)
	}

	blockSize := indexingPolicy.BlockSize()
	if blockSize < 4 || !bitfield.IsPowerOf2(uint64(blockSize)) {
		return nil, fmt.Errorf(
			"%w: block size must be at least 4 and a power of 2",
			ErrInvalidConfig)
	}

	numBlocks := indexingPolicy.NumSets() * indexingPolicy.Associativity()

	t := &MicrotaggedTags{
		name:              name,
		blockSize:         blockSize,
		securityAware:     securityAware,
		blocks:            make([]Block, numBlocks),
		indexingPolicy:    indexingPolicy,
		replacementPolicy: replacementPolicy,
		dataArray:         mem.NewStorage(uint64(numBlocks * blockSize)),
	}

	t.init()

	return t, nil
}

func (t *MicrotaggedTags) init() {
	for i := range t.blocks {
		blk := &t.blocks[i]

		t.indexingPolicy.SetEntry(blk, i)
		blk.CacheAddress = uint64(i * t.blockSize)
		blk.ReplacementData = t.replacementPolicy.InstantiateEntry()
	}
}

// Name returns the name of the tag store.
func (t *MicrotaggedTags) Name() string {
	return t.name
}

// IndexingPolicy returns the indexing policy of the tag store.
func (t *MicrotaggedTags) IndexingPolicy() IndexingPolicy {
	return t.indexingPolicy
}

// NumBlocks returns the number of blocks of the store.
func (t *MicrotaggedTags) NumBlocks() int {
	return len(t.blocks)
}

// BlockSize returns the number of bytes of a block.
func (t *MicrotaggedTags) BlockSize() int {
	return t.blockSize
}

// TagsInUse returns the number of valid blocks.
func (t *MicrotaggedTags) TagsInUse() int {
	return t.tagsInUse
}

// Stats returns a copy of the statistics.
func (t *MicrotaggedTags) Stats() Stats {
	s := t.stats
	s.TagsInUse = t.tagsInUse

	return s
}

// ResetStats clears the statistics. The number of tags in use is kept, as it
// reflects the content of the store.
func (t *MicrotaggedTags) ResetStats() {
	t.stats = Stats{}
}

func (t *MicrotaggedTags) normalizeSecure(secure bool) bool {
	return secure && t.securityAware
}

// ExtractTag returns the tag of an address.
func (t *MicrotaggedTags) ExtractTag(addr uint64) uint64 {
	return t.indexingPolicy.ExtractTag(addr)
}

// FindBlock returns the block that holds the address in the given security
// domain, or nil.
//
// Candidates are checked in way order. The first candidate whose microtag
// matches decides the result: it is a hit if it is valid and its tag and
// security match, and a miss otherwise. The remaining candidates are not
// examined, even if one of them holds the address.
func (t *MicrotaggedTags) FindBlock(addr uint64, secure bool) *Block {
	blk, _ := t.lookup(addr, t.normalizeSecure(secure))

	return blk
}

func (t *MicrotaggedTags) lookup(
	addr uint64,
	secure bool,
) (blk *Block, microtagReject bool) {
	tag := t.ExtractTag(addr)
	microtag := Microtag(addr)

	for _, candidate := range t.indexingPolicy.GetPossibleEntries(addr) {
		if candidate.Microtag != microtag {
			continue
		}

		if candidate.IsValid &&
			candidate.Tag == tag &&
			candidate.IsSecure == secure {
			return candidate, false
		}

		return nil, true
	}

	return nil, false
}

// AccessBlock looks up an address like FindBlock. On a hit, the replacement
// policy is told about the access. Statistics and hooks are updated.
func (t *MicrotaggedTags) AccessBlock(addr uint64, secure bool) *Block {
	secure = t.normalizeSecure(secure)
	blk, microtagReject := t.lookup(addr, secure)

	t.stats.Accesses++

	if blk != nil {
		t.stats.Hits++
		t.replacementPolicy.Touch(blk.ReplacementData)
	} else {
		t.stats.Misses++
		if microtagReject {
			t.stats.MicrotagRejects++
		}
	}

	t.invoke(HookPosTagLookup, TagEvent{
		Address:        addr,
		Secure:         secure,
		Block:          blk,
		Hit:            blk != nil,
		MicrotagReject: microtagReject,
	})

	return blk
}

// FindVictim returns the block to use for an address.
//
// The first candidate whose microtag matches the address is returned, valid
// or not, since a lookup of the address would stop there. If no microtag
// matches, an invalid candidate is chosen first. Otherwise the replacement
// policy picks among the candidates. If the returned block is valid, it must
// be evicted before inserting.
func (t *MicrotaggedTags) FindVictim(addr uint64) *Block {
	candidates := t.indexingPolicy.GetPossibleEntries(addr)
	microtag := Microtag(addr)

	for _, blk := range candidates {
		if blk.Microtag == microtag {
			return blk
		}
	}

	for _, blk := range candidates {
		if !blk.IsValid {
			return blk
		}
	}

	data := make([]replacement.Data, len(candidates))
	for i, blk := range candidates {
		data[i] = blk.ReplacementData
	}

	return candidates[t.replacementPolicy.GetVictim(data)]
}

// Insert places an address into a block. The block must be invalid, must be
// one of the candidates of the address, and must not follow a candidate with
// the same microtag.
func (t *MicrotaggedTags) Insert(addr uint64, secure bool, blk *Block) error {
	if blk.IsValid {
		return fmt.Errorf("%w: %s", ErrBlockInUse, blk)
	}

	way, err := t.logicalWayOf(addr, blk)
	if err != nil {
		return err
	}

	secure = t.normalizeSecure(secure)

	blk.Tag = t.ExtractTag(addr)
	blk.Microtag = Microtag(addr)
	blk.IsSecure = secure
	blk.IsValid = true
	blk.SkewWay = way

	t.tagsInUse++
	t.stats.Insertions++
	t.replacementPolicy.Reset(blk.ReplacementData)

	t.invoke(HookPosTagInsert, TagEvent{
		Address: addr,
		Secure:  secure,
		Block:   blk,
	})

	return nil
}

func (t *MicrotaggedTags) logicalWayOf(addr uint64, blk *Block) (int, error) {
	microtag := Microtag(addr)
	shadowedBy := -1

	for way, candidate := range t.indexingPolicy.GetPossibleEntries(addr) {
		if candidate == blk {
			if shadowedBy >= 0 {
				return 0, fmt.Errorf("%w: 0x%x, %s by way %d",
					ErrMicrotagShadowed, addr, blk, shadowedBy)
			}

			return way, nil
		}

		if shadowedBy < 0 && candidate.Microtag == microtag {
			shadowedBy = way
		}
	}

	return 0, fmt.Errorf("%w: 0x%x, %s", ErrNotACandidate, addr, blk)
}

// Evict invalidates a valid block to make room for another address and
// returns the address the block held.
func (t *MicrotaggedTags) Evict(blk *Block) uint64 {
	t.mustBeValid(blk)

	addr := t.RegenerateBlkAddr(blk)

	t.stats.Evictions++
	t.invoke(HookPosTagEvict, TagEvent{
		Address: addr,
		Secure:  blk.IsSecure,
		Block:   blk,
	})

	t.invalidate(blk)

	return addr
}

// Invalidate marks a valid block as invalid and releases its replacement
// state. The tag and microtag are left in place; they are ignored while the
// block is invalid.
func (t *MicrotaggedTags) Invalidate(blk *Block) {
	t.mustBeValid(blk)

	t.stats.Invalidations++
	t.invoke(HookPosTagInvalidate, TagEvent{
		Address: t.RegenerateBlkAddr(blk),
		Secure:  blk.IsSecure,
		Block:   blk,
	})

	t.invalidate(blk)
}

func (t *MicrotaggedTags) invalidate(blk *Block) {
	blk.IsValid = false
	t.tagsInUse--
	t.replacementPolicy.Invalidate(blk.ReplacementData)
}

func (t *MicrotaggedTags) mustBeValid(blk *Block) {
	if !blk.IsValid {
		panic(fmt.Sprintf("block %s is not valid", blk))
	}
}

// RegenerateBlkAddr returns the block-aligned address held by a block.
func (t *MicrotaggedTags) RegenerateBlkAddr(blk *Block) uint64 {
	return t.indexingPolicy.RegenerateAddr(blk.Tag, blk)
}

// ForEachBlock visits the blocks in array order until visit returns false.
func (t *MicrotaggedTags) ForEachBlock(visit func(blk *Block) bool) {
	for i := range t.blocks {
		if !visit(&t.blocks[i]) {
			return
		}
	}
}

// ReadData returns a copy of the payload of a block.
func (t *MicrotaggedTags) ReadData(blk *Block) ([]byte, error) {
	return t.dataArray.Read(blk.CacheAddress, uint64(t.blockSize))
}

// WriteData writes into the payload of a block, starting at offset.
func (t *MicrotaggedTags) WriteData(blk *Block, offset int, data []byte) error {
	if offset < 0 || offset+len(data) > t.blockSize {
		return fmt.Errorf("writing %d bytes at offset %d of a %d-byte block",
			len(data), offset, t.blockSize)
	}

	return t.dataArray.Write(blk.CacheAddress+uint64(offset), data)
}

func (t *MicrotaggedTags) invoke(pos *hooking.HookPos, event TagEvent) {
	if t.NumHooks() == 0 {
		return
	}

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    pos,
		Item:   event,
	})
}
