package tagging

import (
	"fmt"

	"github.com/sarchlab/skewcache/mem/cache/replacement"
	"github.com/sarchlab/skewcache/sim/hooking"
)

// Builder can build tag stores.
type Builder struct {
	spec          Spec
	cacheByteSize uint64

	replacementPolicy replacement.Policy
	hooks             []hooking.Hook
}

// MakeBuilder creates a new builder with the default Spec.
func MakeBuilder() Builder {
	return Builder{
		spec: Defaults(),
	}
}

// WithSpec replaces the whole Spec.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithNumSets sets the number of sets.
func (b Builder) WithNumSets(numSets int) Builder {
	b.spec.NumSets = numSets
	return b
}

// WithAssociativity sets the number of ways.
func (b Builder) WithAssociativity(assoc int) Builder {
	b.spec.Associativity = assoc
	return b
}

// WithBlockSize sets the number of bytes per block.
func (b Builder) WithBlockSize(blockSize int) Builder {
	b.spec.BlockSize = blockSize
	return b
}

// WithCacheByteSize derives the number of sets from the total capacity, the
// associativity, and the block size when building.
func (b Builder) WithCacheByteSize(byteSize uint64) Builder {
	b.cacheByteSize = byteSize
	return b
}

// WithSecurityAware sets if the store separates security domains.
func (b Builder) WithSecurityAware(securityAware bool) Builder {
	b.spec.SecurityAware = securityAware
	return b
}

// WithIndexingPolicy selects the indexing policy by name.
func (b Builder) WithIndexingPolicy(name string) Builder {
	b.spec.IndexingPolicy = name
	return b
}

// WithReplacementPolicy selects the replacement policy by name.
func (b Builder) WithReplacementPolicy(name string) Builder {
	b.spec.ReplacementPolicy = name
	return b
}

// WithReplacementPolicyInstance uses a given replacement policy instead of
// creating one by name.
func (b Builder) WithReplacementPolicyInstance(p replacement.Policy) Builder {
	b.replacementPolicy = p
	return b
}

// WithHook registers a hook to the built tag store.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// Spec returns the Spec that Build would use.
func (b Builder) Spec() Spec {
	spec := b.spec

	if b.cacheByteSize > 0 {
		b.mustBeFullSets(spec)
		setSize := uint64(spec.BlockSize) * uint64(spec.Associativity)
		spec.NumSets = int(b.cacheByteSize / setSize)
	}

	return spec
}

// Build builds a tag store. It panics if the configuration is invalid, so
// that a simulation never runs with an undefined mapping.
func (b Builder) Build(name string) *MicrotaggedTags {
	spec := b.Spec()

	indexingPolicy, err := NewIndexingPolicy(
		spec.IndexingPolicy,
		spec.NumSets, spec.Associativity, spec.BlockSize,
	)
	if err != nil {
		panic(err)
	}

	replacementPolicy := b.createReplacementPolicy(spec)

	t, err := NewMicrotaggedTags(
		name, indexingPolicy, replacementPolicy, spec.SecurityAware)
	if err != nil {
		panic(err)
	}

	for _, h := range b.hooks {
		t.AcceptHook(h)
	}

	return t
}

func (b Builder) createReplacementPolicy(spec Spec) replacement.Policy {
	if b.replacementPolicy != nil {
		return b.replacementPolicy
	}

	p, err := replacement.New(spec.ReplacementPolicy)
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	return p
}

func (b Builder) mustBeFullSets(spec Spec) {
	setSize := uint64(spec.BlockSize) * uint64(spec.Associativity)
	if setSize == 0 || b.cacheByteSize%setSize != 0 {
		panic(fmt.Errorf("%w: cache must have a integer number of sets",
			ErrInvalidConfig))
	}
}
