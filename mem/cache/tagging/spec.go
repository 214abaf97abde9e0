package tagging

import (
	"fmt"

	"github.com/sarchlab/skewcache/mem/cache/replacement"
)

// Spec holds the immutable configuration of a tag store.
type Spec struct {
	NumSets       int
	Associativity int
	BlockSize     int

	// SecurityAware makes lookups and insertions distinguish the secure
	// and the non-secure domain. When false, every request is treated as
	// non-secure.
	SecurityAware bool

	IndexingPolicy    string
	ReplacementPolicy string
}

// Defaults returns a Spec for a 16KB, 4-way, column-associative store.
func Defaults() Spec {
	return Spec{
		NumSets:           64,
		Associativity:     4,
		BlockSize:         64,
		SecurityAware:     true,
		IndexingPolicy:    ColumnAssociativeIndexing,
		ReplacementPolicy: "lru",
	}
}

// Validate returns an error if a tag store cannot be built from the Spec.
func (s Spec) Validate() error {
	if _, err := NewIndexingPolicy(
		s.IndexingPolicy,
		s.NumSets, s.Associativity, s.BlockSize,
	); err != nil {
		return err
	}

	if _, err := replacement.New(s.ReplacementPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// ByteSize returns the number of data bytes that the store can hold.
func (s Spec) ByteSize() uint64 {
	return uint64(s.NumSets) * uint64(s.Associativity) * uint64(s.BlockSize)
}
