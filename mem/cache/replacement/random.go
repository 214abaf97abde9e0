package replacement

import (
	"math/rand/v2"
)

type randomData struct {
	valid bool
}

// Random evicts a random valid block, unless an invalid block exists.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a random policy. The same seed always produces the same
// eviction sequence.
func NewRandom(seed uint64) *Random {
	return &Random{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// InstantiateEntry creates an invalid entry.
func (p *Random) InstantiateEntry() Data {
	return &randomData{}
}

// Invalidate marks the entry as invalid.
func (p *Random) Invalidate(data Data) {
	data.(*randomData).valid = false
}

// Touch does nothing.
func (p *Random) Touch(_ Data) {
}

// Reset marks the entry as valid.
func (p *Random) Reset(data Data) {
	data.(*randomData).valid = true
}

// GetVictim returns the first invalid candidate, or a random one.
func (p *Random) GetVictim(candidates []Data) int {
	mustHaveCandidates(candidates)

	for i, c := range candidates {
		if !c.(*randomData).valid {
			return i
		}
	}

	return p.rng.IntN(len(candidates))
}
