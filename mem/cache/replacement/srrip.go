package replacement

import "fmt"

type rrpvData struct {
	rrpv  uint8
	valid bool
}

// SRRIP (Static Re-Reference Interval Prediction) keeps a small re-reference
// prediction value (RRPV) per block. A block with the maximum RRPV is
// predicted to be re-referenced in the distant future and is evicted. If no
// candidate has the maximum RRPV, all candidates age until one does.
type SRRIP struct {
	maxRRPV uint8
}

// NewSRRIP returns an SRRIP policy with numBits-bit RRPVs. It panics if
// numBits is not in [1, 8].
func NewSRRIP(numBits int) *SRRIP {
	if numBits < 1 || numBits > 8 {
		panic(fmt.Sprintf("invalid number of RRPV bits: %d", numBits))
	}

	return &SRRIP{
		maxRRPV: uint8((1 << numBits) - 1),
	}
}

// InstantiateEntry creates an invalid entry.
func (p *SRRIP) InstantiateEntry() Data {
	return &rrpvData{rrpv: p.maxRRPV}
}

// Invalidate marks the entry as invalid.
func (p *SRRIP) Invalidate(data Data) {
	d := data.(*rrpvData)
	d.valid = false
	d.rrpv = p.maxRRPV
}

// Touch predicts a near-immediate re-reference.
func (p *SRRIP) Touch(data Data) {
	data.(*rrpvData).rrpv = 0
}

// Reset inserts with a long re-reference interval.
func (p *SRRIP) Reset(data Data) {
	d := data.(*rrpvData)
	d.valid = true
	d.rrpv = p.maxRRPV - 1
}

// GetVictim returns the first invalid candidate or the first candidate with
// the maximum RRPV, aging the candidates if necessary.
func (p *SRRIP) GetVictim(candidates []Data) int {
	mustHaveCandidates(candidates)

	for i, c := range candidates {
		if !c.(*rrpvData).valid {
			return i
		}
	}

	maxInSet := uint8(0)
	victim := 0
	for i, c := range candidates {
		if c.(*rrpvData).rrpv > maxInSet {
			maxInSet = c.(*rrpvData).rrpv
			victim = i
		}
	}

	age := p.maxRRPV - maxInSet
	if age > 0 {
		for i, c := range candidates {
			// Skewed placement may list one block more than once.
			if seenBefore(candidates, i) {
				continue
			}

			c.(*rrpvData).rrpv += age
		}
	}

	return victim
}

func seenBefore(candidates []Data, i int) bool {
	for j := 0; j < i; j++ {
		if candidates[j] == candidates[i] {
			return true
		}
	}

	return false
}
