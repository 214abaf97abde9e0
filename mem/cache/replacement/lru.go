package replacement

type lruData struct {
	lastTouch uint64
}

// LRU evicts the least recently used block. Invalid blocks are considered
// never touched and are evicted first.
type LRU struct {
	tick uint64
}

// NewLRU returns a newly constructed LRU policy.
func NewLRU() *LRU {
	return &LRU{}
}

// InstantiateEntry creates an untouched entry.
func (p *LRU) InstantiateEntry() Data {
	return &lruData{}
}

// Invalidate resets the last touch time of an entry.
func (p *LRU) Invalidate(data Data) {
	data.(*lruData).lastTouch = 0
}

// Touch records an access.
func (p *LRU) Touch(data Data) {
	p.tick++
	data.(*lruData).lastTouch = p.tick
}

// Reset records a fill, which counts as an access.
func (p *LRU) Reset(data Data) {
	p.Touch(data)
}

// GetVictim returns the candidate with the oldest last touch time.
func (p *LRU) GetVictim(candidates []Data) int {
	mustHaveCandidates(candidates)

	victim := 0
	for i, c := range candidates {
		if c.(*lruData).lastTouch < candidates[victim].(*lruData).lastTouch {
			victim = i
		}
	}

	return victim
}
