package replacement

type fifoData struct {
	insertTick uint64
}

// FIFO evicts the block that was filled in earliest. Accesses do not change
// the order.
type FIFO struct {
	tick uint64
}

// NewFIFO returns a newly constructed FIFO policy.
func NewFIFO() *FIFO {
	return &FIFO{}
}

// InstantiateEntry creates an entry that has never been filled.
func (p *FIFO) InstantiateEntry() Data {
	return &fifoData{}
}

// Invalidate makes the entry the first to be evicted.
func (p *FIFO) Invalidate(data Data) {
	data.(*fifoData).insertTick = 0
}

// Touch does nothing, as FIFO ignores accesses.
func (p *FIFO) Touch(_ Data) {
}

// Reset records the fill time.
func (p *FIFO) Reset(data Data) {
	p.tick++
	data.(*fifoData).insertTick = p.tick
}

// GetVictim returns the candidate that was filled earliest.
func (p *FIFO) GetVictim(candidates []Data) int {
	mustHaveCandidates(candidates)

	victim := 0
	for i, c := range candidates {
		if c.(*fifoData).insertTick < candidates[victim].(*fifoData).insertTick {
			victim = i
		}
	}

	return victim
}
