package tagging

// Stats counts what happened to a tag store.
type Stats struct {
	Accesses        uint64 `json:"accesses"`
	Hits            uint64 `json:"hits"`
	Misses          uint64 `json:"misses"`
	MicrotagRejects uint64 `json:"microtag_rejects"`
	Insertions      uint64 `json:"insertions"`
	Evictions       uint64 `json:"evictions"`
	Invalidations   uint64 `json:"invalidations"`
	TagsInUse       int    `json:"tags_in_use"`
}

// HitRate returns hits over accesses, or 0 before the first access.
func (s Stats) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Accesses)
}
