package tagging

import (
	"github.com/sarchlab/skewcache/mem/bitfield"
)

// Microtag computes the 8-bit fingerprint of an address.
//
// The upper 5 bits fold address bits [19:15] onto [24:20]. The lower 3 bits
// fold bits 25, 26, and 27 onto 14, 13, and 12. The result does not depend on
// the way, so every candidate of an address is compared against the same
// value.
func Microtag(addr uint64) uint8 {
	top5 := bitfield.Bits(addr, 19, 15) ^ bitfield.Bits(addr, 24, 20)

	lower3 := (bitfield.Bit(addr, 25) ^ bitfield.Bit(addr, 14)) << 2
	lower3 |= (bitfield.Bit(addr, 26) ^ bitfield.Bit(addr, 13)) << 1
	lower3 |= bitfield.Bit(addr, 27) ^ bitfield.Bit(addr, 12)

	return uint8(top5<<3 | lower3)
}
