package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedTrace is returned for a trace line that cannot be parsed.
var ErrMalformedTrace = errors.New("malformed trace line")

// An AccessKind is what a trace line does to the tag store.
type AccessKind byte

// The kinds of trace lines.
const (
	AccessRead       AccessKind = 'R'
	AccessWrite      AccessKind = 'W'
	AccessInvalidate AccessKind = 'I'
)

// An Access is one line of a trace.
type Access struct {
	Kind    AccessKind
	Address uint64
	Secure  bool
}

// ParseAccess parses a line in the form `R|W|I <addr> [s]`. The address can be
// decimal or prefixed with 0x. A trailing `s` marks a secure access. Blank
// lines and lines starting with # are skipped, in which case ok is false.
func ParseAccess(line string) (access Access, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Access{}, false, nil
	}

	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return Access{}, false, fmt.Errorf("%w: %q", ErrMalformedTrace, line)
	}

	switch kind := strings.ToUpper(fields[0]); kind {
	case "R", "W", "I":
		access.Kind = AccessKind(kind[0])
	default:
		return Access{}, false,
			fmt.Errorf("%w: unknown access %q", ErrMalformedTrace, fields[0])
	}

	access.Address, err = strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return Access{}, false,
			fmt.Errorf("%w: address %q: %w", ErrMalformedTrace, fields[1], err)
	}

	if len(fields) == 3 {
		if fields[2] != "s" && fields[2] != "S" {
			return Access{}, false,
				fmt.Errorf("%w: unknown flag %q", ErrMalformedTrace, fields[2])
		}

		access.Secure = true
	}

	return access, true, nil
}
