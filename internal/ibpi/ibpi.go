package ibpi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPattern is returned when a pattern name cannot be parsed.
var ErrUnknownPattern = errors.New("unknown IBPI pattern")

// Pattern is an IBPI (International Blinking Pattern Interpretation) drive
// LED state as defined by SFF-8489.
type Pattern int

const (
	PatternUnknown Pattern = iota
	PatternNormal
	PatternOneshotNormal
	PatternLocate
	PatternLocateOff
	PatternFailedDrive
	PatternFailedArray
	PatternRebuild
	PatternPFA
	PatternHotspare
)

var patternNames = map[Pattern]string{
	PatternUnknown:       "unknown",
	PatternNormal:        "normal",
	PatternOneshotNormal: "oneshot_normal",
	PatternLocate:        "locate",
	PatternLocateOff:     "locate_off",
	PatternFailedDrive:   "failure",
	PatternFailedArray:   "failed_array",
	PatternRebuild:       "rebuild",
	PatternPFA:           "pfa",
	PatternHotspare:      "hotspare",
}

// patternAliases maps alternate command-line spellings to patterns.
var patternAliases = map[string]Pattern{
	"off":      PatternNormal,
	"fail":     PatternFailedDrive,
	"failed":   PatternFailedDrive,
	"identify": PatternLocate,
	"ident":    PatternLocate,
}

func (p Pattern) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}
	return fmt.Sprintf("pattern(%d)", int(p))
}

// Parse converts a pattern name (as accepted on the command line) to a
// Pattern. Matching is case-insensitive and accepts a few common aliases.
func Parse(s string) (Pattern, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p, n := range patternNames {
		if n == name && p != PatternUnknown {
			return p, nil
		}
	}
	if p, ok := patternAliases[name]; ok {
		return p, nil
	}
	return PatternUnknown, fmt.Errorf("%w: %q", ErrUnknownPattern, s)
}

// Names returns the canonical pattern names accepted by Parse, for help text.
func Names() []string {
	return []string{
		"normal", "oneshot_normal", "locate", "locate_off",
		"failure", "failed_array", "rebuild", "pfa", "hotspare",
	}
}

// ClearsAll reports whether the pattern resets the drive to its normal state,
// which is implemented by clearing every active pattern register.
func (p Pattern) ClearsAll() bool {
	return p == PatternNormal || p == PatternOneshotNormal
}
