package cleaner

import (
	"errors"
	"fmt"
)

// ErrUnknownMethod is returned when a selection method identifier is not
// recognized.
var ErrUnknownMethod = errors.New("unknown selection method")

// Method identifies a component selection policy.
type Method int

const (
	// First keeps the component discovered first. Slicers commonly emit the
	// print model before its supports, making this the cheap default.
	First Method = iota
	// Ratio keeps the component with the lowest surface-to-volume ratio.
	// Supports are thin high-surface lattices; the model is comparatively
	// bulky and solid.
	Ratio
)

// ParseMethod converts a method name ("first" or "ratio") to its enum value.
// Unrecognized names are an error, never silently mapped to a default.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "first":
		return First, nil
	case "ratio":
		return Ratio, nil
	default:
		return First, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

func (m Method) String() string {
	switch m {
	case Ratio:
		return "ratio"
	default:
		return "first"
	}
}

// NeedsScores reports whether the method requires component scoring
func (m Method) NeedsScores() bool {
	return m == Ratio
}
