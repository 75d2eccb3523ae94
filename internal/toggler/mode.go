// Package toggler implements the four-mode light toggler: the mode cycle, the
// color behavior of each mode, and the adapter that turns mode advances into
// color events on the event channel.
package toggler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned when parsing a name that is not a Mode.
var ErrUnknownMode = errors.New("unknown mode")

// Mode is one of the four states of the toggler.
type Mode int

const (
	Off Mode = iota
	White
	Rainbow
	Alternating
)

var modeNames = [...]string{
	Off:         "off",
	White:       "white",
	Rainbow:     "rainbow",
	Alternating: "alternating",
}

// transitions is the fixed mode cycle.
var transitions = [...]Mode{
	Off:         White,
	White:       Rainbow,
	Rainbow:     Alternating,
	Alternating: Off,
}

// Modes returns every mode in cycle order starting from Off.
func Modes() []Mode {
	return []Mode{Off, White, Rainbow, Alternating}
}

// Next returns the successor of m in the cycle. Values outside the
// enumeration advance to White, as if they were Off.
func Next(m Mode) Mode {
	if !m.Valid() {
		return White
	}
	return transitions[m]
}

// Valid reports whether m is one of the four modes.
func (m Mode) Valid() bool {
	return m >= Off && m <= Alternating
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode returns the mode named s (case-insensitive).
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return Off, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
