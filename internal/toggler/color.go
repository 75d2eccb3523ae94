package toggler

import (
	"fmt"
	"time"

	"github.com/zjrosen/treelights/internal/behavior"
)

// Color is what the lights currently show.
type Color string

const (
	ColorOff     Color = "off"
	ColorWhite   Color = "white"
	ColorRainbow Color = "rainbow"
)

// DefaultCycle is the delay of the white mode and the period of the
// alternating mode.
const DefaultCycle = 2000 * time.Millisecond

// Behaviors maps each mode to the producer of its colors.
type Behaviors map[Mode]behavior.Behavior[Color]

// NewBehaviors builds the color behavior of every mode for the given cycle:
//
//	off          "off" on the next microtask
//	white        "white" after one cycle
//	rainbow      "rainbow" immediately
//	alternating  "white" immediately, then rainbow/white every cycle, forever
func NewBehaviors(cycle time.Duration) Behaviors {
	return Behaviors{
		Off:     behavior.Deferred(ColorOff),
		White:   behavior.After(cycle, ColorWhite),
		Rainbow: behavior.Of(ColorRainbow),
		Alternating: behavior.Concat(
			behavior.Of(ColorWhite),
			behavior.Interval(cycle, AlternatingColor),
		),
	}
}

// AlternatingColor is the color of the i-th periodic tick of the alternating
// mode, counting from zero. The value shown after n elapsed cycles is
// AlternatingColor(n-1): white for an even n, rainbow for an odd n.
func AlternatingColor(i int) Color {
	if i%2 == 1 {
		return ColorWhite
	}
	return ColorRainbow
}

// For returns the behavior of m.
func (b Behaviors) For(m Mode) (behavior.Behavior[Color], error) {
	bh, ok := b[m]
	if !ok {
		return nil, fmt.Errorf("no color behavior for %v: %w", m, ErrUnknownMode)
	}
	return bh, nil
}
