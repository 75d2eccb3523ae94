// Package lights renders the tree of three bulbs.
package lights

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/treelights/internal/cachemanager"
	"github.com/zjrosen/treelights/internal/log"
	"github.com/zjrosen/treelights/internal/toggler"
	"github.com/zjrosen/treelights/internal/ui/styles"
)

// Bulb identifies one of the three lights.
type Bulb int

const (
	Top Bulb = iota
	BottomLeft
	BottomRight
)

const (
	litGlyph   = "●"
	unlitGlyph = "○"

	frameTTL = 10 * time.Minute
)

// BulbColor returns the color bulb b shows for c. In rainbow each bulb has
// its own hue: the top one red, the bottom ones green and blue.
func BulbColor(b Bulb, c toggler.Color) lipgloss.TerminalColor {
	switch c {
	case toggler.ColorWhite:
		return styles.LightWhiteColor
	case toggler.ColorRainbow:
		switch b {
		case Top:
			return styles.LightRedColor
		case BottomLeft:
			return styles.LightGreenColor
		default:
			return styles.LightBlueColor
		}
	default:
		return styles.LightOffColor
	}
}

// Frame renders the tree for c with the current palette:
//
//	  ●
//	 ╱ ╲
//	●   ●
//	  │
func Frame(c toggler.Color) string {
	bulb := func(b Bulb) string {
		glyph := litGlyph
		if c != toggler.ColorWhite && c != toggler.ColorRainbow {
			glyph = unlitGlyph
		}
		return lipgloss.NewStyle().Foreground(BulbColor(b, c)).Render(glyph)
	}
	branch := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	return strings.Join([]string{
		"  " + bulb(Top) + "  ",
		" " + branch.Render("╱ ╲") + " ",
		bulb(BottomLeft) + "   " + bulb(BottomRight),
		"  " + branch.Render("│") + "  ",
	}, "\n")
}

type frameKey string

type frameInput struct {
	color toggler.Color
}

// Renderer caches rendered frames per color and palette.
type Renderer struct {
	frames *cachemanager.ReadThroughCache[frameKey, string, frameInput]
	store  *cachemanager.InMemoryCacheManager[frameKey, string]
}

// NewRenderer creates a renderer with an in-memory frame cache.
func NewRenderer() *Renderer {
	store := cachemanager.NewInMemoryCacheManager[frameKey, string]("light frames", frameTTL, 2*frameTTL)
	render := func(_ context.Context, in frameInput) (string, error) {
		return Frame(in.color), nil
	}
	return &Renderer{
		frames: cachemanager.NewReadThroughCache[frameKey, string, frameInput](store, render, false),
		store:  store,
	}
}

// Render returns the frame for c.
func (r *Renderer) Render(ctx context.Context, c toggler.Color) string {
	frame, err := r.frames.GetWithRefresh(ctx, keyFor(c), frameInput{color: c}, frameTTL)
	if err != nil {
		log.ErrorErr(log.CatCache, "Rendering frame", err, "color", c)
		return Frame(c)
	}
	return frame
}

// Invalidate drops every cached frame. Call it after the palette changes.
func (r *Renderer) Invalidate(ctx context.Context) {
	if err := r.frames.Invalidate(ctx); err != nil {
		log.ErrorErr(log.CatCache, "Invalidating frames", err)
	}
}

// Stats returns the frame cache hit and miss counts.
func (r *Renderer) Stats() (hits, misses uint64) {
	return r.store.Stats()
}

func keyFor(c toggler.Color) frameKey {
	p := styles.CurrentLights()
	return frameKey(strings.Join([]string{string(c), p.Off, p.White, p.Red, p.Green, p.Blue}, "|"))
}
