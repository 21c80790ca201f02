package theme

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Palette is a Theme resolved into lipgloss colors, plus the shades task
// blocks are drawn with.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Event       lipgloss.Color
	Current     lipgloss.Color
	Warning     lipgloss.Color
	Holiday     lipgloss.Color
	Saturday    lipgloss.Color

	// Readable text on top of the accent and current colors.
	TextOnAccent  lipgloss.Color
	TextOnCurrent lipgloss.Color

	Dialog DialogColors

	light bool
	bg    rgb
	fg    string
	tasks map[shadeKey]TaskColors
}

// DialogColors are the resolved dialog colors.
type DialogColors struct {
	Bg     lipgloss.Color
	Border lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Focus  lipgloss.Color
}

// TaskColors is the block background and text color for one task color tag.
type TaskColors struct {
	Bg    lipgloss.Color
	BgAlt lipgloss.Color // adjacent blocks of the same tag
	Text  lipgloss.Color
}

type shadeKey struct {
	tag  string
	past bool
}

// NewPalette resolves t. A nil theme resolves DefaultName.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}
	bg, _ := parseRGB(t.Bg)

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Event:       lipgloss.Color(t.Event),
		Current:     lipgloss.Color(t.Current),
		Warning:     lipgloss.Color(t.Warning),
		Holiday:     lipgloss.Color(t.Holiday),
		Saturday:    lipgloss.Color(t.Saturday),

		TextOnAccent:  lipgloss.Color(readableOn(t.Accent, t.Bg, t.Fg)),
		TextOnCurrent: lipgloss.Color(readableOn(t.Current, t.Bg, t.Fg)),

		Dialog: DialogColors{
			Bg:     lipgloss.Color(t.Dialog.Bg),
			Border: lipgloss.Color(t.Dialog.Border),
			Text:   lipgloss.Color(t.Dialog.Text),
			Muted:  lipgloss.Color(t.Dialog.Muted),
			Focus:  lipgloss.Color(t.Dialog.Focus),
		},

		light: bg.luminance() > 0.55,
		bg:    bg,
		fg:    t.Fg,
		tasks: make(map[shadeKey]TaskColors),
	}
}

// Task returns the block colors for a task color tag. On dark themes the tag
// is darkened toward black; on light themes it is mixed into the background.
// Past tasks are shaded further. Results are cached per tag.
func (p *Palette) Task(tag string, past bool) TaskColors {
	key := shadeKey{tag: tag, past: past}
	if c, ok := p.tasks[key]; ok {
		return c
	}

	bg := p.blockShade(tag, past)
	c := TaskColors{
		Bg:    lipgloss.Color(bg),
		BgAlt: lipgloss.Color(p.altShade(bg)),
		Text:  lipgloss.Color(readableOn(bg, p.fg, p.bg.hex())),
	}
	p.tasks[key] = c
	return c
}

func (p *Palette) blockShade(tag string, past bool) string {
	c, ok := parseRGB(tag)
	if !ok {
		return tag
	}
	switch {
	case p.light && past:
		return c.mix(p.bg, 0.80).hex()
	case p.light:
		return c.mix(p.bg, 0.45).hex()
	case past:
		return c.scale(0.30, 30).hex()
	default:
		return c.scale(0.50, 40).hex()
	}
}

func (p *Palette) altShade(hex string) string {
	c, ok := parseRGB(hex)
	if !ok {
		return hex
	}
	if p.light {
		return c.mix(rgb{}, 0.10).hex()
	}
	return c.mix(rgb{255, 255, 255}, 0.15).hex()
}

// readableOn picks whichever of two text colors contrasts more with bg.
func readableOn(bg, a, b string) string {
	back, _ := parseRGB(bg)
	ca, _ := parseRGB(a)
	cb, _ := parseRGB(b)
	if contrast(back, ca) >= contrast(back, cb) {
		return a
	}
	return b
}

// rgb is an 8-bit color.
type rgb struct{ r, g, b int }

func parseRGB(hex string) (rgb, bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// scale multiplies each channel by f, never going below floor.
func (c rgb) scale(f float64, floor int) rgb {
	ch := func(v int) int { return max(int(float64(v)*f), floor) }
	return rgb{ch(c.r), ch(c.g), ch(c.b)}
}

// mix moves c toward o by ratio in [0, 1].
func (c rgb) mix(o rgb, ratio float64) rgb {
	ratio = min(max(ratio, 0), 1)
	ch := func(a, b int) int { return int(float64(a)*(1-ratio) + float64(b)*ratio) }
	return rgb{ch(c.r, o.r), ch(c.g, o.g), ch(c.b, o.b)}
}

// luminance is the WCAG relative luminance.
func (c rgb) luminance() float64 {
	lin := func(v int) float64 {
		s := float64(v) / 255
		if s <= 0.04045 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.r) + 0.7152*lin(c.g) + 0.0722*lin(c.b)
}

func contrast(a, b rgb) float64 {
	la, lb := a.luminance(), b.luminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}
