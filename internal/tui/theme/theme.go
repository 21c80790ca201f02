// Package theme loads the color themes of the planner TUI.
package theme

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultName is used when no theme is configured or the name is unknown.
const DefaultName = "mocha"

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// Theme is the set of hex colors one TOML theme file defines.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`
	BgHighlight string `toml:"bg_highlight"` // separators, dialog panel
	BgSelection string `toml:"bg_selection"` // cursor cell
	Fg          string `toml:"fg"`
	FgMuted     string `toml:"fg_muted"` // time column, past days
	Accent      string `toml:"accent"`   // title, drag selection
	Event       string `toml:"event"`    // important events
	Current     string `toml:"current"`  // now line, today
	Warning     string `toml:"warning"`  // conflicts and errors
	Holiday     string `toml:"holiday"`  // Sundays and public holidays
	Saturday    string `toml:"saturday"`

	Dialog DialogTheme `toml:"dialog"`
}

// DialogTheme overrides the colors of the add/edit and confirm dialogs.
// Empty fields are derived from the base colors.
type DialogTheme struct {
	Bg     string `toml:"bg"`
	Border string `toml:"border"`
	Text   string `toml:"text"`
	Muted  string `toml:"muted"`
	Focus  string `toml:"focus"` // focused field label
}

// Load reads an embedded theme. Unknown names load DefaultName.
func Load(name string) (*Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !IsAvailable(name) {
		name = DefaultName
	}

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("reading theme %q: %w", name, err)
	}
	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.fill()
	return &t, nil
}

// fill derives every optional color from the required ones.
func (t *Theme) fill() {
	t.Event = firstSet(t.Event, t.Accent)
	t.Holiday = firstSet(t.Holiday, t.Warning)
	t.Saturday = firstSet(t.Saturday, t.Accent)

	d := &t.Dialog
	d.Bg = firstSet(d.Bg, t.BgHighlight, t.Bg)
	d.Border = firstSet(d.Border, t.Accent)
	d.Text = firstSet(d.Text, t.Fg)
	d.Muted = firstSet(d.Muted, t.FgMuted)
	d.Focus = firstSet(d.Focus, t.BgSelection, t.Accent)
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available lists the embedded theme names, darkest first.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte"}
}

// IsAvailable reports whether name is an embedded theme, ignoring case.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(name))
}
