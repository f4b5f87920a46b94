package chart

import (
	"fmt"
	"strings"
)

// Role is the emphasis a crop-year series gets relative to the latest year.
type Role string

const (
	RoleAccent  Role = "accent"
	RoleDark    Role = "dark"
	RoleNeutral Role = "neutral"
)

// RoleFor is the single coloring rule shared by every chart.
func RoleFor(year, latest int) Role {
	switch year {
	case latest:
		return RoleAccent
	case latest - 1:
		return RoleDark
	default:
		return RoleNeutral
	}
}

// Palette maps roles to colors. Sequence colors the de-emphasized lines of the
// raw-series chart; bar charts use Neutral for all of them.
type Palette struct {
	Accent   string   `yaml:"accent" json:"accent"`
	Dark     string   `yaml:"dark" json:"dark"`
	Neutral  string   `yaml:"neutral" json:"neutral"`
	Sequence []string `yaml:"sequence" json:"sequence"`
}

// G10 is the qualitative sequence used for older crop years.
var G10 = []string{
	"#3366CC", "#DC3912", "#FF9900", "#109618", "#990099",
	"#0099C6", "#DD4477", "#66AA00", "#B82E2E", "#316395",
}

var DefaultPalette = Palette{
	Accent:   "#CD5C5C",
	Dark:     "#000000",
	Neutral:  "#B2BEB5",
	Sequence: G10,
}

func (p Palette) Color(r Role) string {
	switch r {
	case RoleAccent:
		return p.Accent
	case RoleDark:
		return p.Dark
	default:
		return p.Neutral
	}
}

// sequenceColor picks the i-th background color, falling back to Neutral.
func (p Palette) sequenceColor(i int) string {
	if len(p.Sequence) == 0 {
		return p.Neutral
	}
	return p.Sequence[i%len(p.Sequence)]
}

// WithDefaults fills empty fields from DefaultPalette.
func (p Palette) WithDefaults() Palette {
	if p.Accent == "" {
		p.Accent = DefaultPalette.Accent
	}
	if p.Dark == "" {
		p.Dark = DefaultPalette.Dark
	}
	if p.Neutral == "" {
		p.Neutral = DefaultPalette.Neutral
	}
	if len(p.Sequence) == 0 {
		p.Sequence = DefaultPalette.Sequence
	}
	return p
}

// ValidHex reports whether s is a #RGB or #RRGGBB color; the leading # is
// optional.
func ValidHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// Validate rejects colors that are set but not hex. Empty fields are left to
// WithDefaults.
func (p Palette) Validate() error {
	named := map[string]string{"accent": p.Accent, "dark": p.Dark, "neutral": p.Neutral}
	for _, name := range []string{"accent", "dark", "neutral"} {
		if v := named[name]; v != "" && !ValidHex(v) {
			return fmt.Errorf("palette %s: %q is not a hex color", name, v)
		}
	}
	for i, v := range p.Sequence {
		if !ValidHex(v) {
			return fmt.Errorf("palette sequence[%d]: %q is not a hex color", i, v)
		}
	}
	return nil
}
