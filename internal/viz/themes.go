package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colours shared by every surface: the terminal, the
// raylib window and the exporters.
type Theme struct {
	Name       string
	Mature     lipgloss.Color
	Leaf       lipgloss.Color
	Root       lipgloss.Color
	Background lipgloss.Color
	Frame      lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
}

// Available themes
var (
	ThemeForest = Theme{
		Name:       "forest",
		Mature:     lipgloss.Color("#8b5a2b"), // bark
		Leaf:       lipgloss.Color("#4caf50"),
		Root:       lipgloss.Color("#ffd54f"),
		Background: lipgloss.Color("#10140f"),
		Frame:      lipgloss.Color("#3a4a38"),
		Text:       lipgloss.Color("#e8f0e0"),
		Muted:      lipgloss.Color("#66775f"),
		Accent:     lipgloss.Color("#a5d6a7"),
	}

	ThemeAutumn = Theme{
		Name:       "autumn",
		Mature:     lipgloss.Color("#6d4c41"),
		Leaf:       lipgloss.Color("#ff8f00"),
		Root:       lipgloss.Color("#ff5252"),
		Background: lipgloss.Color("#1b120e"),
		Frame:      lipgloss.Color("#4e342e"),
		Text:       lipgloss.Color("#fff3e0"),
		Muted:      lipgloss.Color("#8d6e63"),
		Accent:     lipgloss.Color("#ffcc80"),
	}

	ThemeBlossom = Theme{
		Name:       "blossom",
		Mature:     lipgloss.Color("#5d4037"),
		Leaf:       lipgloss.Color("#f48fb1"), // cherry
		Root:       lipgloss.Color("#ce93d8"),
		Background: lipgloss.Color("#1a1018"),
		Frame:      lipgloss.Color("#4a3046"),
		Text:       lipgloss.Color("#fce4ec"),
		Muted:      lipgloss.Color("#8c6d86"),
		Accent:     lipgloss.Color("#f8bbd0"),
	}

	ThemeMono = Theme{
		Name:       "mono",
		Mature:     lipgloss.Color("#ffffff"),
		Leaf:       lipgloss.Color("#aaaaaa"),
		Root:       lipgloss.Color("#0088ff"),
		Background: lipgloss.Color("#000000"),
		Frame:      lipgloss.Color("#444444"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#888888"),
		Accent:     lipgloss.Color("#0088ff"),
	}

	ThemeNight = Theme{
		Name:       "night",
		Mature:     lipgloss.Color("#90a4ae"),
		Leaf:       lipgloss.Color("#00e5ff"),
		Root:       lipgloss.Color("#ff00ff"),
		Background: lipgloss.Color("#0a0a14"),
		Frame:      lipgloss.Color("#2a2a44"),
		Text:       lipgloss.Color("#e0f0ff"),
		Muted:      lipgloss.Color("#4a5a7a"),
		Accent:     lipgloss.Color("#ffff00"),
	}

	// Default theme
	CurrentTheme = ThemeForest

	// All available themes
	Themes = []Theme{
		ThemeForest,
		ThemeAutumn,
		ThemeBlossom,
		ThemeMono,
		ThemeNight,
	}
)

// GetTheme returns a theme by name, falling back to forest.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeForest
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme returns the theme after name in Themes, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// RGB returns the 8-bit channels of a "#rrggbb" colour; anything else
// yields white.
func RGB(c lipgloss.Color) (r, g, b uint8) {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return 255, 255, 255
	}
	return uint8(parseHexByte(s[1:3])), uint8(parseHexByte(s[3:5])), uint8(parseHexByte(s[5:7]))
}

func parseHexByte(s string) int {
	var val int
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}
