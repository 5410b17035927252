package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view. Applying a theme restyles the shared
// status and hint styles.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Synced     lipgloss.Color
	Partial    lipgloss.Color
	Incoherent lipgloss.Color
}

var (
	ThemePhase = Theme{
		Name:       "phase",
		Primary:    lipgloss.Color("#ff00ff"),
		Secondary:  lipgloss.Color("#00ffff"),
		Muted:      lipgloss.Color("#666688"),
		Synced:     lipgloss.Color("#00ff88"),
		Partial:    lipgloss.Color("#ffcc00"),
		Incoherent: lipgloss.Color("#ff4444"),
	}

	ThemeRetro = Theme{
		Name:       "retro",
		Primary:    lipgloss.Color("#00ff00"),
		Secondary:  lipgloss.Color("#00cc00"),
		Muted:      lipgloss.Color("#005500"),
		Synced:     lipgloss.Color("#88ff88"),
		Partial:    lipgloss.Color("#00cc00"),
		Incoherent: lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Primary:    lipgloss.Color("#ffffff"),
		Secondary:  lipgloss.Color("#cccccc"),
		Muted:      lipgloss.Color("#888888"),
		Synced:     lipgloss.Color("#ffffff"),
		Partial:    lipgloss.Color("#aaaaaa"),
		Incoherent: lipgloss.Color("#666666"),
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Primary:    lipgloss.Color("#0077be"),
		Secondary:  lipgloss.Color("#00a8cc"),
		Muted:      lipgloss.Color("#4488aa"),
		Synced:     lipgloss.Color("#00ff88"),
		Partial:    lipgloss.Color("#ffcc00"),
		Incoherent: lipgloss.Color("#ff4444"),
	}

	CurrentTheme = ThemePhase

	Themes = []Theme{ThemePhase, ThemeRetro, ThemeMinimal, ThemeOcean}
)

// GetTheme returns the named theme, or the default for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemePhase
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	Subtle = Subtle.Foreground(CurrentTheme.Muted)
	KeyHint = KeyHint.Foreground(CurrentTheme.Muted)
	SyncHigh = SyncHigh.Foreground(CurrentTheme.Synced)
	SyncMid = SyncMid.Foreground(CurrentTheme.Partial)
	SyncLow = SyncLow.Foreground(CurrentTheme.Incoherent)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
