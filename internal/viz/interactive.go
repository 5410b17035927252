package viz

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Preset is one menu entry. Values are the tunable fields shown before
// launch, listed in Fields order.
type Preset struct {
	Name        string
	Description string
	Source      string
	Fields      []string
	Values      map[string]float64
}

// Launcher builds the live view for a preset with edited values.
type Launcher func(name string, values map[string]float64) (Model, error)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

type picker struct {
	state, cursor int
	presets       []Preset
	values        map[string]float64
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	launch        Launcher
	live          Model
}

// NewPicker lists presets. Choosing one opens its values for editing
// before the live view starts.
func NewPicker(presets []Preset, launch Launcher) tea.Model {
	return &picker{state: stateMenu, presets: presets, launch: launch}
}

func (m *picker) Init() tea.Cmd { return nil }

func (m *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m, m.menuKey(key)
		case stateConfig:
			return m, m.configKey(key)
		}
	}
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m *picker) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.presets) == 0 {
			return nil
		}
		m.values = maps.Clone(m.presets[m.cursor].Values)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return nil
}

func (m *picker) configKey(msg tea.KeyMsg) tea.Cmd {
	fields := m.presets[m.cursor].Fields
	if len(fields) == 0 {
		if msg.String() == "s" {
			return m.start()
		}
		if msg.String() == "q" || msg.String() == "esc" {
			m.state = stateMenu
		}
		return nil
	}
	field := fields[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.values[field] = v
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				m.editBuf += s
			}
		}
		return nil
	}

	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(fields)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(m.values[field], 'g', -1, 64)
	case "left", "h":
		m.values[field] -= step(field)
	case "right", "l":
		m.values[field] += step(field)
	case "s":
		return m.start()
	}
	return nil
}

func step(name string) float64 {
	switch name {
	case "dt":
		return 0.001
	case "seed", "n":
		return 1
	}
	return 0.1
}

func (m *picker) start() tea.Cmd {
	live, err := m.launch(m.presets[m.cursor].Name, maps.Clone(m.values))
	if err != nil {
		m.err = err
		return nil
	}
	m.live, m.state, m.err = live, stateSim, nil
	return m.live.Init()
}

func (m *picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	}
	return m.live.View()
}

func (m *picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("HYPERLAB") + "\n    " + menuSub.Render("higher-order kuramoto") + "\n    " + menuSub.Render("─────────────────────") + "\n\n")
	for i, p := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-24s", p.Name)), menuDesc.Render(p.Description)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuInactive.Render(fmt.Sprintf("  %-24s", p.Name)), menuSub.Render(p.Description)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m *picker) viewConfig() string {
	var b strings.Builder
	p := m.presets[m.cursor]
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(p.Name)) + "\n    " + menuSub.Render(p.Source) + "\n    " + menuSub.Render("─────────────────────") + "\n\n")
	for i, f := range p.Fields {
		val := fmt.Sprintf("%10.4g", m.values[f])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-6s", f)), menuDesc.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuInactive.Render(fmt.Sprintf("  %-6s", f)), menuSub.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusRecording.UnsetBlink().Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuInactive.Render(" "+pairs[i+1]+"  "))
	}
	return strings.TrimRight(b.String(), " ")
}

// RunPicker runs the preset picker full screen.
func RunPicker(presets []Preset, launch Launcher) error {
	_, err := tea.NewProgram(NewPicker(presets, launch), tea.WithAltScreen()).Run()
	return err
}

// RunLive runs a single live view full screen.
func RunLive(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
