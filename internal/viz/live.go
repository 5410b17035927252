package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/kuramoto"
)

const (
	canvasCols      = 40
	canvasRows      = 20
	historyCapacity = 600
	maxSpeed        = 64
)

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State dynamo.State
	Time  float64
	Order float64
}

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live phase view: oscillators on the unit circle, the mean
// field as a spoke of length r, and r(t) as a chart.
type Model struct {
	sys           dynamo.System
	integrator    dynamo.Integrator
	state         dynamo.State
	initialState  dynamo.State
	t, dt         float64
	speed         int
	title         string
	canvas        *Canvas
	running       bool
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	orderHistory  []float64
	history       []Snapshot
	playHead      int
	recording     bool
	frames        []*image.Paletted
	gifPath       string
	showHelp      bool
}

// NewModel starts the view at theta0. Systems implementing
// dynamo.Configurable expose their parameters for live tuning.
func NewModel(sys dynamo.System, integ dynamo.Integrator, theta0 dynamo.State, dt float64, title string) Model {
	params := make(map[string]float64)
	if c, ok := sys.(dynamo.Configurable); ok {
		for k, v := range c.Params() {
			params[k] = v
		}
	}
	keys := make([]string, 0, len(params))
	initialParams := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	sort.Strings(keys)

	m := Model{
		sys:           sys,
		integrator:    integ,
		state:         theta0.Clone(),
		initialState:  theta0.Clone(),
		dt:            dt,
		speed:         4,
		title:         title,
		canvas:        NewCanvas(canvasCols, canvasRows),
		running:       true,
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		orderHistory:  make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		gifPath:       "kuramoto.gif",
	}
	m.record()
	return m
}

// WithGIFPath sets where recordings are written.
func (m Model) WithGIFPath(path string) Model {
	m.gifPath = path
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "g":
			if m.recording {
				_ = m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				for i := 0; i < m.speed; i++ {
					m.step()
				}
				m.record()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam moves the selected coupling by a tenth of its magnitude, at
// least 0.05, so a zero coupling can be switched on.
func (m *Model) adjustParam(dir float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key]
	newVal := val + dir*math.Max(0.05, math.Abs(val)/10)
	m.setParam(key, newVal)
}

func (m *Model) setParam(key string, v float64) {
	m.params[key] = v
	if c, ok := m.sys.(dynamo.Configurable); ok {
		_ = c.SetParam(key, v)
	}
}

func (m *Model) step() {
	m.state = m.integrator.Step(m.sys, m.state, m.t, m.dt)
	m.t += m.dt
}

func (m *Model) record() {
	r := kuramoto.Order(m.state)
	m.orderHistory = append(m.orderHistory, r)
	if len(m.orderHistory) > historyCapacity {
		m.orderHistory = m.orderHistory[1:]
	}
	m.history = append(m.history, Snapshot{State: m.state.Clone(), Time: m.t, Order: r})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial phases and couplings.
func (m *Model) reset() {
	m.t = 0
	m.state = m.initialState.Clone()
	m.orderHistory = m.orderHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	for k, v := range m.initialParams {
		m.setParam(k, v)
	}
	m.record()
}

// meanField returns the order parameter and the mean phase.
func meanField(theta []float64) (r, psi float64) {
	if len(theta) == 0 {
		return 0, 0
	}
	var re, im float64
	for _, t := range theta {
		s, c := math.Sincos(t)
		re += c
		im += s
	}
	n := float64(len(theta))
	return math.Hypot(re, im) / n, math.Atan2(im, re)
}

func (m *Model) shown() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return Snapshot{State: m.state, Time: m.t, Order: kuramoto.Order(m.state)}
}

// draw puts the unit circle, every oscillator and the mean field spoke on
// the canvas.
func (m *Model) draw() {
	snap := m.shown()
	c := m.canvas
	c.Clear()

	cx, cy := float64(c.DotsX()-1)/2, float64(c.DotsY()-1)/2
	radius := math.Min(cx, cy) - 3
	at := func(angle, rad float64) (int, int) {
		s, co := math.Sincos(angle)
		return int(math.Round(cx + rad*co)), int(math.Round(cy - rad*s))
	}

	const segments = 72
	px, py := at(0, radius)
	for i := 1; i <= segments; i++ {
		x, y := at(2*math.Pi*float64(i)/segments, radius)
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
	for _, th := range snap.State {
		x, y := at(th, radius)
		c.DrawDisc(x, y, 1)
	}
	r, psi := meanField(snap.State)
	x, y := at(psi, r*radius)
	c.DrawLine(int(math.Round(cx)), int(math.Round(cy)), x, y)
}

// View renders the TUI interface.
func (m Model) View() string {
	snap := m.shown()
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	header := lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Secondary).MarginBottom(1)
	var s strings.Builder
	s.WriteString(header.Render(strings.ToUpper(m.title)) + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.playHead != -1:
		back := snap.Time - m.history[len(m.history)-1].Time
		if m.running {
			status = StatusPaused.Render(fmt.Sprintf("REPLAYING (%.2fs)", back))
		} else {
			status = StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.2fs)", back))
		}
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	if len(m.orderHistory) > 1 {
		chart := asciigraph.Plot(m.orderHistory,
			asciigraph.Height(5), asciigraph.Width(36),
			asciigraph.LowerBound(0), asciigraph.UpperBound(1),
			asciigraph.Caption("order parameter r(t)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", snap.Time)) + "\n")
	s.WriteString(labelStyle.Render("r") + ProgressBar(snap.Order, 20) + valueStyle.Render(fmt.Sprintf(" %.3f", snap.Order)) + "\n")
	s.WriteString(labelStyle.Render("Oscillators") + valueStyle.Render(fmt.Sprint(len(snap.State))) + "\n")
	s.WriteString(labelStyle.Render("Steps/frame") + valueStyle.Render(fmt.Sprintf("%d (dt %g)", m.speed, m.dt)) + "\n")

	s.WriteString("\nCOUPLING\n")
	if len(m.paramKeys) == 0 {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-4s %8.3f  (start %.3f)", k, m.params[k], m.initialParams[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + MetricLabel.Render(line) + "\n")
		}
	}
	s.WriteString("\n" + Separator(40) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause R:Reset Q:Quit +/-:Speed\nTab:Select ↑↓:Tune [ ]:Replay G:GIF ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return GlassPanel.Render(helpText) + "\n\n" + mainView
	}
	return mainView
}

const helpText = `KEYBOARD SHORTCUTS

Space     pause or resume
R         reset phases and couplings
Q         quit
Tab       select coupling
Up/K      raise selected coupling
Down/J    lower selected coupling
+ / -     double or halve steps per frame
[ / ]     step back or forward through history
G         start or stop GIF recording
T         cycle themes
?         toggle this help`

// captureFrame rasterises the braille canvas into a two-colour image.
func (m *Model) captureFrame() {
	const charW, charH = 8, 16
	c := m.canvas
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	for y := 0; y < c.DotsY(); y++ {
		for x := 0; x < c.DotsX(); x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 3)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
