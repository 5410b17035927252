package viz

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/integrators"
)

// rotors spin at their own constant speed; k2 is tunable but unused.
type rotors struct {
	omega []float64
	k2    float64
}

func (r *rotors) Derive(x dynamo.State, _ float64) dynamo.State {
	out := make(dynamo.State, len(x))
	copy(out, r.omega)
	return out
}

func (r *rotors) StateDim() int { return len(r.omega) }

func (r *rotors) Params() map[string]float64 { return map[string]float64{"k2": r.k2} }

func (r *rotors) SetParam(name string, v float64) error {
	if name != "k2" {
		return errors.New("unknown")
	}
	r.k2 = v
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func newRotorModel() (Model, *rotors) {
	sys := &rotors{omega: []float64{1, 1, 1, 1}}
	return NewModel(sys, integrators.NewEuler(), dynamo.State{0, 0, 0, 0}, 0.01, "rotors"), sys
}

func TestModelTickAdvances(t *testing.T) {
	m, _ := newRotorModel()
	m = update(t, m, TickMsg{})

	want := float64(m.speed) * 0.01
	if math.Abs(m.t-want) > 1e-12 {
		t.Errorf("expected t=%g, got %g", want, m.t)
	}
	if len(m.orderHistory) != 2 {
		t.Errorf("expected 2 order samples, got %d", len(m.orderHistory))
	}
	if math.Abs(m.orderHistory[1]-1) > 1e-9 {
		t.Errorf("identical rotors should stay in phase, r=%f", m.orderHistory[1])
	}
}

func TestModelPauseAndReset(t *testing.T) {
	m, _ := newRotorModel()
	m = update(t, m, key(" "))
	m = update(t, m, TickMsg{})
	if m.t != 0 {
		t.Errorf("paused model advanced to %g", m.t)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show PAUSED")
	}

	m = update(t, m, key(" "))
	m = update(t, m, TickMsg{})
	m = update(t, m, key("r"))
	if m.t != 0 || len(m.history) != 1 {
		t.Errorf("reset left t=%g with %d snapshots", m.t, len(m.history))
	}
}

func TestModelTunesCoupling(t *testing.T) {
	m, sys := newRotorModel()
	m = update(t, m, key("tab"))
	m = update(t, m, key("up"))
	if sys.k2 != 0.05 {
		t.Errorf("expected k2 0.05 after one step up from zero, got %g", sys.k2)
	}

	m = update(t, m, key("r"))
	if sys.k2 != 0 {
		t.Errorf("reset should restore k2, got %g", sys.k2)
	}
}

func TestModelScrub(t *testing.T) {
	m, _ := newRotorModel()
	for i := 0; i < 3; i++ {
		m = update(t, m, TickMsg{})
	}
	m = update(t, m, key("["))
	if m.running {
		t.Error("scrubbing should pause")
	}
	if m.playHead != len(m.history)-2 {
		t.Errorf("expected play head %d, got %d", len(m.history)-2, m.playHead)
	}
	if !strings.Contains(m.View(), "REPLAY") {
		t.Error("view should show replay status")
	}

	m = update(t, m, key("]"))
	m = update(t, m, key("]"))
	if m.playHead != -1 {
		t.Errorf("scrubbing past the end should return to live, got %d", m.playHead)
	}
}

func TestMeanField(t *testing.T) {
	r, psi := meanField([]float64{0.3, 0.3, 0.3})
	if math.Abs(r-1) > 1e-12 || math.Abs(psi-0.3) > 1e-12 {
		t.Errorf("expected r=1 psi=0.3, got %f %f", r, psi)
	}
	r, _ = meanField([]float64{0, math.Pi})
	if r > 1e-12 {
		t.Errorf("antipodal phases should cancel, got %f", r)
	}
	if r, _ := meanField(nil); r != 0 {
		t.Errorf("empty phases should give 0, got %f", r)
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	if c.DotsX() != 8 || c.DotsY() != 8 {
		t.Fatalf("unexpected dot size %dx%d", c.DotsX(), c.DotsY())
	}
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot (%d,%d) not set", i, i)
		}
	}
	c.Set(100, 100)
	c.Unset(3, 3)
	if c.IsSet(3, 3) {
		t.Error("unset dot still set")
	}
	if lines := strings.Count(c.String(), "\n"); lines != 2 {
		t.Errorf("expected 2 rows, got %d", lines)
	}
	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("clear left dots set")
	}
}

func TestProgressBar(t *testing.T) {
	bar := ProgressBar(0.5, 10)
	if strings.Count(bar, "█") != 5 || strings.Count(bar, "░") != 5 {
		t.Errorf("unexpected bar %q", bar)
	}
	if strings.Count(ProgressBar(2, 4), "█") != 4 {
		t.Error("bar should clamp above 1")
	}
}

func TestSparkline(t *testing.T) {
	if got := []rune(Sparkline([]float64{0, 1}, 2)); string(got) != "▁█" {
		t.Errorf("unexpected sparkline %q", string(got))
	}
}

func TestPickerLaunchesWithEditedValues(t *testing.T) {
	presets := []Preset{
		{Name: "complete/sync", Fields: []string{"k2", "seed"}, Values: map[string]float64{"k2": 1, "seed": 3}},
	}
	var gotName string
	var gotValues map[string]float64
	launch := func(name string, values map[string]float64) (Model, error) {
		gotName, gotValues = name, values
		m, _ := newRotorModel()
		return m, nil
	}

	var p tea.Model = NewPicker(presets, launch)
	for _, k := range []string{"enter", "l", "s"} {
		p, _ = p.Update(key(k))
	}

	if gotName != "complete/sync" {
		t.Fatalf("expected launch of complete/sync, got %q", gotName)
	}
	if math.Abs(gotValues["k2"]-1.1) > 1e-12 || gotValues["seed"] != 3 {
		t.Errorf("unexpected values %v", gotValues)
	}
	if presets[0].Values["k2"] != 1 {
		t.Error("editing should not touch the preset")
	}
	if !strings.Contains(p.View(), "ROTORS") {
		t.Error("picker should show the live view after launch")
	}
}

func TestPickerShowsLaunchError(t *testing.T) {
	presets := []Preset{{Name: "bad", Fields: []string{"k2"}, Values: map[string]float64{"k2": 0}}}
	launch := func(string, map[string]float64) (Model, error) { return Model{}, errors.New("boom") }

	var p tea.Model = NewPicker(presets, launch)
	for _, k := range []string{"enter", "s"} {
		p, _ = p.Update(key(k))
	}
	if !strings.Contains(p.View(), "boom") {
		t.Error("launch error should be shown")
	}
}
