package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/hyperlab/internal/generators"
	"github.com/san-kum/hyperlab/internal/kuramoto"
	"github.com/san-kum/hyperlab/internal/store"
)

const scenarioYAML = `
name: coupling tour
description: pairwise coupling on a small clique
defaults:
  seed: 5
  layout:
    name: circular
  kuramoto:
    k3: 0
    dt: 0.01
    timesteps: 40
steps:
  - name: weak
    config:
      source:
        generator: complete
        params: {n: 6, order: 1}
      kuramoto:
        k2: 0.01
  - name: strong
    save: true
    config:
      source:
        generator: complete
        params: {n: 6, order: 1}
      kuramoto:
        k2: 5
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "coupling tour" || len(sc.Steps) != 2 {
		t.Errorf("unexpected scenario %q with %d steps", sc.Name, len(sc.Steps))
	}
	if !sc.Steps[1].Save {
		t.Error("expected second step to be saved")
	}

	if _, err := ParseScenario([]byte("name: empty\n")); !errors.Is(err, ErrEmptyScenario) {
		t.Errorf("expected ErrEmptyScenario, got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(t.TempDir())

	reports, err := RunScenario(context.Background(), sc, WithStore(st))
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	for _, rep := range reports {
		if rep.Summary.Nodes != 6 || rep.Summary.Edges != 15 {
			t.Errorf("%s: unexpected summary %+v", rep.Name, rep.Summary)
		}
	}
	if reports[0].RunID != "" {
		t.Error("unsaved step should have no run id")
	}
	if reports[1].Metrics["final_order"] <= reports[0].Metrics["final_order"] {
		t.Errorf("strong coupling should order more: %f vs %f",
			reports[1].Metrics["final_order"], reports[0].Metrics["final_order"])
	}

	meta, err := st.Load(reports[1].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.K2 != 5 || meta.Seed != 5 || meta.Steps != 40 {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestRunScenarioStopsOnError(t *testing.T) {
	sc := &Scenario{Steps: []Step{{Name: "bad", Preset: "chung_lu/chaotic"}, {Name: "never"}}}
	reports, err := RunScenario(context.Background(), sc)
	if !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("expected 1 report, got %d", len(reports))
	}
}

func TestRunScenarioKeepGoing(t *testing.T) {
	sc, err := ParseScenario([]byte(`
steps:
  - preset: nope/sync
  - preset: random/incoherent
    no_dynamics: true
`))
	if err != nil {
		t.Fatal(err)
	}
	reports, err := RunScenario(context.Background(), sc, KeepGoing())
	if err == nil {
		t.Error("expected the first failure to be returned")
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[1].Err != nil {
		t.Errorf("second step failed: %v", reports[1].Err)
	}
	if reports[1].Name != "step-2" || reports[1].Source != "generator:random" {
		t.Errorf("unexpected report %+v", reports[1])
	}
}

func TestStepFigure(t *testing.T) {
	fig := filepath.Join(t.TempDir(), "fig.svg")
	sc := &Scenario{Steps: []Step{{Preset: "random/sync", Figure: fig, NoDynamics: true}}}
	if _, err := RunScenario(context.Background(), sc); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(fig)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("figure is not an svg")
	}
}

func TestRunEnsemble(t *testing.T) {
	h, err := generators.Complete(10, 1)
	if err != nil {
		t.Fatal(err)
	}
	p := kuramoto.DefaultParams()
	p.K2, p.K3 = 5, 0
	p.Dt, p.Timesteps = 0.01, 300
	p.Seed = 11

	results, err := RunEnsemble(context.Background(), h, p, 4, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != 11+int64(i) {
			t.Errorf("trial %d: expected seed %d, got %d", i, 11+i, r.Seed)
		}
	}
	synced, unsynced := EnsembleStats(results)
	if synced != 4 || unsynced != 0 {
		t.Errorf("strong all-to-all coupling should sync every trial, got %d/%d", synced, unsynced)
	}
}
