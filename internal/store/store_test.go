package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/kuramoto"
)

func testTrajectory() *kuramoto.Trajectory {
	return &kuramoto.Trajectory{
		Nodes:   []hypergraph.ID{"a", "b", "c"},
		Omega:   []float64{0.1, -0.2, 0.3},
		Theta:   [][]float64{{0, 1, 2}, {0.1, 1.1, 2.1}},
		Times:   []float64{0, 0.01},
		Metrics: map[string]float64{"mean_order": 0.25},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{Source: "generator:complete", Seed: 42, Dt: 0.01, K2: 2, K3: 3, Integrator: "rk4", Nodes: 3, Edges: 3}
	traj := testTrajectory()
	meta.NodeIDs, meta.Omega, meta.Metrics = traj.Nodes, traj.Omega, traj.Metrics

	runID, err := st.Save(meta, traj)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Source != "generator:complete" {
		t.Errorf("expected source generator:complete, got %q", got.Source)
	}
	if got.Seed != 42 {
		t.Errorf("expected seed 42, got %d", got.Seed)
	}
	if got.Steps != 2 {
		t.Errorf("expected 2 steps, got %d", got.Steps)
	}
	if got.Metrics["mean_order"] != 0.25 {
		t.Errorf("expected mean_order 0.25, got %f", got.Metrics["mean_order"])
	}

	loaded, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(loaded.Theta) != 2 || len(loaded.Times) != 2 {
		t.Fatalf("expected 2 states, got %d", len(loaded.Theta))
	}
	if loaded.Theta[1][2] != 2.1 {
		t.Errorf("expected 2.1, got %f", loaded.Theta[1][2])
	}
	if loaded.Nodes[1] != "b" || loaded.Omega[1] != -0.2 {
		t.Errorf("node data lost: %v %v", loaded.Nodes, loaded.Omega)
	}
}

func TestPhaseFileIsSnappyFramed(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runID, err := st.Save(RunMetadata{}, testTrajectory())
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, runID, thetaFile))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("\xff\x06\x00\x00sNaPpY")) {
		t.Errorf("phase file should start with a snappy stream header, got %q", raw[:10])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := st.Save(RunMetadata{Source: "old", Timestamp: old}, testTrajectory()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(RunMetadata{Source: "new", Timestamp: old.Add(time.Hour)}, testTrajectory()); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Source != "new" {
		t.Errorf("expected newest first, got %q", runs[0].Source)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreErrors(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("../etc"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if _, err := st.Load("6ba7b810-9dad-11d1-80b4-00c04fd430c8"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{}, testTrajectory())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Remove(runID); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestReadCSVRejectsGarbage(t *testing.T) {
	_, err := ReadCSV(bytes.NewBufferString("time,a\n0,x\n"))
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := &RunMetadata{Source: "file:toy.json", K2: 1}
	if err := ExportJSON(&buf, meta, testTrajectory()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Steps != 2 || len(data.Order) != 2 {
		t.Errorf("expected 2 steps with order, got %d and %d", data.Steps, len(data.Order))
	}
	if data.Source != "file:toy.json" {
		t.Errorf("unexpected source %q", data.Source)
	}
}
