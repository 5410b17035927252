// Package store keeps simulation runs on disk, one directory per run.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/kuramoto"
)

const (
	metadataFile = "metadata.json"
	thetaFile    = "theta.csv.sz"
)

var (
	ErrNotFound  = errors.New("store: run not found")
	ErrInvalidID = errors.New("store: invalid run id")
	ErrCorrupt   = errors.New("store: corrupt phase file")
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	K2         float64            `json:"k2"`
	K3         float64            `json:"k3"`
	Metrics    map[string]float64 `json:"metrics"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`

	NodeIDs []hypergraph.ID `json:"node_ids,omitempty"`
	Omega   []float64       `json:"omega,omitempty"`
}

// NewMetadata fills the run description from the parameters and the
// trajectory they produced.
func NewMetadata(source string, p kuramoto.Params, h *hypergraph.Hypergraph, traj *kuramoto.Trajectory) RunMetadata {
	return RunMetadata{
		Source:     source,
		Seed:       p.Seed,
		Dt:         p.Dt,
		Steps:      len(traj.Theta),
		Integrator: p.Integrator,
		K2:         p.K2,
		K3:         p.K3,
		Metrics:    traj.Metrics,
		Nodes:      h.NumNodes(),
		Edges:      h.NumEdges(),
		NodeIDs:    traj.Nodes,
		Omega:      traj.Omega,
	}
}

// Save writes a new run and returns its ID. ID and Timestamp are assigned
// here; Steps is taken from the trajectory.
func (s *Store) Save(meta RunMetadata, traj *kuramoto.Trajectory) (string, error) {
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	meta.Steps = len(traj.Theta)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, thetaFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	zw := snappy.NewBufferedWriter(f)
	if err := WriteCSV(zw, traj); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return meta.ID, f.Close()
}

func (s *Store) runDir(runID string) (string, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, runID)
	}
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return "", err
	}
	return dir, nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := readMetadata(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	return readMetadata(dir)
}

func readMetadata(dir string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory rebuilds the recorded phases of a run. Metrics, node IDs
// and frequencies come from the metadata.
func (s *Store) LoadTrajectory(runID string) (*kuramoto.Trajectory, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	meta, err := readMetadata(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, thetaFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	traj, err := ReadCSV(snappy.NewReader(f))
	if err != nil {
		return nil, err
	}
	traj.Nodes = meta.NodeIDs
	traj.Omega = meta.Omega
	traj.Metrics = meta.Metrics
	return traj, nil
}

func (s *Store) Remove(runID string) error {
	dir, err := s.runDir(runID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// WriteCSV writes a header of "time" and the node IDs followed by one row
// per recorded state.
func WriteCSV(w io.Writer, traj *kuramoto.Trajectory) error {
	cw := csv.NewWriter(w)

	header := []string{"time"}
	for i := range traj.Final() {
		if i < len(traj.Nodes) {
			header = append(header, traj.Nodes[i])
		} else {
			header = append(header, "theta"+strconv.Itoa(i))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, theta := range traj.Theta {
		row = row[:0]
		row = append(row, strconv.FormatFloat(traj.Times[i], 'g', -1, 64))
		for _, v := range theta {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses what WriteCSV produced. Node IDs are taken from the header.
func ReadCSV(r io.Reader) (*kuramoto.Trajectory, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return &kuramoto.Trajectory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	traj := &kuramoto.Trajectory{Nodes: append([]hypergraph.ID(nil), header[1:]...)}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorrupt, line, err)
		}
		theta := make([]float64, len(record)-1)
		for j := range theta {
			if theta[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrCorrupt, line, err)
			}
		}
		traj.Times = append(traj.Times, t)
		traj.Theta = append(traj.Theta, theta)
	}
	return traj, nil
}
