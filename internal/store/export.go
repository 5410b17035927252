package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/kuramoto"
)

type ExportData struct {
	ID         string             `json:"id,omitempty"`
	Source     string             `json:"source"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	K2         float64            `json:"k2"`
	K3         float64            `json:"k3"`
	Seed       int64              `json:"seed"`
	Steps      int                `json:"steps"`
	Nodes      []hypergraph.ID    `json:"nodes"`
	Omega      []float64          `json:"omega"`
	Times      []float64          `json:"times"`
	Theta      [][]float64        `json:"theta"`
	Order      []float64          `json:"order"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes the run description together with the full phase
// history and its order parameter.
func ExportJSON(w io.Writer, meta *RunMetadata, traj *kuramoto.Trajectory) error {
	data := ExportData{
		ID:         meta.ID,
		Source:     meta.Source,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		K2:         meta.K2,
		K3:         meta.K3,
		Seed:       meta.Seed,
		Steps:      len(traj.Theta),
		Nodes:      traj.Nodes,
		Omega:      traj.Omega,
		Times:      traj.Times,
		Theta:      traj.Theta,
		Order:      traj.OrderParameter(),
		Metrics:    traj.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, meta *RunMetadata, traj *kuramoto.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := ExportJSON(file, meta, traj); err != nil {
		return err
	}
	return file.Close()
}
