// Package kuramoto simulates phase oscillators coupled through the pairwise
// and triadic edges of a hypergraph.
//
// Node i evolves as
//
//	dθ_i/dt = ω_i + k2·Σ_j sin(θ_j − θ_i)
//	              + k3·Σ_{j,k} [sin(2θ_j − θ_k − θ_i) + sin(2θ_k − θ_j − θ_i)]
//
// where j runs over the partners of i in edges of size two and {j, k} over
// the partners of i in edges of size three. Larger edges do not couple.
// Oscillators are indexed by node insertion order.
package kuramoto

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/hypergraph"
)

var (
	ErrNoNodes       = errors.New("kuramoto: hypergraph has no nodes")
	ErrLength        = errors.New("kuramoto: vector length does not match node count")
	ErrInvalidParams = errors.New("kuramoto: invalid parameters")
	ErrUnknownParam  = errors.New("kuramoto: unknown parameter")
)

// parallelThreshold is the node count above which Derive fans out.
const parallelThreshold = 2048

type Params struct {
	K2 float64 `yaml:"k2" json:"k2"`
	K3 float64 `yaml:"k3" json:"k3"`
	Dt float64 `yaml:"dt" json:"dt" validate:"gt=0"`
	// Timesteps is the number of recorded states, the initial one included.
	Timesteps  int    `yaml:"timesteps" json:"timesteps" validate:"gte=1"`
	Integrator string `yaml:"integrator" json:"integrator"`
	Seed       int64  `yaml:"seed" json:"seed"`

	// Adaptive lets the step size float between Dt/1e6 and 10·Dt, keeping
	// the local error under Tolerance. Recorded times are then uneven.
	Adaptive  bool    `yaml:"adaptive,omitempty" json:"adaptive,omitempty"`
	Tolerance float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty" validate:"gte=0"`

	// Omega and Theta override the random natural frequencies and initial
	// phases. Their length must equal the node count.
	Omega []float64 `yaml:"omega,omitempty" json:"omega,omitempty"`
	Theta []float64 `yaml:"theta,omitempty" json:"theta,omitempty"`
}

func DefaultParams() Params {
	return Params{K2: 2, K3: 3, Dt: 0.002, Timesteps: 10000, Integrator: "euler"}
}

func (p Params) Validate() error {
	if !(p.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParams, p.Dt)
	}
	if p.Timesteps < 1 {
		return fmt.Errorf("%w: timesteps must be at least 1, got %d", ErrInvalidParams, p.Timesteps)
	}
	if math.IsNaN(p.K2) || math.IsNaN(p.K3) {
		return fmt.Errorf("%w: coupling is NaN", ErrInvalidParams)
	}
	if p.Adaptive && !(p.Tolerance > 0) {
		return fmt.Errorf("%w: adaptive stepping needs a positive tolerance, got %g", ErrInvalidParams, p.Tolerance)
	}
	return nil
}

// Model is the Kuramoto system on a fixed hypergraph. It implements
// dynamo.System, dynamo.Configurable and dynamo.Projector.
type Model struct {
	nodes []hypergraph.ID
	omega []float64
	k2    float64
	k3    float64

	pairs   [][]int    // partners in edges of size two
	triples [][][2]int // partner pairs in edges of size three
}

// New builds the model and the initial phases. Frequencies are drawn from
// N(0, 1) and then phases from U[0, 2π) with p.Seed, unless given.
func New(h *hypergraph.Hypergraph, p Params) (*Model, dynamo.State, error) {
	nodes := h.Nodes()
	n := len(nodes)
	if n == 0 {
		return nil, nil, ErrNoNodes
	}
	if p.Omega != nil && len(p.Omega) != n {
		return nil, nil, fmt.Errorf("%w: omega has %d entries for %d nodes", ErrLength, len(p.Omega), n)
	}
	if p.Theta != nil && len(p.Theta) != n {
		return nil, nil, fmt.Errorf("%w: theta has %d entries for %d nodes", ErrLength, len(p.Theta), n)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	omega := p.Omega
	if omega == nil {
		omega = make([]float64, n)
		for i := range omega {
			omega[i] = rng.NormFloat64()
		}
	}
	theta := make(dynamo.State, n)
	if p.Theta != nil {
		copy(theta, p.Theta)
	} else {
		for i := range theta {
			theta[i] = rng.Float64() * 2 * math.Pi
		}
	}

	m := &Model{
		nodes:   nodes,
		omega:   append([]float64(nil), omega...),
		k2:      p.K2,
		k3:      p.K3,
		pairs:   make([][]int, n),
		triples: make([][][2]int, n),
	}
	index := make(map[hypergraph.ID]int, n)
	for i, id := range nodes {
		index[id] = i
	}
	for _, eid := range h.Edges() {
		members, _ := h.Members(eid)
		switch len(members) {
		case 2:
			i, j := index[members[0]], index[members[1]]
			m.pairs[i] = append(m.pairs[i], j)
			m.pairs[j] = append(m.pairs[j], i)
		case 3:
			i, j, k := index[members[0]], index[members[1]], index[members[2]]
			m.triples[i] = append(m.triples[i], [2]int{j, k})
			m.triples[j] = append(m.triples[j], [2]int{i, k})
			m.triples[k] = append(m.triples[k], [2]int{i, j})
		}
	}
	return m, theta, nil
}

func (m *Model) StateDim() int { return len(m.nodes) }

// Nodes maps oscillator index to node ID.
func (m *Model) Nodes() []hypergraph.ID { return m.nodes }

func (m *Model) Omega() []float64 { return m.omega }

func (m *Model) Derive(theta dynamo.State, _ float64) dynamo.State {
	n := len(theta)
	d := make(dynamo.State, n)
	fill := func(start, end int) {
		for i := start; i < end; i++ {
			d[i] = m.rate(theta, i)
		}
	}
	if n >= parallelThreshold {
		dynamo.ParallelFor(n, parallelThreshold/4, fill)
	} else {
		fill(0, n)
	}
	return d
}

func (m *Model) rate(theta dynamo.State, i int) float64 {
	ti := theta[i]
	r := m.omega[i]
	if m.k2 != 0 {
		s := 0.0
		for _, j := range m.pairs[i] {
			s += math.Sin(theta[j] - ti)
		}
		r += m.k2 * s
	}
	if m.k3 != 0 {
		s := 0.0
		for _, jk := range m.triples[i] {
			tj, tk := theta[jk[0]], theta[jk[1]]
			s += math.Sin(2*tj-tk-ti) + math.Sin(2*tk-tj-ti)
		}
		r += m.k3 * s
	}
	return r
}

// Project removes the mean from d. Shifting every phase by the same angle
// leaves the dynamics unchanged, so that direction is neutral.
func (m *Model) Project(d dynamo.State) {
	if len(d) == 0 {
		return
	}
	mean := 0.0
	for _, v := range d {
		mean += v
	}
	mean /= float64(len(d))
	for i := range d {
		d[i] -= mean
	}
}

func (m *Model) Params() map[string]float64 {
	return map[string]float64{"k2": m.k2, "k3": m.k3}
}

func (m *Model) SetParam(name string, value float64) error {
	switch name {
	case "k2":
		m.k2 = value
	case "k3":
		m.k3 = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// Order is the Kuramoto order parameter |Σ e^{iθ}| / N of one state.
func Order(theta []float64) float64 {
	if len(theta) == 0 {
		return 0
	}
	var re, im float64
	for _, t := range theta {
		s, c := math.Sincos(t)
		re += c
		im += s
	}
	return math.Hypot(re, im) / float64(len(theta))
}

// OrderParameter applies Order to every row.
func OrderParameter(theta [][]float64) []float64 {
	r := make([]float64, len(theta))
	for i, row := range theta {
		r[i] = Order(row)
	}
	return r
}
