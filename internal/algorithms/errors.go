package algorithms

import "errors"

var (
	ErrTooFewNodes = errors.New("algorithms: hypergraph needs at least 2 nodes")

	ErrNoEdges = errors.New("algorithms: hypergraph has no edges")

	ErrIsolates = errors.New("algorithms: hypergraph has isolated nodes")

	ErrSingletons = errors.New("algorithms: hypergraph has singleton edges")

	ErrNotUniform = errors.New("algorithms: hypergraph is not uniform")

	ErrUnknownKind = errors.New("algorithms: unknown degree pair kind")

	// ErrNeedRandSource is returned when a sampling routine gets no RNG.
	ErrNeedRandSource = errors.New("algorithms: rng is required")
)
