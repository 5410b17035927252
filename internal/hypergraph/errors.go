package hypergraph

import "errors"

var (
	ErrEmptyID = errors.New("hypergraph: empty id")

	ErrNodeNotFound = errors.New("hypergraph: node not found")

	ErrEdgeNotFound = errors.New("hypergraph: edge not found")

	ErrEdgeExists = errors.New("hypergraph: edge id already in use")

	// ErrEmptyEdge is returned when an edge would have no members.
	ErrEmptyEdge = errors.New("hypergraph: edge has no members")
)
