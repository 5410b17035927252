// Package hypergraph provides the in-memory hypergraph used by every other
// hyperlab package.
//
// A hypergraph is a set of nodes and a set of edges, where each edge is a
// non-empty set of nodes of any size:
//
//   - [Hypergraph]: node/edge storage with attributes
//   - [CleanupOptions]: removal of multi-edges, singletons and isolates
//   - [Hypergraph.Dual]: swap the roles of nodes and edges
//   - [Hypergraph.CliqueExpansion]: pairwise projection used by layouts
//
// # Example
//
//	H := hypergraph.New(hypergraph.WithName("toy"))
//	H.AddEdge([]hypergraph.ID{"1", "2", "3"}, nil)
//	H.AddEdge([]hypergraph.ID{"3", "4"}, nil)
//	clean := H.Cleanup(hypergraph.DefaultCleanup())
//
// # Ordering
//
// Nodes, edges and the members of each edge are reported in insertion
// order, so every algorithm built on top is deterministic for a fixed seed.
//
// # Thread Safety
//
// A Hypergraph is safe for concurrent readers. Mutation must not overlap
// with any other access.
package hypergraph
