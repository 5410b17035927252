package hypergraph_test

import (
	"fmt"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

func Example() {
	h := hypergraph.New(hypergraph.WithName("toy"))
	_, _ = h.AddEdges([][]hypergraph.ID{{"1", "2", "3"}, {"3", "4"}, {"4", "5", "6"}})
	_, _ = h.AddEdge([]hypergraph.ID{"2", "1", "3"}, nil)
	_, _ = h.AddEdge([]hypergraph.ID{"7"}, nil)

	fmt.Println(h)
	fmt.Println(h.Duplicates())

	c := h.Cleanup(hypergraph.DefaultCleanup())
	fmt.Println(c)
	fmt.Println(c.Nodes())
	// Output:
	// toy with 7 nodes and 5 hyperedges
	// [[0 3]]
	// toy with 6 nodes and 3 hyperedges
	// [0 1 2 3 4 5]
}

func ExampleHypergraph_Dual() {
	h, _ := hypergraph.FromEdges([][]hypergraph.ID{{"a", "b"}, {"b", "c"}})
	d := h.Dual()
	members, _ := d.Members("b")
	fmt.Println(d.Nodes(), members)
	// Output: [0 1] [0 1]
}
