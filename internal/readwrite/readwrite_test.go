package readwrite

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

const sampleDoc = `{
  "hypergraph-data": {"name": "email-toy", "timespan": 3},
  "node-data": {"n2": {"role": "b"}, "n1": {"role": "a"}, "n3": {}},
  "edge-data": {"e9": {"timestamp": 1600000000}, "e1": {"weight": 0.5}},
  "edge-dict": {
    "e9": ["n1", "n2"],
    "e1": ["n2", "n3", "n4"],
    "e2": [7, 8, 9, 10]
  }
}`

func TestReadJSON(t *testing.T) {
	h, err := ReadJSON(strings.NewReader(sampleDoc), -1)
	require.NoError(t, err)

	assert.Equal(t, "email-toy", h.Name())
	assert.Equal(t, int64(3), h.Attrs()["timespan"])
	assert.Equal(t, []hypergraph.ID{"n2", "n1", "n3", "n4", "7", "8", "9", "10"}, h.Nodes())
	assert.Equal(t, []hypergraph.ID{"e9", "e1", "e2"}, h.Edges())

	attrs, _ := h.EdgeAttrs("e9")
	assert.Equal(t, int64(1600000000), attrs["timestamp"])
	attrs, _ = h.EdgeAttrs("e1")
	assert.Equal(t, 0.5, attrs["weight"])
	nattrs, _ := h.NodeAttrs("n1")
	assert.Equal(t, "a", nattrs["role"])
}

func TestReadJSONMaxOrder(t *testing.T) {
	h, err := ReadJSON(strings.NewReader(sampleDoc), 1)
	require.NoError(t, err)
	assert.Equal(t, []hypergraph.ID{"e9"}, h.Edges())
	// nodes listed in node-data survive the filter
	assert.True(t, h.HasNode("n3"))
	assert.False(t, h.HasNode("7"))
}

func TestReadJSONZeroMaxOrderKeepsAll(t *testing.T) {
	h, err := ReadJSON(strings.NewReader(sampleDoc), 0)
	require.NoError(t, err)
	assert.Equal(t, []hypergraph.ID{"e9", "e1", "e2"}, h.Edges())
}

func TestReadJSONFileMaxOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.json")
	require.NoError(t, WriteRaw(path, []byte(sampleDoc)))

	h, err := ReadJSONFile(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []hypergraph.ID{"e9", "e1"}, h.Edges())
	assert.Equal(t, "email-toy", h.Name())
}

func TestReadJSONMalformed(t *testing.T) {
	for name, doc := range map[string]string{
		"not an object": `[1, 2]`,
		"no edge-dict":  `{"node-data": {}}`,
		"bad member":    `{"edge-dict": {"0": [{"x": 1}]}}`,
		"truncated":     `{"edge-dict": {"0": ["a"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(doc), -1)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestJSONRoundTripKeepsOrder(t *testing.T) {
	h := hypergraph.New(hypergraph.WithName("rt"))
	require.NoError(t, h.AddNode("z", hypergraph.Attrs{"x": 1}))
	require.NoError(t, h.AddEdgeWithID("b", []hypergraph.ID{"z", "a"}, hypergraph.Attrs{"w": 2.5}))
	require.NoError(t, h.AddEdgeWithID("a", []hypergraph.ID{"a", "c"}, nil))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, h))
	assert.Less(t, strings.Index(buf.String(), `"b":`), strings.Index(buf.String(), `"a":["a"`))

	back, err := ReadJSON(&buf, -1)
	require.NoError(t, err)
	assert.Equal(t, "rt", back.Name())
	assert.Equal(t, h.Nodes(), back.Nodes())
	assert.Equal(t, h.Edges(), back.Edges())
	assert.Equal(t, h.EdgeMembers(), back.EdgeMembers())
	attrs, _ := back.EdgeAttrs("b")
	assert.Equal(t, 2.5, attrs["w"])
}

func TestJSONFile(t *testing.T) {
	h, err := hypergraph.FromEdges([][]hypergraph.ID{{"1", "2"}, {"2", "3", "4"}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "nested", "toy.json")
	require.NoError(t, WriteJSONFile(path, h))

	back, err := ReadJSONFile(path, -1)
	require.NoError(t, err)
	assert.Equal(t, h.EdgeMembers(), back.EdgeMembers())

	_, err = ReadJSONFile(filepath.Join(t.TempDir(), "missing.json"), -1)
	assert.Error(t, err)
}

func TestEdgeList(t *testing.T) {
	in := "# comment\n1 2 3\n\n3 4\n4\t5  6\n"
	h, err := ReadEdgeList(strings.NewReader(in), "")
	require.NoError(t, err)
	assert.Equal(t, 3, h.NumEdges())
	members, _ := h.Members("2")
	assert.Equal(t, []hypergraph.ID{"4", "5", "6"}, members)

	var buf bytes.Buffer
	require.NoError(t, WriteEdgeList(&buf, h, ","))
	assert.Equal(t, "1,2,3\n3,4\n4,5,6\n", buf.String())

	back, err := ReadEdgeList(&buf, ",")
	require.NoError(t, err)
	assert.Equal(t, h.EdgeMembers(), back.EdgeMembers())
}

func TestBipartiteEdgeList(t *testing.T) {
	in := "a e1\nb e1\nb e2\nc e2\n"
	h, err := ReadBipartiteEdgeList(strings.NewReader(in), "")
	require.NoError(t, err)
	assert.Equal(t, []hypergraph.ID{"e1", "e2"}, h.Edges())
	members, _ := h.Members("e2")
	assert.Equal(t, []hypergraph.ID{"b", "c"}, members)

	var buf bytes.Buffer
	require.NoError(t, WriteBipartiteEdgeList(&buf, h, " "))
	assert.Equal(t, in, buf.String())

	_, err = ReadBipartiteEdgeList(strings.NewReader("a b c\n"), "")
	assert.ErrorIs(t, err, ErrFormat)
}
