// Package readwrite moves hypergraphs in and out of the xgi-data JSON
// layout and plain-text edge lists.
package readwrite

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

var ErrFormat = errors.New("readwrite: malformed input")

// JSON keys of the xgi-data layout.
const (
	KeyGraph    = "hypergraph-data"
	KeyNodeData = "node-data"
	KeyEdgeData = "edge-data"
	KeyEdgeDict = "edge-dict"
)

// Entry is one key of an ordered JSON object.
type Entry struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps its key order when encoded.
type Object []Entry

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToDict converts h to the xgi-data layout, preserving node and edge order.
func ToDict(h *hypergraph.Hypergraph) Object {
	nodeData := make(Object, 0, h.NumNodes())
	for _, n := range h.Nodes() {
		attrs, _ := h.NodeAttrs(n)
		nodeData = append(nodeData, Entry{n, nonNil(attrs)})
	}
	edgeData := make(Object, 0, h.NumEdges())
	edgeDict := make(Object, 0, h.NumEdges())
	for _, e := range h.Edges() {
		attrs, _ := h.EdgeAttrs(e)
		members, _ := h.Members(e)
		edgeData = append(edgeData, Entry{e, nonNil(attrs)})
		edgeDict = append(edgeDict, Entry{e, members})
	}
	graph := hypergraph.Attrs{}
	for k, v := range h.Attrs() {
		graph[k] = v
	}
	if h.Name() != "" {
		graph["name"] = h.Name()
	}
	return Object{
		{KeyGraph, graph},
		{KeyNodeData, nodeData},
		{KeyEdgeData, edgeData},
		{KeyEdgeDict, edgeDict},
	}
}

func nonNil(a hypergraph.Attrs) hypergraph.Attrs {
	if a == nil {
		return hypergraph.Attrs{}
	}
	return a
}

func WriteJSON(w io.Writer, h *hypergraph.Hypergraph) error {
	enc := json.NewEncoder(w)
	return enc.Encode(ToDict(h))
}

// ReadJSON decodes the xgi-data layout straight from r. Edges of order
// above maxOrder are skipped when maxOrder > 0; like xgi, zero or a
// negative value keeps every edge. Object key order becomes insertion
// order.
func ReadJSON(r io.Reader, maxOrder int) (*hypergraph.Hypergraph, error) {
	parts, err := splitParts(r)
	if err != nil {
		return nil, err
	}
	return fromParts(parts, maxOrder)
}

// FromDict builds a hypergraph from a raw xgi-data document.
func FromDict(raw []byte, maxOrder int) (*hypergraph.Hypergraph, error) {
	return ReadJSON(bytes.NewReader(raw), maxOrder)
}

// splitParts reads the top-level sections without buffering the whole
// document first.
func splitParts(r io.Reader) (map[string]json.RawMessage, error) {
	parts := make(map[string]json.RawMessage)
	if err := eachKeyFrom(r, func(k string, v json.RawMessage) error {
		parts[k] = v
		return nil
	}); err != nil {
		return nil, err
	}
	if _, ok := parts[KeyEdgeDict]; !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrFormat, KeyEdgeDict)
	}
	return parts, nil
}

func fromParts(parts map[string]json.RawMessage, maxOrder int) (*hypergraph.Hypergraph, error) {
	h := hypergraph.New()
	if g, ok := parts[KeyGraph]; ok {
		var attrs hypergraph.Attrs
		if err := decode(g, &attrs); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFormat, KeyGraph, err)
		}
		for k, v := range attrs {
			if k == "name" {
				if s, ok := v.(string); ok {
					h.SetName(s)
					continue
				}
			}
			h.Attrs()[k] = v
		}
	}

	if nd, ok := parts[KeyNodeData]; ok {
		err := eachKey(nd, func(id string, v json.RawMessage) error {
			var attrs hypergraph.Attrs
			if err := decode(v, &attrs); err != nil {
				return fmt.Errorf("node %s: %v", id, err)
			}
			return h.AddNode(id, attrs)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFormat, KeyNodeData, err)
		}
	}

	err := eachKey(parts[KeyEdgeDict], func(id string, v json.RawMessage) error {
		var members []any
		if err := decode(v, &members); err != nil {
			return fmt.Errorf("edge %s: %v", id, err)
		}
		if len(members) == 0 || (maxOrder > 0 && len(members) > maxOrder+1) {
			return nil
		}
		ids := make([]hypergraph.ID, len(members))
		for i, m := range members {
			s, err := idString(m)
			if err != nil {
				return fmt.Errorf("edge %s: %v", id, err)
			}
			ids[i] = s
		}
		return h.AddEdgeWithID(id, ids, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, KeyEdgeDict, err)
	}

	if ed, ok := parts[KeyEdgeData]; ok {
		err := eachKey(ed, func(id string, v json.RawMessage) error {
			if !h.HasEdge(id) {
				return nil
			}
			var attrs hypergraph.Attrs
			if err := decode(v, &attrs); err != nil {
				return fmt.Errorf("edge %s: %v", id, err)
			}
			for k, val := range attrs {
				_ = h.SetEdgeAttr(id, k, val)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFormat, KeyEdgeData, err)
		}
	}
	return h, nil
}

// decode keeps integers as int64 and other numbers as float64.
func decode(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	normalize(v)
	return nil
}

func normalize(v any) {
	switch x := v.(type) {
	case *hypergraph.Attrs:
		for k, val := range *x {
			(*x)[k] = number(val)
		}
	case *[]any:
		for i, val := range *x {
			(*x)[i] = number(val)
		}
	}
}

func number(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, val := range x {
			x[k] = number(val)
		}
	case []any:
		for i, val := range x {
			x[i] = number(val)
		}
	}
	return v
}

func idString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("member %v is not an id", v)
}

// eachKey walks a JSON object in document order.
func eachKey(raw []byte, fn func(key string, value json.RawMessage) error) error {
	return eachKeyFrom(bytes.NewReader(raw), fn)
}

func eachKeyFrom(r io.Reader, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected object", ErrFormat)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrFormat, key, err)
		}
		if err := fn(key, v); err != nil {
			return err
		}
	}
	return nil
}
