package readwrite

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

func split(line, delimiter string) []string {
	if delimiter == "" {
		return strings.Fields(line)
	}
	parts := strings.Split(line, delimiter)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// lines yields the non-blank, non-comment lines of r with their numbers.
func lines(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadEdgeList reads one edge per line. An empty delimiter splits on
// whitespace. Edge IDs are assigned in line order.
func ReadEdgeList(r io.Reader, delimiter string) (*hypergraph.Hypergraph, error) {
	h := hypergraph.New()
	err := lines(r, func(n int, line string) error {
		if _, err := h.AddEdge(split(line, delimiter), nil); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrFormat, n, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func WriteEdgeList(w io.Writer, h *hypergraph.Hypergraph, delimiter string) error {
	if delimiter == "" {
		delimiter = " "
	}
	bw := bufio.NewWriter(w)
	for _, e := range h.Edges() {
		members, _ := h.Members(e)
		if _, err := fmt.Fprintln(bw, strings.Join(members, delimiter)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadBipartiteEdgeList reads "node edge" pairs, one membership per line.
func ReadBipartiteEdgeList(r io.Reader, delimiter string) (*hypergraph.Hypergraph, error) {
	h := hypergraph.New()
	err := lines(r, func(n int, line string) error {
		f := split(line, delimiter)
		if len(f) != 2 {
			return fmt.Errorf("%w: line %d: want 2 fields, got %d", ErrFormat, n, len(f))
		}
		if err := h.AddNodeToEdge(f[1], f[0]); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrFormat, n, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func WriteBipartiteEdgeList(w io.Writer, h *hypergraph.Hypergraph, delimiter string) error {
	if delimiter == "" {
		delimiter = " "
	}
	bw := bufio.NewWriter(w)
	for _, e := range h.Edges() {
		members, _ := h.Members(e)
		for _, m := range members {
			if _, err := fmt.Fprintf(bw, "%s%s%s\n", m, delimiter, e); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
