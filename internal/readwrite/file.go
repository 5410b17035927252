package readwrite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/exp/mmap"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

// ReadJSONFile decodes from a memory mapping of the file, so only the
// decoded sections are copied onto the heap; dataset files run to hundreds
// of megabytes.
func ReadJSONFile(path string, maxOrder int) (*hypergraph.Hypergraph, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer ra.Close()
	h, err := ReadJSON(io.NewSectionReader(ra, 0, int64(ra.Len())), maxOrder)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// WriteJSONFile writes through a temporary file and renames it into place.
func WriteJSONFile(path string, h *hypergraph.Hypergraph) error {
	return writeAtomic(path, func(w io.Writer) error { return WriteJSON(w, h) })
}

// WriteRaw stores an already encoded document atomically.
func WriteRaw(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
