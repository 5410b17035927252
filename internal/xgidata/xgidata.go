// Package xgidata loads datasets from the xgi-data repository, or from a
// local copy of it.
//
// The repository publishes an index mapping lower-case dataset names to
// download URLs. Load prefers a local <name>.json when asked to and falls
// back to the network with a warning; Download stores that file.
package xgidata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/hyperlab/internal/catalog"
	"github.com/san-kum/hyperlab/internal/httputil"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/readwrite"
)

const DefaultIndexURL = "https://gitlab.com/complexgroupinteractions/xgi-data/-/raw/main/index.json?inline=false"

var ErrUnknownDataset = errors.New("xgidata: unknown dataset")

// UnknownDatasetError lists the names the index does know.
type UnknownDatasetError struct {
	Name  string
	Valid []string
}

func (e *UnknownDatasetError) Error() string {
	return fmt.Sprintf("xgidata: unknown dataset %q; valid names: %s", e.Name, strings.Join(e.Valid, ", "))
}

func (e *UnknownDatasetError) Unwrap() error { return ErrUnknownDataset }

// IndexEntry is one dataset in the repository index.
type IndexEntry struct {
	URL string `json:"url"`
}

type Client struct {
	http     *http.Client
	indexURL string
	log      *zap.Logger
	catalog  *catalog.Catalog
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	if c == nil {
		panic("xgidata: WithHTTPClient(nil)")
	}
	return func(cl *Client) { cl.http = c }
}

func WithIndexURL(url string) Option {
	return func(cl *Client) {
		if url != "" {
			cl.indexURL = url
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("xgidata: WithLogger(nil)")
	}
	return func(cl *Client) { cl.log = l }
}

// WithCatalog records every download in c.
func WithCatalog(c *catalog.Catalog) Option {
	return func(cl *Client) { cl.catalog = c }
}

func New(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 5 * time.Minute},
		indexURL: DefaultIndexURL,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadOptions mirror the knobs of a dataset load.
type LoadOptions struct {
	// Path is the directory searched for <dataset>.json.
	Path string
	// Read enables the local lookup.
	Read bool
	// MaxOrder drops edges of higher order; zero or negative keeps all.
	MaxOrder int
}

func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Read: true, MaxOrder: -1}
}

// LocalPath is where Download stores a dataset and Load looks for it.
func LocalPath(dir, dataset string) string {
	return filepath.Join(dir, dataset+".json")
}

func (c *Client) Load(ctx context.Context, dataset string, opts LoadOptions) (*hypergraph.Hypergraph, error) {
	if opts.Read {
		path := LocalPath(opts.Path, dataset)
		if _, err := os.Stat(path); err == nil {
			c.log.Debug("loading local dataset", zap.String("path", path))
			return readwrite.ReadJSONFile(path, opts.MaxOrder)
		}
		c.log.Warn("no local copy found, requesting from xgi-data instead; use download to keep a copy",
			zap.String("path", path), zap.String("dataset", dataset))
	}
	raw, _, err := c.Fetch(ctx, dataset)
	if err != nil {
		return nil, err
	}
	h, err := readwrite.FromDict(raw, opts.MaxOrder)
	if err != nil {
		return nil, fmt.Errorf("xgidata: %s: %w", dataset, err)
	}
	return h, nil
}

// Download writes the dataset to <dir>/<dataset>.json and returns the path.
func (c *Client) Download(ctx context.Context, dataset, dir string) (string, error) {
	raw, url, err := c.Fetch(ctx, dataset)
	if err != nil {
		return "", err
	}
	path := LocalPath(dir, dataset)
	if err := readwrite.WriteRaw(path, raw); err != nil {
		return "", fmt.Errorf("xgidata: saving %s: %w", dataset, err)
	}
	c.log.Info("dataset downloaded", zap.String("dataset", dataset), zap.String("path", path), zap.Int("bytes", len(raw)))

	if c.catalog != nil {
		h, err := readwrite.FromDict(raw, -1)
		if err != nil {
			return path, fmt.Errorf("xgidata: %s: %w", dataset, err)
		}
		err = c.catalog.Record(ctx, catalog.Entry{
			Name:     dataset,
			URL:      url,
			Path:     path,
			NumNodes: h.NumNodes(),
			NumEdges: h.NumEdges(),
			MaxOrder: h.MaxEdgeOrder(),
		})
		if err != nil {
			return path, err
		}
	}
	return path, nil
}

// Index fetches the repository index.
func (c *Client) Index(ctx context.Context) (map[string]IndexEntry, error) {
	body, err := httputil.Get(ctx, c.http, c.indexURL, c.log)
	if err != nil {
		return nil, fmt.Errorf("xgidata: fetching index: %w", err)
	}
	var index map[string]IndexEntry
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("xgidata: decoding index: %w", err)
	}
	return index, nil
}

// Names returns the dataset names of the index, sorted.
func (c *Client) Names(ctx context.Context) ([]string, error) {
	index, err := c.Index(ctx)
	if err != nil {
		return nil, err
	}
	return sortedNames(index), nil
}

// Fetch downloads the raw dataset document and reports its URL. Names are
// matched case-insensitively.
func (c *Client) Fetch(ctx context.Context, dataset string) ([]byte, string, error) {
	index, err := c.Index(ctx)
	if err != nil {
		return nil, "", err
	}
	entry, ok := index[strings.ToLower(dataset)]
	if !ok {
		return nil, "", &UnknownDatasetError{Name: dataset, Valid: sortedNames(index)}
	}
	raw, err := httputil.Get(ctx, c.http, entry.URL, c.log)
	if err != nil {
		return nil, "", fmt.Errorf("xgidata: fetching %s: %w", dataset, err)
	}
	return raw, entry.URL, nil
}

func sortedNames(index map[string]IndexEntry) []string {
	names := make([]string, 0, len(index))
	for k := range index {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var defaultClient = New()

// Load uses a client with default settings.
func Load(ctx context.Context, dataset string, opts LoadOptions) (*hypergraph.Hypergraph, error) {
	return defaultClient.Load(ctx, dataset, opts)
}

func Download(ctx context.Context, dataset, dir string) (string, error) {
	return defaultClient.Download(ctx, dataset, dir)
}
