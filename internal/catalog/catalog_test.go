package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLifecycle(t *testing.T) {
	ctx := context.Background()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	older := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)
	require.NoError(t, c.Record(ctx, Entry{Name: "email-enron", URL: "u1", Path: "p1", FetchedAt: older, NumNodes: 148, NumEdges: 10885, MaxOrder: 36}))
	require.NoError(t, c.Record(ctx, Entry{Name: "diseasome", URL: "u2", Path: "p2", FetchedAt: newer, NumNodes: 516, NumEdges: 903, MaxOrder: 10}))

	got, err := c.Get(ctx, "email-enron")
	require.NoError(t, err)
	assert.Equal(t, 148, got.NumNodes)
	assert.True(t, got.FetchedAt.Equal(older))

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "diseasome", list[0].Name)

	// re-recording replaces the row
	require.NoError(t, c.Record(ctx, Entry{Name: "email-enron", URL: "u3", Path: "p3", FetchedAt: newer.Add(time.Hour), NumNodes: 143}))
	got, err = c.Get(ctx, "email-enron")
	require.NoError(t, err)
	assert.Equal(t, "u3", got.URL)
	list, _ = c.List(ctx)
	assert.Equal(t, "email-enron", list[0].Name)

	require.NoError(t, c.Remove(ctx, "email-enron"))
	_, err = c.Get(ctx, "email-enron")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Remove(ctx, "email-enron"), ErrNotFound)
}

func TestCatalogPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.Record(ctx, Entry{Name: "x", URL: "u", Path: "p"}))
	require.NoError(t, c.Close())

	c, err = Open(dir)
	require.NoError(t, err)
	defer c.Close()
	e, err := c.Get(ctx, "x")
	require.NoError(t, err)
	assert.False(t, e.FetchedAt.IsZero())
}
