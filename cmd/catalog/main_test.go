package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-cache/client"
	"github.com/goliatone/go-catalog-cache/internal/config"
	"github.com/goliatone/go-catalog-cache/internal/seed"
	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/pkg/di"
	"github.com/goliatone/go-catalog-cache/store/filestore"
	"github.com/goliatone/go-catalog-cache/store/memstore"
)

func newTestAPI(t *testing.T) *client.Client {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.DriverMemory
	container, err := di.NewContainerWithStore(cfg, memstore.New(seed.Canonical()...), zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(container.NewServer().Handler())
	t.Cleanup(ts.Close)

	c, err := client.New(ts.URL)
	require.NoError(t, err)
	return c
}

func TestParse(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"search", "laptop", "--limit", "5", "--api", "http://example.test"})
	require.NoError(t, err)
	assert.Equal(t, "search <term>", kctx.Command())
	assert.Equal(t, "laptop", cli.Search.Term)
	assert.Equal(t, 5, cli.Search.Limit)
	assert.Equal(t, "http://example.test", cli.API)

	_, err = parser.Parse([]string{"generate", "--count", "10", "--seed", "7"})
	require.NoError(t, err)
	assert.Equal(t, 10, cli.Generate.Count)
	assert.Equal(t, uint64(7), cli.Generate.Seed)

	_, err = parser.Parse([]string{"add", "--name", "X"})
	assert.Error(t, err, "category and price are required")
}

func TestRunSearch(t *testing.T) {
	c := newTestAPI(t)
	var buf bytes.Buffer

	require.NoError(t, runSearch(context.Background(), &buf, c, item.Query{Search: "electronics", Limit: 2}))
	out := buf.String()
	assert.Contains(t, out, "Laptop Pro")
	assert.Contains(t, out, "Noise Cancelling Headphones")
	assert.NotContains(t, out, "Ultra-Wide Monitor")
	assert.Contains(t, out, "Showing 2 of 3 (offset 0)")

	buf.Reset()
	require.NoError(t, runSearch(context.Background(), &buf, c, item.Query{Search: "nothing matches"}))
	assert.Contains(t, buf.String(), "no items")
}

func TestRunGetAddStats(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()
	var buf bytes.Buffer

	require.NoError(t, runGet(ctx, &buf, c, 4))
	assert.Contains(t, buf.String(), "Ergonomic Chair")

	err := runGet(ctx, &buf, c, 999999)
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))

	err = runAdd(ctx, &buf, c, client.NewItem{Name: "Lamp", Category: "Furniture", Price: 0})
	require.Error(t, err)
	assert.True(t, client.IsInvalid(err))

	buf.Reset()
	require.NoError(t, runAdd(ctx, &buf, c, client.NewItem{Name: "Lamp", Category: "Furniture", Price: 45}))
	assert.Contains(t, buf.String(), "created item")

	buf.Reset()
	require.NoError(t, runStats(ctx, &buf, c))
	assert.Contains(t, buf.String(), "Total items:   6")
}

func TestPrintFirstPage(t *testing.T) {
	c := newTestAPI(t)
	var buf bytes.Buffer

	cfg := config.DefaultConfig().Client
	cfg.PageSize = 3
	require.NoError(t, printFirstPage(context.Background(), &buf, c, cfg))
	assert.Contains(t, buf.String(), "Ultra-Wide Monitor")
	assert.NotContains(t, buf.String(), "Ergonomic Chair")
	assert.Contains(t, buf.String(), "Showing 3 of 5")
}

func TestGenerate(t *testing.T) {
	for _, name := range []string{"items.json", "items.msgpack"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), name)
			cmd := &GenerateCmd{Count: 250, Out: out, Seed: 3}
			require.NoError(t, cmd.run(context.Background(), config.DefaultConfig().Store, zerolog.Nop()))

			fs, err := filestore.Open(out)
			require.NoError(t, err)
			items, err := fs.ReadAll(context.Background())
			require.NoError(t, err)
			assert.Equal(t, seed.New(3).Items(250), items)
		})
	}
}

func TestGenerate_RejectsMemoryStore(t *testing.T) {
	cmd := &GenerateCmd{Count: 10, Seed: 1}
	err := cmd.run(context.Background(), config.Store{Driver: config.DriverMemory}, zerolog.Nop())
	assert.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.DriverMemory
	cfg.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, zerolog.Nop(), ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	c, err := client.New("http://" + addr)
	require.NoError(t, err)
	stats, err := c.FetchStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
