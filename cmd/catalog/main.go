package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-cache/client"
	"github.com/goliatone/go-catalog-cache/internal/config"
	"github.com/goliatone/go-catalog-cache/internal/logging"
	"github.com/goliatone/go-catalog-cache/internal/seed"
	"github.com/goliatone/go-catalog-cache/internal/tui"
	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/orchestrator"
	"github.com/goliatone/go-catalog-cache/pkg/di"
	"github.com/goliatone/go-catalog-cache/store"
	"github.com/goliatone/go-catalog-cache/store/filestore"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const shutdownTimeout = 10 * time.Second

// Globals are flags shared by every command.
type Globals struct {
	Config   string `help:"Path to a YAML or TOML config file." default:"catalog.yaml" env:"CATALOG_CONFIG" type:"path"`
	LogLevel string `help:"Override the configured log level."`
	API      string `help:"Override the catalog API base URL."`
}

// CLI is the top-level command structure for catalog.
type CLI struct {
	Globals

	Version  kong.VersionFlag `help:"Show version." short:"V"`
	Serve    ServeCmd         `cmd:"" help:"Serve the catalog API."`
	Browse   BrowseCmd        `cmd:"" help:"Browse the catalog interactively."`
	Search   SearchCmd        `cmd:"" help:"Print one page of items matching a term."`
	Get      GetCmd           `cmd:"" help:"Print a single item."`
	Add      AddCmd           `cmd:"" help:"Create an item."`
	Stats    StatsCmd         `cmd:"" help:"Print catalog statistics."`
	Generate GenerateCmd      `cmd:"" help:"Generate a realistic dataset."`
}

func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.API != "" {
		cfg.Client.BaseURL = g.API
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *Globals) client() (*config.Config, *client.Client, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, nil, err
	}
	c, err := di.NewClient(cfg.Client)
	if err != nil {
		return nil, nil, err
	}
	return cfg, c, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Addr string `help:"Listen address. Overrides server.addr."`
}

func (s *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()
	return serve(ctx, *cfg, logger, nil)
}

// serve blocks until ctx is done. ready, when set, receives the bound address.
func serve(ctx context.Context, cfg config.Config, logger zerolog.Logger, ready chan<- string) error {
	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close store")
		}
	}()

	srv := container.NewServer()
	if err := srv.Start(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if ready != nil {
		ready <- srv.ListenAddr()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// BrowseCmd opens the terminal browser, or prints the first page when stdout is
// not a terminal.
type BrowseCmd struct {
	Plain bool   `help:"Force plain text output even if stdout is a TTY." default:"false"`
	Seed  uint64 `help:"Seed for randomly generated items. Zero picks one from the clock." default:"0"`
}

func (b *BrowseCmd) Run(g *Globals) error {
	cfg, c, err := g.client()
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	if b.Plain || !isTTY(os.Stdout) {
		return printFirstPage(ctx, os.Stdout, c, cfg.Client)
	}

	seedValue := b.Seed
	if seedValue == 0 {
		seedValue = uint64(time.Now().UnixNano())
	}
	err = tui.Run(tui.Options{
		Context:       ctx,
		Catalog:       c,
		PageSize:      cfg.Client.PageSize,
		InitialWindow: cfg.Client.InitialWindow.Std(),
		PageWindow:    cfg.Client.PageWindow.Std(),
		Seed:          seedValue,
		Logger:        zerolog.Nop(),
	}, os.Stdin, os.Stdout)
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// printFirstPage loads the first page through an orchestrator and prints it.
func printFirstPage(ctx context.Context, w io.Writer, fetcher orchestrator.Fetcher, cfg config.Client) error {
	orch := orchestrator.New(fetcher, orchestrator.WithPageSize(cfg.PageSize))
	if err := orch.Initialize(ctx); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	s := orch.Snapshot()
	printItems(w, s.Items)
	fmt.Fprintf(w, "\nShowing %d of %d\n", len(s.Items), s.TotalCount)
	return nil
}

// SearchCmd prints one page of search results.
type SearchCmd struct {
	Term   string `arg:"" optional:"" help:"Case-insensitive substring of name or category."`
	Limit  int    `help:"Page size. Defaults to client.page_size."`
	Offset int    `help:"Number of matches to skip."`
}

func (s *SearchCmd) Run(g *Globals) error {
	cfg, c, err := g.client()
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	limit := s.Limit
	if limit <= 0 {
		limit = cfg.Client.PageSize
	}

	ctx, stop := signalContext()
	defer stop()
	return runSearch(ctx, os.Stdout, c, item.Query{Search: s.Term, Limit: limit, Offset: s.Offset})
}

func runSearch(ctx context.Context, w io.Writer, c client.Catalog, q item.Query) error {
	page, err := c.FetchItems(ctx, q)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	printItems(w, page.Items)
	fmt.Fprintf(w, "\nShowing %d of %d (offset %d)\n", page.Showing(), page.Total, page.Offset)
	return nil
}

// GetCmd prints one item.
type GetCmd struct {
	ID int64 `arg:"" help:"Item id."`
}

func (c *GetCmd) Run(g *Globals) error {
	_, api, err := g.client()
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	ctx, stop := signalContext()
	defer stop()
	return runGet(ctx, os.Stdout, api, c.ID)
}

func runGet(ctx context.Context, w io.Writer, c client.Catalog, id int64) error {
	it, err := c.FetchItem(ctx, id)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	printItems(w, []item.Item{it})
	return nil
}

// AddCmd creates an item.
type AddCmd struct {
	Name     string  `help:"Item name." required:""`
	Category string  `help:"Item category." required:""`
	Price    float64 `help:"Item price, greater than zero." required:""`
}

func (a *AddCmd) Run(g *Globals) error {
	_, api, err := g.client()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	ctx, stop := signalContext()
	defer stop()
	return runAdd(ctx, os.Stdout, api, client.NewItem{Name: a.Name, Category: a.Category, Price: a.Price})
}

func runAdd(ctx context.Context, w io.Writer, c client.Catalog, in client.NewItem) error {
	it, err := c.CreateItem(ctx, in)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	fmt.Fprintf(w, "created item %d\n", it.ID)
	return nil
}

// StatsCmd prints catalog statistics.
type StatsCmd struct{}

func (s *StatsCmd) Run(g *Globals) error {
	_, api, err := g.client()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	ctx, stop := signalContext()
	defer stop()
	return runStats(ctx, os.Stdout, api)
}

func runStats(ctx context.Context, w io.Writer, c client.Catalog) error {
	stats, err := c.FetchStats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	fmt.Fprintf(w, "Total items:   %d\n", stats.Total)
	fmt.Fprintf(w, "Average price: $%.2f\n", stats.AveragePrice)
	return nil
}

// GenerateCmd writes a generated dataset to a file or to the configured store.
type GenerateCmd struct {
	Count int    `help:"Number of items, including the five canonical ones." default:"1000"`
	Out   string `help:"Output file (.json, .msgpack or .mpk). Defaults to the configured store." type:"path"`
	Seed  uint64 `help:"Generator seed." default:"1"`
}

func (c *GenerateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()
	if err := c.run(ctx, cfg.Store, logger); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	fmt.Fprintf(os.Stdout, "generated %d items\n", max(c.Count, 0))
	return nil
}

func (c *GenerateCmd) run(ctx context.Context, cfg config.Store, logger zerolog.Logger) error {
	var (
		target store.ItemStore
		err    error
	)
	if c.Out != "" {
		target, err = filestore.Open(c.Out, filestore.WithLogger(logger))
	} else {
		if cfg.Driver == config.DriverMemory {
			return errors.New("the memory store cannot be seeded; pass --out or configure a persistent store")
		}
		target, err = di.OpenStore(ctx, cfg, logger)
	}
	if err != nil {
		return err
	}
	defer target.Close()

	seeder, ok := target.(store.Seeder)
	if !ok {
		return fmt.Errorf("store %T cannot be seeded", target)
	}
	return seeder.Replace(ctx, seed.New(c.Seed).Items(c.Count))
}

func printItems(w io.Writer, items []item.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no items")
		return
	}
	fmt.Fprintf(w, "%-16s  %-40s  %-18s  %10s\n", "ID", "NAME", "CATEGORY", "PRICE")
	for _, it := range items {
		price := "n/a"
		if it.HasPrice() {
			price = fmt.Sprintf("%.2f", it.Price)
		}
		fmt.Fprintf(w, "%-16d  %-40s  %-18s  %10s\n", it.ID, it.Name, it.Category, price)
	}
}

// isTTY reports whether f is connected to a terminal.
func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("catalog"),
		kong.Description("Cached product catalog server and client."),
		kong.UsageOnError(),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
