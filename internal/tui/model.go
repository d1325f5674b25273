// Package tui is a terminal browser for the catalog.
package tui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-cache/client"
	"github.com/goliatone/go-catalog-cache/internal/seed"
	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/orchestrator"
)

const (
	// DefaultDebounce is how long the search input must be idle before a search runs.
	DefaultDebounce = 300 * time.Millisecond

	// loadMoreThreshold is how close to the last row the cursor must be to fetch the next page.
	loadMoreThreshold = 5
)

// Options configures the browser.
type Options struct {
	Context       context.Context
	Catalog       client.Catalog
	PageSize      int
	InitialWindow time.Duration
	PageWindow    time.Duration
	Debounce      time.Duration
	Seed          uint64
	Logger        zerolog.Logger
}

type focus int

const (
	focusList focus = iota
	focusSearch
)

// stateMsg reports that the list state may have changed. err is set when the
// request behind it failed.
type stateMsg struct{ err error }

type searchTickMsg struct {
	seq  int
	term string
}

type detailMsg struct {
	item item.Item
	err  error
}

type statsMsg struct {
	stats item.Stats
	err   error
}

type createdMsg struct {
	item item.Item
	err  error
}

// notifier forwards orchestrator transitions to a running program.
type notifier struct {
	mu      sync.Mutex
	program *tea.Program
}

func (n *notifier) attach(p *tea.Program) {
	n.mu.Lock()
	n.program = p
	n.mu.Unlock()
}

func (n *notifier) send(orchestrator.State) {
	n.mu.Lock()
	p := n.program
	n.mu.Unlock()
	if p != nil {
		p.Send(stateMsg{})
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	catalog  client.Catalog
	orch     *orchestrator.Orchestrator
	gen      *seed.Generator
	notify   *notifier
	keys     keyMap
	debounce time.Duration

	width  int
	height int
	focus  focus

	search    textinput.Model
	searchSeq int

	list           orchestrator.State
	cursor         int
	top            int
	lastResetToken uint64
	skipNextLoad   bool

	stats   *item.Stats
	detail  *item.Item
	status  string
	lastErr error
}

// New builds the model and its orchestrator over opts.Catalog.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	n := &notifier{}
	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(opts.Logger),
		orchestrator.WithListener(n.send),
	}
	if opts.PageSize > 0 {
		orchOpts = append(orchOpts, orchestrator.WithPageSize(opts.PageSize))
	}
	if opts.InitialWindow > 0 || opts.PageWindow > 0 {
		initial, page := opts.InitialWindow, opts.PageWindow
		if initial <= 0 {
			initial = orchestrator.DefaultInitialWindow
		}
		if page <= 0 {
			page = orchestrator.DefaultPageWindow
		}
		orchOpts = append(orchOpts, orchestrator.WithDedupWindows(initial, page))
	}
	orch := orchestrator.New(opts.Catalog, orchOpts...)

	ti := textinput.New()
	ti.Placeholder = "Search by name or category"
	ti.Prompt = "/ "
	ti.CharLimit = 120

	return Model{
		ctx:      ctx,
		catalog:  opts.Catalog,
		orch:     orch,
		gen:      seed.New(opts.Seed),
		notify:   n,
		keys:     defaultKeyMap(),
		debounce: debounce,
		search:   ti,
		list:     orch.Snapshot(),
	}
}

// Init loads the first page and the statistics.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initializeCmd(), m.statsCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(msg.Width-4, 10)
		m.clampScroll()
		return m, nil

	case stateMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		}
		m.applyState(m.orch.Snapshot())
		return m, nil

	case searchTickMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.lastErr = nil
		return m, m.setSearchCmd(msg.term)

	case detailMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			if client.IsNotFound(msg.err) {
				m.status = "item no longer exists"
			}
			return m, nil
		}
		it := msg.item
		m.detail = &it
		return m, nil

	case statsMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		s := msg.stats
		m.stats = &s
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.status = "created " + formatID(msg.item.ID) + " " + msg.item.Name
		return m, m.statsCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.detail != nil {
		if key.Matches(msg, m.keys.Back, m.keys.Confirm) {
			m.detail = nil
		} else if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.focus == focusSearch {
		return m.handleSearchKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Focus), key.Matches(msg, m.keys.Back):
		m.focus = focusList
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		// run now and drop any pending debounce tick
		m.searchSeq++
		m.focus = focusList
		m.search.Blur()
		m.lastErr = nil
		return m, m.setSearchCmd(m.search.Value())
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}

	m.searchSeq++
	seq, term := m.searchSeq, m.search.Value()
	tick := tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq, term: term}
	})
	return m, tea.Batch(cmd, tick)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search), key.Matches(msg, m.keys.Focus):
		m.focus = focusSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Confirm):
		if len(m.list.Items) == 0 {
			return m, nil
		}
		return m, m.detailCmd(m.list.Items[m.cursor].ID)
	case key.Matches(msg, m.keys.NewItem):
		return m, m.createCmd()
	case key.Matches(msg, m.keys.RefreshStats):
		return m, m.statsCmd()
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		return m.moveCursor(-m.visibleRows())
	case key.Matches(msg, m.keys.PageDown):
		return m.moveCursor(m.visibleRows())
	case key.Matches(msg, m.keys.Top):
		return m.moveCursor(-len(m.list.Items))
	case key.Matches(msg, m.keys.Bottom):
		return m.moveCursor(len(m.list.Items))
	}
	return m, nil
}

func (m Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if len(m.list.Items) == 0 {
		return m, nil
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.list.Items)-1)
	m.clampScroll()

	if delta <= 0 || m.cursor < len(m.list.Items)-loadMoreThreshold {
		return m, nil
	}
	return m.endReached()
}

// endReached asks for the next page. The first trigger after a reset is ignored:
// it comes from the jump back to the top, not from the user.
func (m Model) endReached() (tea.Model, tea.Cmd) {
	if m.skipNextLoad {
		m.skipNextLoad = false
		return m, nil
	}
	if m.list.Loading || !m.list.HasMore {
		return m, nil
	}
	return m, m.loadMoreCmd()
}

func (m *Model) applyState(s orchestrator.State) {
	m.list = s
	if s.ResetToken != m.lastResetToken {
		m.lastResetToken = s.ResetToken
		m.cursor = 0
		m.top = 0
		m.skipNextLoad = true
	}
	if m.cursor >= len(s.Items) {
		m.cursor = max(len(s.Items)-1, 0)
	}
	m.clampScroll()
}

func (m *Model) clampScroll() {
	rows := m.visibleRows()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+rows {
		m.top = m.cursor - rows + 1
	}
	m.top = max(m.top, 0)
}

// visibleRows is the number of list rows that fit below the header.
func (m Model) visibleRows() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-6, 1)
}

func (m Model) initializeCmd() tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		return stateMsg{err: orch.Initialize(ctx)}
	}
}

func (m Model) setSearchCmd(term string) tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		return stateMsg{err: orch.SetSearch(ctx, term)}
	}
}

func (m Model) loadMoreCmd() tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		return stateMsg{err: orch.LoadMore(ctx)}
	}
}

func (m Model) detailCmd(id int64) tea.Cmd {
	catalog, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		it, err := catalog.FetchItem(ctx, id)
		return detailMsg{item: it, err: err}
	}
}

func (m Model) statsCmd() tea.Cmd {
	catalog, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		s, err := catalog.FetchStats(ctx)
		return statsMsg{stats: s, err: err}
	}
}

func (m Model) createCmd() tea.Cmd {
	catalog, ctx := m.catalog, m.ctx
	name, category, price := m.gen.Candidate()
	return func() tea.Msg {
		it, err := catalog.CreateItem(ctx, client.NewItem{Name: name, Category: category, Price: price})
		return createdMsg{item: it, err: err}
	}
}
