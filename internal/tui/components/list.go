package components

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mahmoud-slama/creditapp/internal/listing"
	"github.com/mahmoud-slama/creditapp/internal/tui/themes"
	"github.com/mahmoud-slama/creditapp/internal/views"
)

// Column describes one table column.
type Column[T any] struct {
	Value      func(T) string
	Title      string
	SortKey    string
	Width      int
	Searchable bool
}

// FilterKind names a cyclable filter.
type FilterKind int

// Filters a list can cycle through.
const (
	FilterPrice FilterKind = iota
	FilterAmount
	FilterDate
)

// ListOptions configure a ListModel.
type ListOptions[T any] struct {
	Clock    listing.Clock
	Filters  func(views.Filters) []listing.Predicate[T]
	Config   listing.Config[T]
	ID       string
	Title    string
	Columns  []Column[T]
	Cycles   []FilterKind
	Debounce time.Duration
	PageSize int
}

// ListKeyMap are the keys a list reacts to.
type ListKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	Search      key.Binding
	ClearSearch key.Binding
	Bracket     key.Binding
	Window      key.Binding
	Sort        key.Binding
}

// DefaultListKeyMap returns the list key bindings.
func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		NextPage:    key.NewBinding(key.WithKeys("n", "right", "pgdown"), key.WithHelp("n/→", "next page")),
		PrevPage:    key.NewBinding(key.WithKeys("p", "left", "pgup"), key.WithHelp("p/←", "prev page")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		ClearSearch: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave search")),
		Bracket:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "price/amount filter")),
		Window:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "date filter")),
		Sort:        key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "sort by column")),
	}
}

// settleFeed hands settled queries from the debouncer goroutine to bubbletea.
// Only the newest query is kept.
type settleFeed struct {
	ch   chan string
	done chan struct{}
	once sync.Once
}

func newSettleFeed() *settleFeed {
	return &settleFeed{ch: make(chan string, 1), done: make(chan struct{})}
}

func (f *settleFeed) push(q string) {
	for {
		select {
		case <-f.done:
			return
		case f.ch <- q:
			return
		default:
			select {
			case <-f.ch:
			default:
			}
		}
	}
}

func (f *settleFeed) stop() {
	f.once.Do(func() { close(f.done) })
}

// ListModel is a searchable, filterable, sortable and paginated table of T.
type ListModel[T any] struct {
	theme   themes.Theme
	query   *listing.Debouncer[string]
	feed    *settleFeed
	keys    ListKeyMap
	opts    ListOptions[T]
	err     error
	filters views.Filters
	result  listing.Result[T]
	input   textinput.Model
	spinner spinner.Model
	table   table.Model
	items   []T
	settled string
	sort    listing.SortState
	page    int
	width   int
	height  int
}

// NewList creates a list. Items stay nil (loading) until SetItems.
func NewList[T any](opts ListOptions[T], theme themes.Theme) ListModel[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = opts.Config.PageSize
	}

	input := textinput.New()
	input.Placeholder = "Search " + opts.Config.Noun + "..."
	input.CharLimit = 64
	input.Prompt = "/ "

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	cols := make([]table.Column, len(opts.Columns))
	for i, c := range opts.Columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(opts.PageSize+1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	styles.Selected = theme.Selected
	t.SetStyles(styles)

	feed := newSettleFeed()
	query := listing.NewDebouncer[string](opts.Debounce, opts.Clock)
	query.OnSettle(feed.push)

	m := ListModel[T]{
		theme:   theme,
		query:   query,
		feed:    feed,
		keys:    DefaultListKeyMap(),
		opts:    opts,
		input:   input,
		spinner: s,
		table:   t,
		sort:    opts.Config.DefaultSort,
		page:    1,
		filters: views.Filters{Price: listing.BracketAll, Amount: listing.BracketAll, Window: listing.WindowAll},
	}
	m.recompute()
	return m
}

// Init starts the spinner and the settle listener.
func (m ListModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForQuery())
}

func (m ListModel[T]) waitForQuery() tea.Cmd {
	feed, id := m.feed, m.opts.ID
	return func() tea.Msg {
		select {
		case q := <-feed.ch:
			return QuerySettledMsg{ListID: id, Query: q}
		case <-feed.done:
			return nil
		}
	}
}

// Stop cancels the pending debounce and ends the settle listener.
func (m ListModel[T]) Stop() {
	m.query.Stop()
	m.feed.stop()
}

// ID identifies the list in routed messages.
func (m ListModel[T]) ID() string { return m.opts.ID }

// Searching reports whether the search box has focus.
func (m ListModel[T]) Searching() bool { return m.input.Focused() }

// SetItems replaces the data. nil means loading.
func (m *ListModel[T]) SetItems(items []T) {
	m.items = items
	m.err = nil
	m.recompute()
}

// SetError shows err above the table; the items are kept.
func (m *ListModel[T]) SetError(err error) {
	m.err = err
}

// SetSize fits the list into the given area.
func (m *ListModel[T]) SetSize(width, height int) {
	m.width, m.height = width, height
	m.input.Width = max(width-4, 10)
}

// Selected returns the item under the cursor.
func (m ListModel[T]) Selected() (T, bool) {
	var zero T
	items := m.result.Page.Items
	i := m.table.Cursor()
	if i < 0 || i >= len(items) {
		return zero, false
	}
	return items[i], true
}

// Result is the current pipeline output.
func (m ListModel[T]) Result() listing.Result[T] { return m.result }

// Settled is the query currently applied.
func (m ListModel[T]) Settled() string { return m.settled }

// Update handles keys, settled queries and spinner ticks.
func (m ListModel[T]) Update(msg tea.Msg) (ListModel[T], tea.Cmd) {
	switch msg := msg.(type) {
	case QuerySettledMsg:
		if msg.ListID != m.opts.ID {
			return m, nil
		}
		if msg.Query != m.settled {
			m.settled = msg.Query
			m.page = 1
			m.recompute()
		}
		return m, m.waitForQuery()

	case spinner.TickMsg:
		if m.items != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateNormal(msg), nil
	}
	return m, nil
}

func (m ListModel[T]) updateSearch(msg tea.KeyMsg) (ListModel[T], tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab":
		m.input.Blur()
		if msg.String() == "enter" {
			m.query.Flush()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.query.Live() {
		m.query.Set(m.input.Value())
	}
	return m, cmd
}

func (m ListModel[T]) updateNormal(msg tea.KeyMsg) ListModel[T] {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.input.Focus()
	case key.Matches(msg, m.keys.Up):
		m.table.MoveUp(1)
	case key.Matches(msg, m.keys.Down):
		m.table.MoveDown(1)
	case key.Matches(msg, m.keys.NextPage):
		m.page++
		m.recompute()
	case key.Matches(msg, m.keys.PrevPage):
		m.page = max(m.page-1, 1)
		m.recompute()
	case key.Matches(msg, m.keys.Bracket):
		m.cycleBracket()
	case key.Matches(msg, m.keys.Window):
		if m.has(FilterDate) {
			m.filters.Window = m.filters.Window.Next()
			m.page = 1
			m.recompute()
		}
	case key.Matches(msg, m.keys.Sort):
		m.toggleSort(int(msg.String()[0] - '1'))
	}
	return m
}

func (m ListModel[T]) has(kind FilterKind) bool {
	for _, k := range m.opts.Cycles {
		if k == kind {
			return true
		}
	}
	return false
}

func (m *ListModel[T]) cycleBracket() {
	switch {
	case m.has(FilterPrice):
		m.filters.Price = m.filters.Price.Next()
	case m.has(FilterAmount):
		m.filters.Amount = m.filters.Amount.Next()
	default:
		return
	}
	m.page = 1
	m.recompute()
}

// toggleSort sorts by the sortable column at position col.
func (m *ListModel[T]) toggleSort(col int) {
	if col < 0 || col >= len(m.opts.Columns) || m.opts.Columns[col].SortKey == "" {
		return
	}
	m.sort = m.sort.Toggle(m.opts.Columns[col].SortKey)
	m.recompute()
}

func (m *ListModel[T]) recompute() {
	var preds []listing.Predicate[T]
	if m.opts.Filters != nil {
		f := m.filters
		if m.opts.Clock != nil {
			f.Now = m.opts.Clock.Now()
		}
		preds = m.opts.Filters(f)
	}

	p := listing.Pipeline[T]{
		Config: m.opts.Config,
		Query: listing.Query[T]{
			Text:     m.settled,
			Filters:  preds,
			Sort:     m.sort,
			Page:     m.page,
			PageSize: m.opts.PageSize,
		},
	}
	m.result = p.Apply(m.items)
	m.page = m.result.Page.Number

	rows := make([]table.Row, 0, len(m.result.Page.Items))
	for _, item := range m.result.Page.Items {
		rows = append(rows, m.row(item))
	}
	m.table.SetRows(rows)
	// An empty table leaves the cursor at -1; move it back onto a row once there is one.
	if n := len(rows); n > 0 {
		m.table.SetCursor(min(max(m.table.Cursor(), 0), n-1))
	}
}

func (m ListModel[T]) row(item T) table.Row {
	row := make(table.Row, len(m.opts.Columns))
	for i, c := range m.opts.Columns {
		text := c.Value(item)
		// Highlighting is skipped when the cell would be truncated.
		if c.Searchable && m.settled != "" && lipgloss.Width(text) <= c.Width {
			text = listing.Highlight(text, m.settled, func(s string) string { return m.theme.Match.Render(s) })
		}
		row[i] = text
	}
	return row
}

// View renders the list.
func (m ListModel[T]) View() string {
	sections := []string{m.renderHeader(), m.input.View()}

	switch {
	case m.result.Loading:
		sections = append(sections, m.spinner.View()+" Loading "+m.opts.Config.Noun+"...")
	case m.result.Empty():
		msg := "No " + m.opts.Config.Noun + " yet."
		if m.result.Total > 0 {
			msg = "No " + m.opts.Config.Noun + " match the current search and filters."
		}
		sections = append(sections, m.theme.StatusPending.Render(msg))
	default:
		sections = append(sections, m.table.View(), m.renderFooter())
	}

	if m.err != nil {
		sections = append(sections, m.theme.StatusError.Render("⚠ "+m.err.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ListModel[T]) renderHeader() string {
	parts := []string{m.theme.Bold.Render(m.opts.Title), m.theme.Subtitle.UnsetMargins().Render(m.result.Summary(m.opts.Config.Noun))}
	if desc := m.filters.Describe(); desc != "" {
		parts = append(parts, m.theme.StatusInfo.Render(desc))
	}
	if m.result.Sort.Key != "" {
		parts = append(parts, m.theme.Subtitle.UnsetMargins().Render(fmt.Sprintf("sort: %s %s", m.result.Sort.Key, m.result.Sort.Direction.Arrow())))
	}
	if m.query.Pending() {
		parts = append(parts, m.theme.StatusPending.Render("…"))
	}
	return strings.Join(parts, "  ")
}

func (m ListModel[T]) renderFooter() string {
	page := m.result.Page
	nav := fmt.Sprintf("page %d/%d", page.Number, page.TotalPages)
	if page.HasPrev() {
		nav = "← " + nav
	}
	if page.HasNext() {
		nav += " →"
	}
	return m.theme.Subtitle.UnsetMargins().Render(nav)
}
