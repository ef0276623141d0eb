package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/session"
	"github.com/mahmoud-slama/creditapp/internal/tui/components"
	"github.com/mahmoud-slama/creditapp/internal/tui/themes"
)

// tab is one page of the console.
type tab int

const (
	tabDashboard tab = iota
	tabClients
	tabProducts
	tabTransactions
	tabHistory
)

func (t tab) String() string {
	switch t {
	case tabClients:
		return "clients"
	case tabProducts:
		return "products"
	case tabTransactions:
		return "transactions"
	case tabHistory:
		return "history"
	default:
		return "dashboard"
	}
}

// tabsFor lists the tabs a role can open. Client and transaction management is admin only.
func tabsFor(s session.Session) []tab {
	if s.IsAdmin() {
		return []tab{tabDashboard, tabClients, tabProducts, tabTransactions, tabHistory}
	}
	return []tab{tabDashboard, tabProducts, tabHistory}
}

type toast struct {
	text string
	kind toastKind
	id   int
}

// Model holds the main TUI state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	toast        *toast
	theme        themes.Theme
	config       Config
	keymap       KeyMap
	session      session.Session
	help         help.Model
	login        components.LoginModel
	dashboard    components.DashboardModel
	clients      components.ListModel[model.Client]
	products     components.ListModel[model.Product]
	transactions components.ListModel[model.Purchase]
	history      components.ListModel[model.Purchase]
	tabs         []tab
	active       int
	toastSeq     int
	width        int
	height       int
	loggedIn     bool
	quitting     bool
}

// newModel creates the model. The context is canceled when the program quits,
// which stops every fetch still in flight.
func newModel(ctx context.Context, cfg Config) Model {
	ctx, cancel := context.WithCancel(ctx)
	m := Model{
		ctx:       ctx,
		cancel:    cancel,
		config:    cfg,
		theme:     cfg.Theme,
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		login:     components.NewLogin(cfg.Theme),
		dashboard: components.NewDashboard(cfg.Theme),
		width:     cfg.Width,
		height:    cfg.Height,
	}
	m.clients = newClientList(cfg)
	m.products = newProductList(cfg)
	m.transactions = newTransactionList(cfg)
	m.history = newHistoryList(cfg)

	if s, ok := cfg.Session.Current(); ok {
		m.startSession(s)
	}
	m.resize()
	return m
}

// Init starts the list listeners and, with a session, the first fetches.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.initLists()}
	if m.loggedIn {
		cmds = append(cmds, m.loadAll())
	} else {
		cmds = append(cmds, m.login.Init())
	}
	return tea.Batch(cmds...)
}

func (m Model) initLists() tea.Cmd {
	return tea.Batch(m.clients.Init(), m.products.Init(), m.transactions.Init(), m.history.Init())
}

func (m *Model) startSession(s session.Session) {
	m.session = s
	m.loggedIn = true
	m.tabs = tabsFor(s)
	m.active = 0
	m.dashboard.SetCredit(s.FirstName, credit.Compute(s.Balance, s.MaxAmount))
}

// loadAll fetches everything the session's tabs show.
func (m Model) loadAll() tea.Cmd {
	cmds := []tea.Cmd{m.loadCreditCmd(m.session.UserID)}
	for _, t := range m.tabs {
		cmds = append(cmds, m.loadTab(t))
	}
	return tea.Batch(cmds...)
}

func (m Model) loadTab(t tab) tea.Cmd {
	switch t {
	case tabClients:
		return revalidateCmd(m.ctx, t, m.config.Clients.Collection)
	case tabProducts:
		return revalidateCmd(m.ctx, t, m.config.Products.Collection)
	case tabTransactions:
		return revalidateCmd(m.ctx, t, m.config.Purchases.All)
	case tabHistory:
		return revalidateCmd(m.ctx, t, m.config.Purchases.ForClient(m.session.UserID))
	default:
		return m.loadCreditCmd(m.session.UserID)
	}
}

func (m Model) activeTab() tab {
	if len(m.tabs) == 0 {
		return tabDashboard
	}
	return m.tabs[m.active]
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.LoginSubmitMsg:
		return m, m.loginCmd(msg.Email, msg.Password)

	case loginResultMsg:
		if msg.err != nil {
			m.login.SetError(errors.New(common.UserMessage(msg.err)))
			return m, nil
		}
		m.startSession(msg.session)
		m.login = components.NewLogin(m.theme)
		m.resize()
		toast := m.showToast("Signed in as "+msg.session.Email, toastSuccess)
		return m, tea.Batch(m.loadAll(), toast)

	case loggedOutMsg:
		m.loggedIn = false
		m.session = session.Session{}
		m.tabs = nil
		m.dashboard = components.NewDashboard(m.theme)
		m.resetLists()
		toast := m.showToast("Signed out", toastInfo)
		return m, tea.Batch(m.login.Init(), m.initLists(), toast)

	case collectionLoadedMsg:
		return m.handleLoaded(msg)

	case creditLoadedMsg:
		if msg.err != nil {
			if cmd := m.handleAuthError(msg.err); cmd != nil {
				return m, cmd
			}
			m.dashboard.SetError(msg.err)
			return m, nil
		}
		m.dashboard.SetCredit(m.session.FirstName, msg.progress)
		return m, nil

	case quantityChangedMsg:
		if msg.err != nil {
			if cmd := m.handleAuthError(msg.err); cmd != nil {
				return m, cmd
			}
			cmd := m.showToast(fmt.Sprintf("Could not update %s: %s", msg.product.Name, common.UserMessage(msg.err)), toastError)
			return m, cmd
		}
		m.syncTab(tabProducts)
		cmd := m.showToast(fmt.Sprintf("%s: %d in stock", msg.product.Name, msg.product.Quantity), toastSuccess)
		return m, cmd

	case toastMsg:
		cmd := m.showToast(msg.text, msg.kind)
		return m, cmd

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case components.QuerySettledMsg, spinner.TickMsg:
		return m.forwardToLists(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return m.quit()
	}
	if !m.loggedIn {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	// A focused search box takes every key.
	if m.searching() {
		return m.updateActiveList(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit()
	case key.Matches(msg, m.keymap.NextTab):
		m.active = (m.active + 1) % len(m.tabs)
		return m, nil
	case key.Matches(msg, m.keymap.PrevTab):
		m.active = (m.active - 1 + len(m.tabs)) % len(m.tabs)
		return m, nil
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	case key.Matches(msg, m.keymap.Refresh):
		t := m.activeTab()
		return m, tea.Batch(m.loadTab(t), toastCmd("Refreshing "+t.String()+"...", toastInfo))
	case key.Matches(msg, m.keymap.Logout):
		return m, m.logoutCmd()
	case m.activeTab() == tabProducts && key.Matches(msg, m.keymap.Increment, m.keymap.Decrement):
		p, ok := m.products.Selected()
		if !ok {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, m.keymap.Decrement) {
			delta = -1
		}
		return m, m.adjustQuantityCmd(p, delta)
	}
	return m.updateActiveList(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.shutdown()
	return m, tea.Quit
}

// shutdown cancels in-flight work and stops the debouncers. It is idempotent.
func (m Model) shutdown() {
	m.cancel()
	m.clients.Stop()
	m.products.Stop()
	m.transactions.Stop()
	m.history.Stop()
}

func (m Model) searching() bool {
	switch m.activeTab() {
	case tabClients:
		return m.clients.Searching()
	case tabProducts:
		return m.products.Searching()
	case tabTransactions:
		return m.transactions.Searching()
	case tabHistory:
		return m.history.Searching()
	}
	return false
}

func (m Model) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab() {
	case tabClients:
		m.clients, cmd = m.clients.Update(msg)
	case tabProducts:
		m.products, cmd = m.products.Update(msg)
	case tabTransactions:
		m.transactions, cmd = m.transactions.Update(msg)
	case tabHistory:
		m.history, cmd = m.history.Update(msg)
	}
	return m, cmd
}

// forwardToLists routes list-addressed messages; each list ignores the ones that are not its own.
func (m Model) forwardToLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 4)
	m.clients, cmds[0] = m.clients.Update(msg)
	m.products, cmds[1] = m.products.Update(msg)
	m.transactions, cmds[2] = m.transactions.Update(msg)
	m.history, cmds[3] = m.history.Update(msg)
	return m, tea.Batch(cmds...)
}

func (m Model) handleLoaded(msg collectionLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if cmd := m.handleAuthError(msg.err); cmd != nil {
			return m, cmd
		}
		m.setListError(msg.tab, msg.err)
		m.syncTab(msg.tab)
		cmd := m.showToast(common.UserMessage(msg.err), toastError)
		return m, cmd
	}
	m.syncTab(msg.tab)
	// Transaction names come from the client list.
	if msg.tab == tabClients {
		m.syncTab(tabTransactions)
	}
	m.refreshSummary()
	return m, nil
}

// handleAuthError sends the user back to the login view when the session is gone.
func (m *Model) handleAuthError(err error) tea.Cmd {
	if !m.loggedIn || !common.IsAuthError(err) {
		return nil
	}
	m.config.Logger.Info("Session ended, returning to login", "error", err)
	toast := m.showToast("Your session has expired. Please sign in again.", toastError)
	return tea.Batch(m.logoutCmd(), toast)
}

// syncTab copies a store's items into its list.
func (m *Model) syncTab(t tab) {
	switch t {
	case tabClients:
		if items, ok := m.config.Clients.Items(); ok {
			m.clients.SetItems(items)
		}
	case tabProducts:
		if items, ok := m.config.Products.Items(); ok {
			m.products.SetItems(items)
		}
	case tabTransactions:
		if items, ok := m.config.Purchases.All.Items(); ok {
			m.transactions.SetItems(items)
		}
	case tabHistory:
		if items, ok := m.config.Purchases.ForClient(m.session.UserID).Items(); ok {
			m.history.SetItems(items)
			m.dashboard.SetRecent(items)
		}
	}
}

func (m *Model) setListError(t tab, err error) {
	switch t {
	case tabClients:
		m.clients.SetError(err)
	case tabProducts:
		m.products.SetError(err)
	case tabTransactions:
		m.transactions.SetError(err)
	case tabHistory:
		m.history.SetError(err)
	}
}

// refreshSummary updates the admin totals once all three collections have loaded.
func (m *Model) refreshSummary() {
	if !m.session.IsAdmin() {
		return
	}
	clients, ok1 := m.config.Clients.Items()
	products, ok2 := m.config.Products.Items()
	purchases, ok3 := m.config.Purchases.All.Items()
	if !ok1 || !ok2 || !ok3 {
		return
	}
	s := credit.Summarize(clients, products, purchases)
	m.dashboard.SetSummary(&s)
}

func (m *Model) resetLists() {
	m.clients.Stop()
	m.products.Stop()
	m.transactions.Stop()
	m.history.Stop()
	m.clients = newClientList(m.config)
	m.products = newProductList(m.config)
	m.transactions = newTransactionList(m.config)
	m.history = newHistoryList(m.config)
	m.resize()
}

// showToast replaces the current toast; the expiry only clears the toast it was scheduled for.
func (m *Model) showToast(text string, kind toastKind) tea.Cmd {
	m.toastSeq++
	m.toast = &toast{id: m.toastSeq, text: text, kind: kind}
	return expireToastCmd(m.toastSeq, m.config.ToastTTL)
}

// resize fits the components into the terminal minus the chrome.
func (m *Model) resize() {
	width := max(m.width-4, 20)
	height := max(m.height-8, 5)
	m.help.Width = width
	m.dashboard.SetWidth(width)
	m.clients.SetSize(width, height)
	m.products.SetSize(width, height)
	m.transactions.SetSize(width, height)
	m.history.SetSize(width, height)
}
