package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/guerinoni/ghn/internal/action"
	"github.com/guerinoni/ghn/internal/github"
	"github.com/guerinoni/ghn/internal/keys"
	"github.com/guerinoni/ghn/internal/state"
	"github.com/guerinoni/ghn/internal/store"
	appsync "github.com/guerinoni/ghn/internal/sync"
	"github.com/guerinoni/ghn/internal/ui"
	"github.com/guerinoni/ghn/internal/ui/command"
	"github.com/guerinoni/ghn/internal/ui/detail"
	helpview "github.com/guerinoni/ghn/internal/ui/help"
	"github.com/guerinoni/ghn/internal/ui/notiflist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
)

// Deps are the long-lived services the UI drives.
type Deps struct {
	Poller        *appsync.Poller
	Dispatcher    *action.Dispatcher
	State         *state.State
	Log           zerolog.Logger
	Authenticated bool

	// Cache backs the unread count in the header. May be nil.
	Cache store.Cache
}

// Model is the root Bubble Tea model that manages view routing and
// layout and forwards user actions to the poller and dispatcher.
type Model struct {
	ctx          context.Context
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	list         notiflist.Model
	detail       detail.Model
	helpView     helpview.Model
	commandView  command.Model
	poller       *appsync.Poller
	dispatcher   *action.Dispatcher
	state        *state.State
	cache        store.Cache
	log          zerolog.Logger
	status       statusLine
	authed       bool
	ready        bool

	// shownUnreadOnly is the filter of the fetch the list was built
	// from, which lags the state flag until the refetch lands.
	shownUnreadOnly bool
	fetchedAt       time.Time

	unreadCount int
	countSeq    uint64
}

// unreadCountMsg carries the cached unread count and the fetch sequence
// it belongs to.
type unreadCountMsg struct {
	seq   uint64
	count int
	err   error
}

// New creates the root model. ctx bounds every background task started
// from the UI.
func New(ctx context.Context, deps Deps) Model {
	k := keys.DefaultKeyMap()
	return Model{
		ctx:         ctx,
		currentView: ViewList,
		keys:        k,
		list:        notiflist.New(k, 80, 24),
		detail:      detail.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		poller:      deps.Poller,
		dispatcher:  deps.Dispatcher,
		state:       deps.State,
		cache:       deps.Cache,
		log:         deps.Log.With().Str("component", "ui").Logger(),
		status:      newStatusLine(statusClearDelay),
		authed:      deps.Authenticated,

		shownUnreadOnly: deps.State.UnreadOnly(),
	}
}

// Init starts the poller.
func (m Model) Init() tea.Cmd {
	return m.poller.Start(m.ctx)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.list.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		return m, nil

	case appsync.FetchResultMsg:
		return m.handleFetchResult(msg)

	case action.Result:
		return m.handleActionResult(msg)

	case unreadCountMsg:
		m.applyUnreadCount(msg)
		return m, nil

	case clearStatusMsg:
		m.status.Clear(msg.gen)
		return m, nil

	case notiflist.SelectedMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetNotification(msg.Notification)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		return m, m.dispatch(msg.Kind, msg.ThreadID)

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg)
		return m, cmd

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that are not owned by the active view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.poller.Stop()
		return m, tea.Quit, true
	}

	// Text inputs own every key while focused.
	if m.currentView == ViewCommand || (m.currentView == ViewList && m.list.Searching()) {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Refresh):
		m.poller.Refresh()
		return m, nil, true

	case key.Matches(msg, m.keys.ToggleFilter):
		cmd := m.toggleFilter()
		return m, cmd, true
	}

	if m.currentView == ViewHelp && key.Matches(msg, m.keys.Back) {
		m.currentView = m.previousView
		return m, nil, true
	}

	if m.currentView != ViewList {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.poller.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Open):
		return m, m.dispatchSelected(action.KindOpen), true

	case key.Matches(msg, m.keys.MarkRead):
		return m, m.dispatchSelected(action.KindRead), true

	case key.Matches(msg, m.keys.MarkDone):
		return m, m.dispatchSelected(action.KindDone), true
	}

	return m, nil, false
}

func (m Model) handleFetchResult(msg appsync.FetchResultMsg) (tea.Model, tea.Cmd) {
	waitCmd := m.poller.WaitForNextResult()

	if msg.Err != nil {
		text := "fetch failed: " + msg.Err.Error()
		if msg.AuthError {
			text = "GitHub rejected the token: run 'ghn auth login' or 'gh auth login'"
		}
		statusCmd := m.status.Set(text, true)
		return m, tea.Batch(waitCmd, statusCmd)
	}

	if !msg.Applied {
		return m, waitCmd
	}

	snap := m.state.Snapshot()
	m.shownUnreadOnly = snap.UnreadOnly
	m.fetchedAt = snap.FetchedAt
	listCmd := m.list.SetNotifications(snap.Notifications, snap.UnreadOnly)

	// Keep the detail view in sync with the refreshed thread.
	if current, ok := m.detail.Notification(); ok {
		for _, n := range snap.Notifications {
			if n.ID == current.ID {
				m.detail.SetNotification(n)
				break
			}
		}
	}

	return m, tea.Batch(waitCmd, listCmd, m.loadUnreadCount())
}

// loadUnreadCount reads the unread count of the cached list off the
// update loop.
func (m Model) loadUnreadCount() tea.Cmd {
	if m.cache == nil {
		return nil
	}
	ctx, cache := m.ctx, m.cache
	return func() tea.Msg {
		seq, err := cache.Seq(ctx)
		if err != nil {
			return unreadCountMsg{err: err}
		}
		count, err := cache.CountUnread(ctx)
		return unreadCountMsg{seq: seq, count: count, err: err}
	}
}

// applyUnreadCount keeps the count of the newest cached fetch.
func (m *Model) applyUnreadCount(msg unreadCountMsg) {
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("counting unread notifications")
		return
	}
	if msg.seq < m.countSeq {
		return
	}
	m.countSeq = msg.seq
	m.unreadCount = msg.count
}

func (m Model) handleActionResult(res action.Result) (tea.Model, tea.Cmd) {
	if res.Err != nil {
		text := fmt.Sprintf("%s failed: %v", res.Kind, res.Err)
		if github.IsAuthError(res.Err) {
			text = fmt.Sprintf("%s failed: GitHub rejected the token", res.Kind)
		}
		cmd := m.status.Set(text, true)
		return m, cmd
	}

	var text string
	switch res.Kind {
	case action.KindRead:
		text = fmt.Sprintf("marked %s as read", res.ThreadID)
		m.poller.Refresh()
	case action.KindDone:
		text = fmt.Sprintf("marked %s as done", res.ThreadID)
		m.poller.Refresh()
	case action.KindOpen:
		text = "opened " + res.URL
	}
	cmd := m.status.Set(text, false)
	return m, cmd
}

// dispatchSelected runs kind on the notification under the cursor.
func (m Model) dispatchSelected(kind action.Kind) tea.Cmd {
	n, ok := m.list.SelectedNotification()
	if !ok {
		return nil
	}
	return m.dispatch(kind, n.ID)
}

func (m Model) dispatch(kind action.Kind, ref string) tea.Cmd {
	m.log.Debug().Stringer("action", kind).Str("ref", ref).Msg("dispatching")
	return m.dispatcher.Dispatch(m.ctx, kind, ref)
}

func (m *Model) toggleFilter() tea.Cmd {
	unreadOnly := !m.state.UnreadOnly()
	m.poller.ApplyFilter(unreadOnly)
	if unreadOnly {
		return m.status.Set("showing unread notifications", false)
	}
	return m.status.Set("showing all notifications", false)
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	switch cmd.Name {
	case "refresh":
		m.poller.Refresh()
		return nil
	case "all":
		if m.state.UnreadOnly() {
			return m.toggleFilter()
		}
		return nil
	case "unread":
		if !m.state.UnreadOnly() {
			return m.toggleFilter()
		}
		return nil
	case "open", "read", "done":
		kind := map[string]action.Kind{
			"open": action.KindOpen,
			"read": action.KindRead,
			"done": action.KindDone,
		}[cmd.Name]
		ref := cmd.Arg
		if ref == "" {
			return m.dispatchSelected(kind)
		}
		if kind != action.KindOpen {
			n, err := m.dispatcher.Resolve(m.ctx, ref)
			if err != nil {
				return m.status.Set(err.Error(), true)
			}
			ref = n.ID
		}
		return m.dispatch(kind, ref)
	case "quit":
		m.poller.Stop()
		return tea.Quit
	default:
		return m.status.Set(fmt.Sprintf("unknown command %q", cmd.Name), true)
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(ui.Header{
		Title:      "GitHub Notifications",
		Unread:     m.unreadCount,
		UnreadOnly: m.shownUnreadOnly,
		Sync:       m.syncStatus(),
	})
	content := m.renderContent()
	text, isErr := m.statusText()
	statusBar := m.layout.RenderStatusBar(text, isErr)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.list.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// syncStatus describes the fetch state for the header.
func (m Model) syncStatus() string {
	st := m.poller.Status()
	switch {
	case st.State == appsync.SyncFetching:
		return "fetching…"
	case st.State == appsync.SyncError:
		if at := m.state.LastErrorAt(); !at.IsZero() {
			return "⚠ fetch failed " + humanize.Time(at)
		}
		return "⚠ fetch failed"
	case !m.authed:
		return "no token"
	case m.fetchedAt.IsZero():
		return ""
	default:
		return "updated " + humanize.Time(m.fetchedAt)
	}
}

// statusText returns the transient status message or the key hints, and
// whether the message reports a failure.
func (m Model) statusText() (string, bool) {
	if text := m.status.Text(); text != "" {
		return text, m.status.IsErr()
	}
	return m.keyHints(), false
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "o open | m read | d done | esc back | j/k scroll"
	default:
		if q := m.list.Query(); q != "" {
			return fmt.Sprintf("search %q | / then esc to clear", q)
		}
		return "q quit | ? help | o open | m read | d done | a unread/all | r refresh"
	}
}
