package notiflist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/guerinoni/ghn/internal/keys"
	"github.com/guerinoni/ghn/internal/model"
	"github.com/guerinoni/ghn/internal/theme"
)

// SelectedMsg is sent when the user selects a notification to view details.
type SelectedMsg struct {
	Notification model.Notification
}

// Model is the notification list view component. It renders whatever list
// the root model hands it; it never fetches on its own.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	all         []model.Notification
	query       string
	unreadOnly  bool
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new notification list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search repository or title..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		unreadOnly:  true,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetNotifications replaces the displayed list, keeping the cursor on the
// same thread when it is still present.
func (m *Model) SetNotifications(notifications []model.Notification, unreadOnly bool) tea.Cmd {
	m.all = notifications
	m.unreadOnly = unreadOnly
	return m.rebuild()
}

// SelectedNotification returns the notification under the cursor.
func (m Model) SelectedNotification() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Query returns the active search query.
func (m Model) Query() string {
	return m.query
}

func (m *Model) rebuild() tea.Cmd {
	selectedID := ""
	if n, ok := m.SelectedNotification(); ok {
		selectedID = n.ID
	}

	q := strings.ToLower(m.query)
	items := make([]list.Item, 0, len(m.all))
	cursor := 0
	for i, n := range m.all {
		if q != "" && !strings.Contains(strings.ToLower(Item{Notification: n}.FilterValue()), q) {
			continue
		}
		if n.ID == selectedID {
			cursor = len(items)
		}
		items = append(items, Item{Notification: n, Index: i + 1})
	}

	cmd := m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		return m, m.rebuild()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.rebuild()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		n, ok := m.SelectedNotification()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedMsg{Notification: n}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when there is nothing to display.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != "" {
		return style.Render("No matching notifications.\nPress / then esc to clear the search.")
	}
	if m.unreadOnly {
		return style.Render("Inbox zero.\n\nPress a to include read notifications.")
	}
	return style.Render("No notifications.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
