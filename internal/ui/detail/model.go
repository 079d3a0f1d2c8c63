package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/guerinoni/ghn/internal/action"
	"github.com/guerinoni/ghn/internal/keys"
	"github.com/guerinoni/ghn/internal/model"
	"github.com/guerinoni/ghn/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// ActionMsg asks the parent to run an action on the displayed thread.
type ActionMsg struct {
	Kind     action.Kind
	ThreadID string
}

// Model is the notification detail view component.
type Model struct {
	notification *model.Notification
	viewport     viewport.Model
	keys         *keys.KeyMap
	width        int
	height       int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Open):
			return m, m.actionCmd(action.KindOpen)

		case key.Matches(msg, m.keys.MarkRead):
			return m, m.actionCmd(action.KindRead)

		case key.Matches(msg, m.keys.MarkDone):
			return m, m.actionCmd(action.KindDone)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) actionCmd(kind action.Kind) tea.Cmd {
	if m.notification == nil {
		return nil
	}
	id := m.notification.ID
	return func() tea.Msg {
		return ActionMsg{Kind: kind, ThreadID: id}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.notification == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No notification selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.notification == nil {
		return ""
	}

	n := m.notification
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(n.Subject.Title))

	state := "read"
	if n.Unread {
		state = "unread"
	}
	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.SubjectTypeStyle(n.Subject.Type).Render(n.Subject.Type),
		"  ",
		theme.ReasonStyle(n.Reason).Render(n.Reason),
		"  ",
		theme.MutedStyle.Render(state),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		if value == "" {
			return
		}
		sections = append(sections, fmt.Sprintf(
			"%s %s",
			metaStyle.Render(fmt.Sprintf("%-12s", label+":")),
			valStyle.Render(value),
		))
	}

	row("Repository", n.Repository.FullName)
	row("Thread", n.ID)
	if !n.UpdatedAt.IsZero() {
		row("Updated", fmt.Sprintf(
			"%s (%s)",
			n.UpdatedAt.Local().Format("2006-01-02 15:04"),
			humanize.Time(n.UpdatedAt),
		))
	}
	row("Web", n.WebURL())
	row("Subject API", n.Subject.URL)
	row("Comment API", n.Subject.LatestCommentURL)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(0, min(m.width-4, 80))))
	sections = append(sections, "", separator, "")

	sections = append(sections, theme.HelpStyle.Render(
		"o open in browser · m mark read · d mark done · esc back",
	))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetNotification updates the displayed notification and re-renders.
func (m *Model) SetNotification(n model.Notification) {
	m.notification = &n
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Notification returns the displayed notification, if any.
func (m Model) Notification() (model.Notification, bool) {
	if m.notification == nil {
		return model.Notification{}, false
	}
	return *m.notification, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.notification != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
