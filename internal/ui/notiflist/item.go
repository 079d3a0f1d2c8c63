package notiflist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/guerinoni/ghn/internal/model"
	"github.com/guerinoni/ghn/internal/theme"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification

	// Index is the one-based position shown to the user and accepted by
	// "ghn open #N".
	Index int
}

// FilterValue returns the string used for filtering.
func (i Item) FilterValue() string {
	return i.Notification.Repository.FullName + " " + i.Notification.Subject.Title
}

// Title returns the subject title for the list.
func (i Item) Title() string { return i.Notification.Subject.Title }

// Description returns a short summary line for the list.
func (i Item) Description() string {
	n := i.Notification
	parts := []string{
		n.Repository.FullName,
		n.Reason,
		relativeTime(n.UpdatedAt),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering notifications.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.Notification
	isSelected := index == m.Index()

	marker := " "
	if n.Unread {
		marker = theme.UnreadMarkerStyle.Render("●")
	}

	typeBadge := theme.SubjectTypeStyle(n.Subject.Type).Render(typeLabel(n.Subject.Type))
	reasonBadge := theme.ReasonStyle(n.Reason).Render(n.Reason)

	repo := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(n.Repository.FullName)

	timeStr := theme.MutedStyle.Render(relativeTime(n.UpdatedAt))

	line := fmt.Sprintf(
		"%3d %s %s %s %s%s  %s",
		it.Index, marker, typeBadge, repo, n.Subject.Title, reasonBadge, timeStr,
	)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// typeLabel returns a short label for a subject type.
func typeLabel(subjectType string) string {
	switch subjectType {
	case model.SubjectTypePullRequest:
		return "PR"
	case "Issue":
		return "IS"
	case "Release":
		return "RL"
	case "Commit":
		return "CM"
	case "Discussion":
		return "DS"
	case "CheckSuite":
		return "CI"
	case "":
		return "??"
	default:
		return strings.ToUpper(subjectType[:min(2, len(subjectType))])
	}
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}
