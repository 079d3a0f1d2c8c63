package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/guerinoni/ghn/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// Header is what the top bar shows about the displayed list.
type Header struct {
	Title string

	// Unread is shown as a badge after the title when positive.
	Unread int

	// UnreadOnly is the filter the displayed list was fetched with.
	UnreadOnly bool

	// Sync describes the poller, e.g. "updated 2 minutes ago".
	Sync string
}

// filterLabel names the filter shown in the header.
func filterLabel(unreadOnly bool) string {
	if unreadOnly {
		return "unread"
	}
	return "all"
}

// RenderHeader renders the top bar: title and unread badge on the left,
// filter and sync state on the right.
func (l Layout) RenderHeader(h Header) string {
	title := h.Title
	if h.Unread > 0 {
		title = fmt.Sprintf("%s [%d unread]", title, h.Unread)
	}
	titleRendered := theme.HeaderStyle.Render(title)

	right := filterLabel(h.UnreadOnly)
	if h.Sync != "" {
		right += " · " + h.Sync
	}
	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(right)

	return l.fill(theme.HeaderStyle, titleRendered, statusRendered)
}

// RenderStatusBar renders the bottom bar. isErr marks text as a failure
// report rather than a hint or confirmation.
func (l Layout) RenderStatusBar(text string, isErr bool) string {
	var rendered string
	if isErr {
		rendered = theme.StatusBarStyle.Render(theme.ErrorStyle.Render("✗ " + text))
	} else {
		rendered = theme.StatusBarStyle.Render(text)
	}
	return l.fill(theme.StatusBarStyle, rendered, "")
}

// fill pads the space between left and right with style's background so
// the bar spans the full width.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
