package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusClearDelay is how long a transient status line stays visible.
const statusClearDelay = 5 * time.Second

// clearStatusMsg clears the status line if it still shows message gen.
type clearStatusMsg struct {
	gen int
}

// statusLine is a transient one-line message shown in place of the key
// hints. A newer message replaces an older one; each clears itself after
// statusClearDelay unless replaced first.
type statusLine struct {
	text  string
	isErr bool
	gen   int
	delay time.Duration
}

func newStatusLine(delay time.Duration) statusLine {
	return statusLine{delay: delay}
}

// Set shows text and returns the command that will clear it.
func (s *statusLine) Set(text string, isErr bool) tea.Cmd {
	s.gen++
	s.text = text
	s.isErr = isErr
	gen := s.gen
	return tea.Tick(s.delay, func(time.Time) tea.Msg {
		return clearStatusMsg{gen: gen}
	})
}

// Clear removes the message if gen is still the latest.
func (s *statusLine) Clear(gen int) {
	if gen == s.gen {
		s.text = ""
		s.isErr = false
	}
}

func (s statusLine) Text() string { return s.text }
func (s statusLine) IsErr() bool  { return s.isErr }
