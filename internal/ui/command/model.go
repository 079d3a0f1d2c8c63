package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/guerinoni/ghn/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Arg  string
}

// CancelMsg is emitted when the palette is dismissed with esc.
type CancelMsg struct{}

// Command describes a palette entry.
type Command struct {
	Name    string
	Aliases []string
	Usage   string
}

// Commands lists every command the palette understands.
var Commands = []Command{
	{Name: "refresh", Aliases: []string{"sync", "r"}, Usage: "fetch notifications now"},
	{Name: "all", Usage: "show read and unread notifications"},
	{Name: "unread", Usage: "show unread notifications only"},
	{Name: "open", Usage: "open <id|#N> in the browser"},
	{Name: "read", Usage: "mark <id|#N> as read"},
	{Name: "done", Usage: "mark <id|#N> as done"},
	{Name: "quit", Aliases: []string{"q"}, Usage: "exit ghn"},
}

// Parse splits input into a canonical command name and its argument.
// Unknown names are returned unchanged.
func Parse(input string) CommandMsg {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	for _, c := range Commands {
		if c.Name == name {
			break
		}
		for _, alias := range c.Aliases {
			if alias == name {
				name = c.Name
				break
			}
		}
	}
	return CommandMsg{Name: name, Arg: strings.TrimSpace(arg)}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(commandNames())
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

func commandNames() []string {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name)
	}
	return names
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			input := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if input != "" {
				parsed := Parse(input)
				return m, func() tea.Msg {
					return parsed
				}
			}
			return m, nil

		case "esc":
			m.input.Reset()
			return m, func() tea.Msg {
				return CancelMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	var usage []string
	for _, c := range Commands {
		usage = append(usage, theme.HelpStyle.Render(
			lipgloss.NewStyle().Width(10).Render(c.Name)+c.Usage,
		))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		input,
		"",
		lipgloss.JoinVertical(lipgloss.Left, usage...),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
