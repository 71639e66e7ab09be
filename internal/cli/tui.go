package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gitstat/pkg/search"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	inputPromptStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// =============================================================================
// SearchModel - Interactive account search
// =============================================================================

// changeMsg reports that the search controller published a new snapshot.
type changeMsg struct{}

// SearchModel is the bubbletea model for the interactive search. Edits are
// forwarded to the controller, which owns debouncing and request ordering;
// the model only renders its snapshots.
type SearchModel struct {
	ctrl   *search.Controller
	input  []rune
	snap   search.Snapshot
	Cursor int

	// Selected is the login picked with enter, empty if the user quit.
	Selected string
}

// NewSearchModel creates a search model bound to ctrl.
func NewSearchModel(ctrl *search.Controller) SearchModel {
	return SearchModel{ctrl: ctrl, snap: ctrl.Snapshot()}
}

// waitForChange blocks until the controller signals or closes.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changeMsg{}
	}
}

func (m SearchModel) Init() tea.Cmd {
	return waitForChange(m.ctrl.Changes())
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changeMsg:
		m.sync()
		return m, waitForChange(m.ctrl.Changes())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.Cursor < len(m.snap.Results) {
				m.Selected = m.snap.Results[m.Cursor].Login
				return m, tea.Quit
			}
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
			}
		case tea.KeyDown:
			if m.Cursor < len(m.snap.Results)-1 {
				m.Cursor++
			}
		case tea.KeyCtrlR:
			if m.ctrl.Retry() {
				m.sync()
			}
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.edit(m.input[:len(m.input)-1])
			}
		case tea.KeyCtrlU:
			m.edit(nil)
		case tea.KeySpace:
			m.edit(append(m.input, ' '))
		case tea.KeyRunes:
			m.edit(append(m.input, msg.Runes...))
		}
	}
	return m, nil
}

func (m *SearchModel) edit(text []rune) {
	m.input = append([]rune(nil), text...)
	m.ctrl.SetText(string(m.input))
	m.Cursor = 0
	m.sync()
}

func (m *SearchModel) sync() {
	m.snap = m.ctrl.Snapshot()
	if m.Cursor >= len(m.snap.Results) {
		m.Cursor = max(len(m.snap.Results)-1, 0)
	}
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Search GitHub users"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to search  ↑/↓ navigate  ⏎ open profile  ctrl+r retry  esc quit"))
	b.WriteString("\n\n")

	b.WriteString(inputPromptStyle.Render(iconInfo+" ") + StyleValue.Render(string(m.input)) + listDimStyle.Render("▏"))
	b.WriteString("\n\n")

	switch m.snap.State {
	case search.Idle:
		b.WriteString(listDimStyle.Render("  Start typing a login"))
		b.WriteString("\n")
	case search.Scheduled, search.InFlight:
		b.WriteString(listDimStyle.Render("  Searching..."))
		b.WriteString("\n")
	case search.Failed:
		b.WriteString(styleIconError.Render(iconError) + " " + StyleError.Render(m.snap.Message))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("  press ctrl+r to retry"))
		b.WriteString("\n")
	case search.Aborted:
		b.WriteString(listDimStyle.Render("  Search cancelled, press ctrl+r to retry"))
		b.WriteString("\n")
	case search.Resolved:
		if len(m.snap.Results) == 0 {
			b.WriteString(listDimStyle.Render("  No users found"))
			b.WriteString("\n")
		}
	}

	// Results from the last resolved search stay visible while the next one runs.
	for i, p := range m.snap.Results {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		line := cursor + style.Render(p.Login)
		if p.Name != "" {
			line += " " + listDimStyle.Render(p.Name)
		}
		if p.ProfileURL != "" {
			line += "  " + listDimStyle.Render(p.ProfileURL)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if n := len(m.snap.Results); n > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, n)))
	}

	return b.String()
}
