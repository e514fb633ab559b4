package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/ui/components"
	"github.com/yourusername/mlearn/internal/ui/layout"
	"github.com/yourusername/mlearn/internal/ui/theme"
	"github.com/yourusername/mlearn/internal/usecase"
)

// copyFunc writes text to the system clipboard. Swapped in tests.
type copyFunc func(text string) error

// clipboardMsg reports the outcome of a copy.
type clipboardMsg struct{ err error }

// ResultViewModel shows a learned microagent.
type ResultViewModel struct {
	result   *usecase.LearnResponse
	viewport viewport.Model
	keys     appKeyMap
	style    string
	copy     copyFunc
	status   string
	failed   bool
	width    int
	height   int
}

// NewResultViewModel creates a result view. glamourStyle is a glamour
// standard style name such as "dark" or "notty".
func NewResultViewModel(result *usecase.LearnResponse, glamourStyle string, width, height int) ResultViewModel {
	if glamourStyle == "" {
		glamourStyle = styles.DarkStyle
	}
	m := ResultViewModel{
		result:   result,
		viewport: viewport.New(width, layout.CalculateContentHeight(height)),
		keys:     newAppKeyMap(),
		style:    glamourStyle,
		copy:     clipboard.WriteAll,
	}
	m.SetSize(width, height)
	return m
}

// SetSize resizes the viewport and re-renders the content for the new width.
func (m *ResultViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(layout.CalculateContentHeight(height)-6, 3)
	m.viewport.SetContent(m.renderBody())
}

func (m ResultViewModel) renderBody() string {
	if m.result == nil || m.result.Microagent == nil {
		return ""
	}
	content := m.result.Microagent.Content()

	wrap := max(m.width-4, 20)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(wrap),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// Update handles scrolling and copying.
func (m ResultViewModel) Update(msg tea.Msg) (ResultViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case clipboardMsg:
		m.failed = msg.err != nil
		if m.failed {
			m.status = "Copy failed: " + msg.err.Error()
		} else {
			m.status = "Copied microagent to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Copy) {
			return m, m.copyMarkdown()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ResultViewModel) copyMarkdown() tea.Cmd {
	if m.result == nil || m.result.Microagent == nil {
		return nil
	}
	text := m.result.Microagent.Markdown()
	write := m.copy
	return func() tea.Msg {
		return clipboardMsg{err: write(text)}
	}
}

// View renders the microagent summary and its rendered body.
func (m ResultViewModel) View() string {
	if m.result == nil || m.result.Microagent == nil {
		return components.NewWarningBanner("Nothing was learned.").WithWidth(m.width).Render()
	}
	st := theme.Current()
	agent := m.result.Microagent

	triggers := strings.Join(agent.Triggers(), ", ")
	card := components.NewInfoCard(agent.Name(), []components.InfoItem{
		{Label: "Type", Value: string(agent.Kind())},
		{Label: "Triggers", Value: triggers},
		{Label: "Saved to", Value: components.TruncateMiddle(m.result.Path, max(m.width-20, 20))},
		{Label: "Model", Value: fmt.Sprintf("%s (%d tokens)", m.result.Model, m.result.TokensUsed)},
	})
	card.Width = m.width

	parts := []string{card.Render(), m.viewport.View()}
	switch {
	case m.failed:
		parts = append(parts, st.StatusError.Render(m.status))
	case m.status != "":
		parts = append(parts, st.StatusOk.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
