package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/ui/layout"
	"github.com/yourusername/mlearn/internal/ui/theme"
)

// ModalType defines the type of modal
type ModalType int

const (
	ModalInfo ModalType = iota
	ModalError
	ModalForm
)

// ModalButton represents a button in the modal
type ModalButton struct {
	Label    string
	Primary  bool
	Disabled bool
}

// Modal is a reusable modal shell: a title, a body and a row of buttons.
// Callers own the body content and decide which button is focused.
type Modal struct {
	Type    ModalType
	Title   string
	Message string
	Content string // For custom content; takes precedence over Message
	Buttons []ModalButton
	Help    []string
	Width   int
	Height  int

	focusedButton int // -1 when focus is in the body
}

// NewModal creates a new modal with default settings
func NewModal(modalType ModalType, title, message string) *Modal {
	height := layout.ModalHeightLG
	if modalType != ModalForm {
		height = layout.ModalHeightSM
	}

	return &Modal{
		Type:          modalType,
		Title:         title,
		Message:       message,
		Width:         layout.ModalWidthMD,
		Height:        height,
		focusedButton: -1,
	}
}

// NewErrorModal creates an error display modal
func NewErrorModal(message string) *Modal {
	m := NewModal(ModalError, "ERROR", message)
	m.Help = []string{"Press any key to dismiss"}
	return m
}

// FocusButton focuses the button at index i. Any out of range index moves
// focus back to the body.
func (m *Modal) FocusButton(i int) {
	if i < 0 || i >= len(m.Buttons) {
		m.focusedButton = -1
		return
	}
	m.focusedButton = i
}

// FocusedButton returns the focused button, or nil when focus is in the body.
func (m *Modal) FocusedButton() *ModalButton {
	if m.focusedButton < 0 || m.focusedButton >= len(m.Buttons) {
		return nil
	}
	return &m.Buttons[m.focusedButton]
}

// Render renders the modal
func (m *Modal) Render() string {
	styles := theme.Current()

	var content strings.Builder

	titleStyle := styles.ModalTitle
	titleIcon := ""
	switch m.Type {
	case ModalError:
		titleStyle = styles.StatusError
		titleIcon = "✗ "
	case ModalInfo:
		titleStyle = styles.StatusInfo
		titleIcon = "ℹ "
	}
	content.WriteString(titleStyle.Render(titleIcon+m.Title) + "\n\n")

	if m.Content != "" {
		content.WriteString(m.Content)
	} else if m.Message != "" {
		messageStyle := lipgloss.NewStyle().Foreground(styles.ColorText).Width(m.Width - 2*layout.SpacingSM)
		if m.Type == ModalError {
			messageStyle = messageStyle.Foreground(styles.ColorError)
		}
		content.WriteString(messageStyle.Render(m.Message))
	}

	if len(m.Buttons) > 0 {
		content.WriteString("\n\n")
		buttons := make([]string, 0, len(m.Buttons))
		for i, btn := range m.Buttons {
			buttons = append(buttons, renderButton(btn, i == m.focusedButton))
		}
		content.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, buttons...))
	}

	if len(m.Help) > 0 {
		content.WriteString("\n\n")
		content.WriteString(styles.FormHelp.Render(strings.Join(m.Help, " • ")))
	}

	modalStyle := styles.Modal
	if m.Type == ModalError {
		modalStyle = styles.ErrorModal
	}
	return modalStyle.Width(m.Width).Render(content.String())
}

// renderButton renders a single button. Disabled buttons never show focus.
func renderButton(btn ModalButton, focused bool) string {
	styles := theme.Current()

	label := btn.Label
	style := styles.FormButtonInactive
	switch {
	case btn.Disabled:
		style = styles.FormButtonDisabled
	case focused && btn.Primary:
		style = styles.FormButton
		label = "▸ " + label
	case focused:
		style = styles.FormButtonInactive.Foreground(styles.ColorPrimary).Bold(true)
		label = "▸ " + label
	case btn.Primary:
		style = styles.FormButtonInactive.Foreground(styles.ColorPrimary)
	}

	return lipgloss.NewStyle().MarginRight(layout.SpacingSM).Render(style.Render(label))
}

// RenderCentered renders the modal centered on screen
func (m *Modal) RenderCentered(windowWidth, windowHeight int) string {
	modalContent := m.Render()

	x := layout.CenterHorizontal(windowWidth, lipgloss.Width(modalContent))
	y := layout.CenterVertical(windowHeight, lipgloss.Height(modalContent))

	return lipgloss.NewStyle().Padding(y, 0, 0, x).Render(modalContent)
}
