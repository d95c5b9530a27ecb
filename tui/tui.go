package tui

import (
	"github.com/DachengChen/paiChat/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Start launches the chat TUI around a session manager.
func Start(sessions *session.Manager, providerName string) error {
	model := NewChatModel(sessions, providerName)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
