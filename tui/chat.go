// chat.go is the terminal chat frontend.
//
// One viewport holds the transcript, one input line takes questions.
// Each question runs a full pipeline turn in a goroutine; progress and
// the final reply come back as Bubble Tea messages.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DachengChen/paiChat/session"
	"github.com/DachengChen/paiChat/workflow"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type transcriptEntry struct {
	role string // "user" or "assistant" or "system"
	text string
}

// ChatModel is the single-view chat UI.
type ChatModel struct {
	sessions  *session.Manager
	sessionID string
	provider  string // provider name for the header

	viewport   *Viewport
	input      string
	transcript []transcriptEntry
	loading    bool
	stage      workflow.Stage
	events     chan tea.Msg

	width  int
	height int
}

// NewChatModel builds the chat UI around a session manager.
func NewChatModel(sessions *session.Manager, providerName string) *ChatModel {
	return &ChatModel{
		sessions:  sessions,
		sessionID: fmt.Sprintf("tui-%d", time.Now().UnixNano()),
		provider:  providerName,
		viewport:  NewViewport(80, 20),
		events:    make(chan tea.Msg, 8),
	}
}

func (m *ChatModel) Init() tea.Cmd {
	m.viewport.SetContentLines(m.renderTranscript())
	return nil
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetSize(msg.Width-2, msg.Height-5)
		m.viewport.SetContentLines(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StageMsg:
		m.stage = msg.Stage
		// Terminal stages end the event stream; re-arming here would
		// leave a reader blocked until the next turn.
		if msg.Stage == workflow.StageDone || msg.Stage == workflow.StageFailed {
			return m, nil
		}
		return m, m.waitForEvent()

	case ReplyMsg:
		m.loading = false
		m.stage = ""
		m.appendReply(msg.Reply)
		m.viewport.SetContentLines(m.renderTranscript())
		m.viewport.End()
		return m, nil
	}

	return m, nil
}

func (m *ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		if m.loading {
			return m, nil
		}
		return m, m.send()
	case "ctrl+l":
		m.transcript = nil
		m.sessions.Reset(m.sessionID)
		m.viewport.SetContentLines(m.renderTranscript())
		return m, nil
	case "up", "ctrl+k":
		m.viewport.ScrollUp(1)
	case "down", "ctrl+j":
		m.viewport.ScrollDown(1)
	case "pgup":
		m.viewport.PageUp()
	case "pgdown":
		m.viewport.PageDown()
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.input += " "
		}
	}
	return m, nil
}

// send launches one pipeline turn and starts listening for its events.
func (m *ChatModel) send() tea.Cmd {
	text := strings.TrimSpace(m.input)
	if text == "" {
		return nil
	}

	m.transcript = append(m.transcript, transcriptEntry{role: "user", text: text})
	m.input = ""
	m.loading = true
	m.viewport.SetContentLines(m.renderTranscript())
	m.viewport.End()

	sessions, id, events := m.sessions, m.sessionID, m.events
	run := func() tea.Msg {
		reply := sessions.HandleMessageWithProgress(context.Background(), id, text,
			func(stage workflow.Stage) {
				events <- StageMsg{Stage: stage}
			})
		return ReplyMsg{Reply: reply}
	}
	return tea.Batch(run, m.waitForEvent())
}

// waitForEvent relays one progress event from the pipeline goroutine.
func (m *ChatModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *ChatModel) appendReply(reply *session.Reply) {
	for _, msg := range reply.Messages {
		role := "assistant"
		if reply.Turn.Failed() {
			role = "system"
		}
		text := msg.Text
		if msg.ImagePNG != nil {
			if path, err := saveChart(msg.ImagePNG); err == nil {
				text += "\nChart saved to " + path
			} else {
				text += "\n(chart could not be saved: " + err.Error() + ")"
			}
		}
		m.transcript = append(m.transcript, transcriptEntry{role: role, text: text})
	}
	if sql := reply.Turn.SQL; sql != "" && !reply.Turn.Failed() {
		m.transcript = append(m.transcript, transcriptEntry{role: "system", text: "SQL: " + sql})
	}
}

// saveChart writes the PNG to a temp file so the path can be shown.
func saveChart(png []byte) (string, error) {
	name := fmt.Sprintf("paichat-%d.png", time.Now().UnixNano())
	path := filepath.Join(os.TempDir(), name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (m *ChatModel) renderTranscript() []string {
	lines := []string{
		StyleTitle.Render("paiChat") + " " + StyleDimmed.Render("("+m.provider+")"),
		"",
	}
	if len(m.transcript) == 0 {
		lines = append(lines,
			"Ask a question about your data in plain language.",
			"",
			StyleDimmed.Render("Enter to send, Ctrl+L to clear the conversation, Esc to quit."),
		)
	}

	for _, e := range m.transcript {
		switch e.role {
		case "user":
			lines = append(lines, StyleUser.Render("You: ")+e.text, "")
		case "assistant":
			lines = append(lines, StyleAssistant.Render("AI:"))
			for _, l := range strings.Split(e.text, "\n") {
				lines = append(lines, "  "+l)
			}
			lines = append(lines, "")
		case "system":
			for _, l := range strings.Split(e.text, "\n") {
				lines = append(lines, StyleDimmed.Render("  "+l))
			}
			lines = append(lines, "")
		}
	}

	if m.loading {
		lines = append(lines, StyleDimmed.Render("  ⏳ "+m.stageLabel()))
	}
	return lines
}

func (m *ChatModel) stageLabel() string {
	switch m.stage {
	case workflow.StageGenerate:
		return "writing SQL..."
	case workflow.StageExecute:
		return "querying the warehouse..."
	case workflow.StageInterpret:
		return "interpreting results..."
	case workflow.StageVisualize:
		return "rendering chart..."
	default:
		return "thinking..."
	}
}

func (m *ChatModel) View() string {
	prompt := StylePrompt.Render("Ask> ") + m.input + "█"
	if m.loading {
		prompt = StylePrompt.Render("Ask> ") + StyleDimmed.Render("waiting for response...")
	}

	status := StyleStatusBar.Render("Enter send · Ctrl+L clear · ↑/↓ scroll · Esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.Render(), "", prompt, status)
}
