// Package session bridges the chat frontend and the pipeline.
//
// One external chat turn maps to one pipeline invocation. Sessions are
// keyed by an opaque identifier supplied by the frontend and hold only
// a bounded log of prior (question, answer) pairs, used as follow-up
// context. Sessions expire after a period of inactivity.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DachengChen/paiChat/workflow"
	gocache "github.com/patrickmn/go-cache"
)

const (
	// MaxHistoryTurns bounds per-session memory.
	MaxHistoryTurns = 20

	// DefaultTTL evicts sessions idle for this long.
	DefaultTTL = 2 * time.Hour
)

// Message is one renderable transcript entry returned to the frontend.
type Message struct {
	Text     string
	ImagePNG []byte // optional chart artifact
}

// Reply is everything the frontend gets back for one turn.
type Reply struct {
	Messages []Message
	Turn     *workflow.Turn // full pipeline state, for transparency (SQL, skip reason, ...)
}

// state is the per-session memory.
type state struct {
	mu      sync.Mutex
	history []workflow.Exchange
}

// Manager owns the session store and runs turns against the pipeline.
type Manager struct {
	pipeline *workflow.Pipeline
	sessions *gocache.Cache
	log      *slog.Logger

	// mu serializes get-or-create so two concurrent first requests for
	// the same session ID share one state.
	mu sync.Mutex
}

// NewManager creates a session manager around a pipeline.
func NewManager(p *workflow.Pipeline, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		pipeline: p,
		sessions: gocache.New(DefaultTTL, 10*time.Minute),
		log:      logger,
	}
}

// HandleMessage runs one pipeline invocation for a user message and
// renders the final state into transcript messages. Sessions are
// isolated; only the session's own history is locked.
func (m *Manager) HandleMessage(ctx context.Context, sessionID, text string) *Reply {
	return m.HandleMessageWithProgress(ctx, sessionID, text, nil)
}

// HandleMessageWithProgress is HandleMessage with a stage observer.
func (m *Manager) HandleMessageWithProgress(ctx context.Context, sessionID, text string, onProgress workflow.ProgressFunc) *Reply {
	s := m.session(sessionID)

	s.mu.Lock()
	history := make([]workflow.Exchange, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	m.log.Info("session: turn started", "session", sessionID, "question", text)
	turn := m.pipeline.RunWithProgress(ctx, text, history, onProgress)

	reply := &Reply{Turn: turn, Messages: Render(turn)}

	// Only successful turns are worth remembering as context.
	if !turn.Failed() {
		s.mu.Lock()
		s.history = append(s.history, workflow.Exchange{Question: turn.Question, Answer: turn.Answer})
		if len(s.history) > MaxHistoryTurns {
			s.history = s.history[len(s.history)-MaxHistoryTurns:]
		}
		s.mu.Unlock()
	}

	// Touch the TTL.
	m.sessions.Set(sessionID, s, gocache.DefaultExpiration)

	m.log.Info("session: turn finished", "session", sessionID, "failed", turn.Failed())
	return reply
}

// History returns a copy of the session's memory.
func (m *Manager) History(sessionID string) []workflow.Exchange {
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]workflow.Exchange, len(s.history))
	copy(out, s.history)
	return out
}

// Reset drops a session's memory.
func (m *Manager) Reset(sessionID string) {
	m.sessions.Delete(sessionID)
}

func (m *Manager) session(id string) *state {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.sessions.Get(id); ok {
		return v.(*state)
	}
	s := &state{}
	m.sessions.Set(id, s, gocache.DefaultExpiration)
	return s
}

// Render turns a completed pipeline turn into transcript messages:
// answer first, then the explanation, then the chart when one exists.
func Render(t *workflow.Turn) []Message {
	if t.Failed() {
		return []Message{{Text: workflow.UserMessage(t.Err)}}
	}

	msgs := []Message{{Text: t.Answer}}
	if t.Explanation != "" {
		msgs = append(msgs, Message{Text: "How this was computed: " + t.Explanation})
	}
	if t.Chart != nil {
		msgs = append(msgs, Message{Text: "Data visualization:", ImagePNG: t.Chart.PNG})
	}
	return msgs
}
