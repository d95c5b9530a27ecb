package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/DachengChen/paiChat/db"
	"github.com/DachengChen/paiChat/viz"
	"github.com/DachengChen/paiChat/workflow"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	sql string
}

func (s *stubLLM) Complete(ctx context.Context, system, user string) (string, error) {
	switch {
	case strings.Contains(system, "syntactically correct SQL"):
		return s.sql, nil
	case strings.Contains(system, "natural-language answers"):
		return "there is one row", nil
	case strings.Contains(system, "explains how"):
		return "counts rows", nil
	}
	return "", fmt.Errorf("unrecognized system prompt")
}

func (s *stubLLM) Name() string { return "stub" }

type stubQuerier struct{}

func (stubQuerier) Execute(ctx context.Context, sql string) (*db.QueryResult, error) {
	if err := db.CheckReadOnly(sql); err != nil {
		return nil, err
	}
	return &db.QueryResult{
		Columns:  []db.Column{{Name: "total", OID: pgtype.Int8OID, Type: "bigint"}},
		Rows:     [][]any{{int64(1)}},
		RowCount: 1,
	}, nil
}

type stubSchema struct{}

func (stubSchema) Description() string { return "Table t:\n  - total bigint" }

func newTestManager(t *testing.T, llm workflow.LLM) *Manager {
	t.Helper()
	p, err := workflow.New(workflow.Config{
		LLM:     llm,
		Querier: stubQuerier{},
		Schema:  stubSchema{},
	})
	require.NoError(t, err)
	return NewManager(p, nil)
}

func TestHandleMessageRecordsHistory(t *testing.T) {
	m := newTestManager(t, &stubLLM{sql: "SELECT COUNT(*) AS total FROM t"})

	reply := m.HandleMessage(context.Background(), "s1", "how many rows?")

	require.False(t, reply.Turn.Failed())
	assert.Equal(t, "there is one row", reply.Turn.Answer)

	history := m.History("s1")
	require.Len(t, history, 1)
	assert.Equal(t, "how many rows?", history[0].Question)
	assert.Equal(t, "there is one row", history[0].Answer)
}

func TestFailedTurnNotRemembered(t *testing.T) {
	m := newTestManager(t, &stubLLM{sql: "OUT_OF_SCOPE"})

	reply := m.HandleMessage(context.Background(), "s1", "nonsense")

	require.True(t, reply.Turn.Failed())
	require.Len(t, reply.Messages, 1)
	assert.Contains(t, reply.Messages[0].Text, "can't answer")
	assert.Empty(t, m.History("s1"))
}

func TestHistoryIsBounded(t *testing.T) {
	m := newTestManager(t, &stubLLM{sql: "SELECT COUNT(*) AS total FROM t"})

	for i := 0; i < MaxHistoryTurns+5; i++ {
		m.HandleMessage(context.Background(), "s1", fmt.Sprintf("question %d", i))
	}

	history := m.History("s1")
	require.Len(t, history, MaxHistoryTurns)
	assert.Equal(t, "question 5", history[0].Question, "oldest turns are evicted first")
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newTestManager(t, &stubLLM{sql: "SELECT COUNT(*) AS total FROM t"})

	m.HandleMessage(context.Background(), "a", "question for a")
	m.HandleMessage(context.Background(), "b", "question for b")

	require.Len(t, m.History("a"), 1)
	require.Len(t, m.History("b"), 1)
	assert.Equal(t, "question for a", m.History("a")[0].Question)
	assert.Equal(t, "question for b", m.History("b")[0].Question)
}

func TestConcurrentFirstMessagesShareOneSession(t *testing.T) {
	m := newTestManager(t, &stubLLM{sql: "SELECT COUNT(*) AS total FROM t"})

	const turns = 10
	var wg sync.WaitGroup
	wg.Add(turns)
	for i := 0; i < turns; i++ {
		go func(i int) {
			defer wg.Done()
			m.HandleMessage(context.Background(), "shared", fmt.Sprintf("question %d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.History("shared"), turns, "no turn's history may be lost to a create race")
}

func TestReset(t *testing.T) {
	m := newTestManager(t, &stubLLM{sql: "SELECT COUNT(*) AS total FROM t"})

	m.HandleMessage(context.Background(), "s1", "q")
	require.NotEmpty(t, m.History("s1"))

	m.Reset("s1")
	assert.Empty(t, m.History("s1"))
}

func TestRenderSuccessfulTurn(t *testing.T) {
	turn := &workflow.Turn{
		Question:    "sales by region?",
		Answer:      "north leads with 10",
		Explanation: "groups sales by region",
		Chart:       &viz.Chart{Kind: viz.KindBar, PNG: []byte{0x89, 'P', 'N', 'G'}},
	}

	msgs := Render(turn)
	require.Len(t, msgs, 3)
	assert.Equal(t, "north leads with 10", msgs[0].Text)
	assert.Contains(t, msgs[1].Text, "groups sales by region")
	assert.NotNil(t, msgs[2].ImagePNG)
}

func TestRenderTextOnlyTurn(t *testing.T) {
	turn := &workflow.Turn{
		Answer:       "42 rows",
		ChartSkipped: true,
		SkipReason:   "only 1 row(s); too few for a meaningful chart",
	}

	msgs := Render(turn)
	require.Len(t, msgs, 1)
	assert.Equal(t, "42 rows", msgs[0].Text)
}
