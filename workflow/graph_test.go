package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/DachengChen/paiChat/db"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLLM dispatches on the system prompt to tell the three LLM stages
// apart, the same way the placeholder provider does.
type mockLLM struct {
	mu sync.Mutex

	sqlResponse     string
	answerResponse  string
	explainResponse string

	answerErr  error
	explainErr error

	generatePrompts []string // user prompts seen by SQL generation
	answerPrompts   []string
	explainCalls    int
}

func (m *mockLLM) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case strings.Contains(system, "syntactically correct SQL"):
		m.generatePrompts = append(m.generatePrompts, user)
		return m.sqlResponse, nil
	case strings.Contains(system, "natural-language answers"):
		m.answerPrompts = append(m.answerPrompts, user)
		return m.answerResponse, m.answerErr
	case strings.Contains(system, "explains how"):
		m.explainCalls++
		return m.explainResponse, m.explainErr
	}
	return "", errors.New("unrecognized system prompt")
}

func (m *mockLLM) Name() string { return "mock" }

// mockQuerier applies the same read-only guard the real warehouse
// client does, and records which statements got past it.
type mockQuerier struct {
	result   *db.QueryResult
	err      error
	executed []string
}

func (q *mockQuerier) Execute(ctx context.Context, sql string) (*db.QueryResult, error) {
	if err := db.CheckReadOnly(sql); err != nil {
		return nil, err
	}
	if q.err != nil {
		return nil, q.err
	}
	q.executed = append(q.executed, sql)
	return q.result, nil
}

type mockSchema struct{ text string }

func (s mockSchema) Description() string { return s.text }

func newTestPipeline(t *testing.T, llm *mockLLM, q *mockQuerier) *Pipeline {
	t.Helper()
	p, err := New(Config{
		LLM:     llm,
		Querier: q,
		Schema:  mockSchema{text: "Table sales:\n  - region text\n  - amount numeric"},
	})
	require.NoError(t, err)
	return p
}

func textColumn(name string) db.Column {
	return db.Column{Name: name, OID: pgtype.TextOID, Type: "text"}
}

func intColumn(name string) db.Column {
	return db.Column{Name: name, OID: pgtype.Int8OID, Type: "bigint"}
}

func result(cols []db.Column, rows [][]any) *db.QueryResult {
	return &db.QueryResult{Columns: cols, Rows: rows, RowCount: len(rows)}
}

func TestOutOfScopeShortCircuits(t *testing.T) {
	llm := &mockLLM{sqlResponse: "OUT_OF_SCOPE"}
	q := &mockQuerier{}
	p := newTestPipeline(t, llm, q)

	turn := p.Run(context.Background(), "what is the meaning of life", nil)

	require.True(t, turn.Failed())
	var gerr *GenerationError
	require.ErrorAs(t, turn.Err, &gerr)
	assert.True(t, gerr.OutOfScope)
	assert.Empty(t, q.executed, "out-of-scope must never reach the warehouse")
	assert.Empty(t, turn.Answer)
	assert.Contains(t, UserMessage(turn.Err), "can't answer")
}

func TestFencedOutOfScopeShortCircuits(t *testing.T) {
	for _, response := range []string{
		"```\nOUT_OF_SCOPE\n```",
		"```sql\nOUT_OF_SCOPE\n```",
	} {
		llm := &mockLLM{sqlResponse: response}
		q := &mockQuerier{}
		p := newTestPipeline(t, llm, q)

		turn := p.Run(context.Background(), "irrelevant question", nil)

		require.True(t, turn.Failed(), "response: %q", response)
		var gerr *GenerationError
		require.ErrorAs(t, turn.Err, &gerr, "response: %q", response)
		assert.True(t, gerr.OutOfScope, "response: %q", response)
		assert.Empty(t, q.executed, "fenced sentinel must never reach the warehouse: %q", response)
	}
}

func TestMutatingSQLBlockedBeforeWarehouse(t *testing.T) {
	for _, sql := range []string{
		"DROP TABLE sales",
		"DELETE FROM sales WHERE true",
		"UPDATE sales SET amount = 0",
		"INSERT INTO sales VALUES (1)",
		"SELECT 1; DROP TABLE sales",
		"WITH x AS (DELETE FROM sales RETURNING *) SELECT * FROM x",
	} {
		llm := &mockLLM{sqlResponse: sql}
		q := &mockQuerier{}
		p := newTestPipeline(t, llm, q)

		turn := p.Run(context.Background(), "q", nil)

		require.True(t, turn.Failed(), "sql: %s", sql)
		var eerr *ExecutionError
		require.ErrorAs(t, turn.Err, &eerr, "sql: %s", sql)
		assert.Equal(t, db.ErrKindForbidden, eerr.Query.Kind, "sql: %s", sql)
		assert.Empty(t, q.executed, "mutating statement reached the warehouse: %s", sql)
	}
}

func TestNoRowsGetsTemplatedAnswer(t *testing.T) {
	llm := &mockLLM{
		sqlResponse:     "SELECT region FROM sales WHERE amount > 1e9",
		answerResponse:  "should never be used",
		explainResponse: "filters sales by amount",
	}
	q := &mockQuerier{result: result([]db.Column{textColumn("region")}, nil)}
	p := newTestPipeline(t, llm, q)

	turn := p.Run(context.Background(), "which regions sold over a billion", nil)

	require.False(t, turn.Failed())
	assert.True(t, turn.NoRows)
	assert.Equal(t, noRowsAnswer, turn.Answer)
	assert.Empty(t, llm.answerPrompts, "the model must not be asked to invent an answer for no data")
	assert.Equal(t, 1, llm.explainCalls, "explanation is independent of the result set")
	assert.True(t, turn.ChartSkipped)
	assert.Equal(t, "no rows to plot", turn.SkipReason)
	assert.Nil(t, turn.Chart)
}

func TestNonNumericResultSkipsChart(t *testing.T) {
	llm := &mockLLM{
		sqlResponse:     "SELECT name, city FROM customers",
		answerResponse:  "the customers are listed",
		explainResponse: "reads customer names",
	}
	q := &mockQuerier{result: result(
		[]db.Column{textColumn("name"), textColumn("city")},
		[][]any{{"ann", "porto"}, {"bo", "lisbon"}, {"cy", "braga"}},
	)}
	p := newTestPipeline(t, llm, q)

	turn := p.Run(context.Background(), "list customers", nil)

	require.False(t, turn.Failed())
	assert.True(t, turn.ChartSkipped)
	assert.Equal(t, "no numeric column to plot", turn.SkipReason)
	assert.Nil(t, turn.Chart)
	assert.Equal(t, "the customers are listed", turn.Answer)
}

func TestSingleRowAggregateIsTextOnly(t *testing.T) {
	llm := &mockLLM{
		sqlResponse:     "```sql\nSELECT COUNT(*) AS total FROM sales;\n```",
		answerResponse:  "There are 42 sales records.",
		explainResponse: "counts all rows in the sales table",
	}
	q := &mockQuerier{result: result([]db.Column{intColumn("total")}, [][]any{{int64(42)}})}
	p := newTestPipeline(t, llm, q)

	turn := p.Run(context.Background(), "how many sales are there", nil)

	require.False(t, turn.Failed())
	assert.Equal(t, "SELECT COUNT(*) AS total FROM sales", turn.SQL)
	assert.Equal(t, "There are 42 sales records.", turn.Answer)
	assert.Equal(t, "counts all rows in the sales table", turn.Explanation)
	assert.True(t, turn.ChartSkipped)
	assert.Contains(t, turn.SkipReason, "too few")
	assert.Nil(t, turn.Chart)
}

func TestCategoricalNumericGetsBarChart(t *testing.T) {
	rows := make([][]any, 12)
	for i := range rows {
		rows[i] = []any{"region-" + string(rune('a'+i)), int64((i + 1) * 100)}
	}
	llm := &mockLLM{
		sqlResponse:     "SELECT region, SUM(amount) AS total FROM sales GROUP BY region",
		answerResponse:  "sales by region summarized",
		explainResponse: "groups sales by region",
	}
	q := &mockQuerier{result: result([]db.Column{textColumn("region"), intColumn("total")}, rows)}
	p := newTestPipeline(t, llm, q)

	turn := p.Run(context.Background(), "total sales per region", nil)

	require.False(t, turn.Failed())
	assert.False(t, turn.ChartSkipped)
	require.NotNil(t, turn.Chart)
	assert.Equal(t, "bar", string(turn.Chart.Kind))
	assert.NotEmpty(t, turn.Chart.PNG)
}

func TestRenderFailureDegradesToTextOnly(t *testing.T) {
	// The column OID promises numbers but the cells hold text, so the
	// chart plan survives Decide and rendering fails on the values.
	llm := &mockLLM{
		sqlResponse:     "SELECT region, total FROM sales",
		answerResponse:  "north leads",
		explainResponse: "reads regional totals",
	}
	q := &mockQuerier{result: result(
		[]db.Column{textColumn("region"), intColumn("total")},
		[][]any{{"north", "not-a-number"}, {"south", "also-not"}, {"west", "nope"}},
	)}
	p := newTestPipeline(t, llm, q)

	turn := p.Run(context.Background(), "totals per region", nil)

	require.False(t, turn.Failed(), "a rendering failure must not fail the turn")
	assert.Equal(t, "north leads", turn.Answer)
	assert.Equal(t, "reads regional totals", turn.Explanation)
	assert.True(t, turn.ChartSkipped)
	assert.Equal(t, "chart rendering failed", turn.SkipReason)
	assert.Nil(t, turn.Chart)
}

func TestControlFlowIsDeterministic(t *testing.T) {
	run := func() []Stage {
		llm := &mockLLM{
			sqlResponse:     "SELECT region, SUM(amount) FROM sales GROUP BY region",
			answerResponse:  "answer",
			explainResponse: "explanation",
		}
		q := &mockQuerier{result: result(
			[]db.Column{textColumn("region"), intColumn("sum")},
			[][]any{{"north", int64(1)}, {"south", int64(2)}, {"west", int64(3)}},
		)}
		p := newTestPipeline(t, llm, q)

		var trace []Stage
		p.RunWithProgress(context.Background(), "same question", nil, func(s Stage) {
			trace = append(trace, s)
		})
		return trace
	}

	first := run()
	second := run()

	expected := []Stage{StageGenerate, StageExecute, StageInterpret, StageVisualize, StageDone}
	assert.Equal(t, expected, first)
	assert.Equal(t, expected, second, "identical inputs must walk identical stage sequences")
}

func TestWarehouseErrorIsTerminal(t *testing.T) {
	llm := &mockLLM{sqlResponse: "SELECT nope FROM missing"}
	q := &mockQuerier{err: &db.QueryError{Kind: db.ErrKindSyntax, Message: `column "nope" does not exist`}}
	p := newTestPipeline(t, llm, q)

	var trace []Stage
	turn := p.RunWithProgress(context.Background(), "q", nil, func(s Stage) {
		trace = append(trace, s)
	})

	require.True(t, turn.Failed())
	var eerr *ExecutionError
	require.ErrorAs(t, turn.Err, &eerr)
	assert.Equal(t, db.ErrKindSyntax, eerr.Query.Kind)
	assert.Empty(t, turn.Answer, "no interpretation after a failed execution")
	assert.Equal(t, []Stage{StageGenerate, StageExecute, StageFailed}, trace)
}

func TestUnparseableResponseFailsGeneration(t *testing.T) {
	llm := &mockLLM{sqlResponse: "I am sorry, I cannot help with that."}
	q := &mockQuerier{}
	p := newTestPipeline(t, llm, q)

	turn := p.Run(context.Background(), "q", nil)

	require.True(t, turn.Failed())
	var gerr *GenerationError
	require.ErrorAs(t, turn.Err, &gerr)
	assert.False(t, gerr.OutOfScope)
	assert.Empty(t, q.executed)
}

func TestHistoryFlowsIntoGenerationPrompt(t *testing.T) {
	llm := &mockLLM{
		sqlResponse:     "SELECT 1",
		answerResponse:  "a",
		explainResponse: "e",
	}
	q := &mockQuerier{result: result([]db.Column{intColumn("one")}, [][]any{{int64(1)}})}
	p := newTestPipeline(t, llm, q)

	history := []Exchange{{Question: "sales last year?", Answer: "12 million total"}}
	turn := p.Run(context.Background(), "and the year before?", history)

	require.False(t, turn.Failed())
	require.Len(t, llm.generatePrompts, 1)
	assert.Contains(t, llm.generatePrompts[0], "sales last year?")
	assert.Contains(t, llm.generatePrompts[0], "12 million total")
	assert.Contains(t, llm.generatePrompts[0], "and the year before?")
}

func TestAnswerFailureDegradesGracefully(t *testing.T) {
	llm := &mockLLM{
		sqlResponse:     "SELECT 1",
		answerErr:       errors.New("provider overloaded"),
		explainResponse: "selects a constant",
	}
	q := &mockQuerier{result: result([]db.Column{intColumn("one")}, [][]any{{int64(1)}})}
	p := newTestPipeline(t, llm, q)

	turn := p.Run(context.Background(), "q", nil)

	require.False(t, turn.Failed(), "an interpretation failure must not fail the turn")
	assert.Contains(t, turn.Answer, "query ran successfully")
	assert.Equal(t, "selects a constant", turn.Explanation)
}

func TestResultNotMutatedByLaterStages(t *testing.T) {
	rows := [][]any{{"north", int64(10)}, {"south", int64(20)}, {"west", int64(30)}}
	llm := &mockLLM{
		sqlResponse:     "SELECT region, amount FROM sales",
		answerResponse:  "a",
		explainResponse: "e",
	}
	q := &mockQuerier{result: result([]db.Column{textColumn("region"), intColumn("amount")}, rows)}
	p := newTestPipeline(t, llm, q)

	turn := p.Run(context.Background(), "q", nil)

	require.False(t, turn.Failed())
	assert.Equal(t, 3, turn.Result.RowCount)
	assert.Equal(t, [][]any{{"north", int64(10)}, {"south", int64(20)}, {"west", int64(30)}}, turn.Result.Rows)
}
