// Package workflow implements the five-stage question-answering pipeline:
// generate SQL, execute it read-only, interpret the results, explain the
// query, and optionally render a chart. The orchestrator in graph.go
// sequences the stages as a small state machine.
package workflow

import (
	"context"

	"github.com/DachengChen/paiChat/db"
	"github.com/DachengChen/paiChat/viz"
)

// LLM is the completion interface the stages call. Satisfied by
// ai.Provider; narrowed here so tests can supply mocks.
type LLM interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// Querier executes read-only SQL against the warehouse.
// Satisfied by *db.DB.
type Querier interface {
	Execute(ctx context.Context, sql string) (*db.QueryResult, error)
}

// Schema provides the schema description for SQL generation.
// Satisfied by *db.SchemaCatalog.
type Schema interface {
	Description() string
}

// Exchange is one prior (question, answer) pair carried as follow-up
// context. Session memory holds these; the pipeline only reads them.
type Exchange struct {
	Question string
	Answer   string
}

// Turn is the shared state threaded through all stages of one pipeline
// invocation. Each stage reads the fields of earlier stages and writes
// its own; Result is never mutated after ExecuteQuery.
type Turn struct {
	// Inputs
	Question string
	History  []Exchange

	// StageGenerate
	SQL string

	// StageExecute
	Result *db.QueryResult
	NoRows bool

	// StageInterpret
	Answer      string
	Explanation string

	// StageVisualize
	Chart        *viz.Chart
	ChartSkipped bool
	SkipReason   string

	// Terminal failure (generation or execution); nil on success.
	Err error
}

// Failed reports whether the turn ended in the error-terminal state.
func (t *Turn) Failed() bool {
	return t.Err != nil
}
