package workflow

import (
	"context"
	"errors"

	"github.com/DachengChen/paiChat/db"
)

// ExecuteQuery runs the generated SQL against the warehouse.
// Stage 2 of the pipeline. The read-only guard inside the querier
// rejects mutating statements before they reach the connection.
//
// An empty result set is recorded as a distinct NoRows outcome, never an
// error, so downstream stages don't hallucinate data. Warehouse errors
// are terminal; there is no automatic retry.
func (p *Pipeline) ExecuteQuery(ctx context.Context, t *Turn) error {
	result, err := p.querier.Execute(ctx, t.SQL)
	if err != nil {
		var qerr *db.QueryError
		if !errors.As(err, &qerr) {
			qerr = &db.QueryError{Kind: db.ErrKindOther, Message: err.Error()}
		}
		p.log.Warn("workflow: query failed", "kind", qerr.Kind, "error", qerr.Message, "sql", t.SQL)
		return &ExecutionError{Query: qerr, SQL: t.SQL}
	}

	t.Result = result
	t.NoRows = result.Empty()
	p.log.Info("workflow: query executed", "rows", result.RowCount, "noRows", t.NoRows)
	return nil
}
