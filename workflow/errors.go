package workflow

import (
	"fmt"

	"github.com/DachengChen/paiChat/db"
)

// GenerationError means the model produced unusable SQL or judged the
// question out of scope. Terminal for the turn; execution never runs.
type GenerationError struct {
	Reason     string // internal detail
	OutOfScope bool
}

func (e *GenerationError) Error() string {
	return "query generation failed: " + e.Reason
}

// UserMessage renders the failure for the transcript.
func (e *GenerationError) UserMessage() string {
	if e.OutOfScope {
		return "I can't answer that from the data available in this warehouse. Try asking about the tables and columns it actually contains."
	}
	return "Sorry, I couldn't turn that question into a valid SQL query. Rephrasing it may help."
}

// ExecutionError means the warehouse rejected or errored on the SQL.
// Terminal for the turn; no automatic retry.
type ExecutionError struct {
	Query *db.QueryError
	SQL   string
}

func (e *ExecutionError) Error() string {
	return "query execution failed: " + e.Query.Error()
}

// UserMessage renders the warehouse error in plain language.
func (e *ExecutionError) UserMessage() string {
	switch e.Query.Kind {
	case db.ErrKindSyntax:
		return fmt.Sprintf("The generated query was rejected by the warehouse (syntax problem): %s", e.Query.Message)
	case db.ErrKindPermission:
		return "The warehouse refused the query: the read-only role lacks permission for the referenced objects."
	case db.ErrKindTimeout:
		return "The query took too long and was cancelled. A narrower question may run within the time limit."
	case db.ErrKindForbidden:
		return "The generated query tried to modify data and was blocked before reaching the warehouse."
	default:
		return fmt.Sprintf("The query failed to execute: %s", e.Query.Message)
	}
}

// UserMessage extracts the transcript rendering for any terminal error.
func UserMessage(err error) string {
	switch e := err.(type) {
	case *GenerationError:
		return e.UserMessage()
	case *ExecutionError:
		return e.UserMessage()
	default:
		return "Sorry, something went wrong while answering: " + err.Error()
	}
}
