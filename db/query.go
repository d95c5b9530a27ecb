// query.go executes pipeline-generated SQL and collects typed results.
//
// All functions accept a context and return structured results the
// pipeline and frontends can render. Errors are returned, never logged
// or printed here.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/olekukonko/tablewriter"
)

// Column describes one column of a result set.
type Column struct {
	Name string
	OID  uint32 // PostgreSQL type OID
	Type string // human-readable type name
}

// Numeric reports whether the column holds plottable numbers.
func (c Column) Numeric() bool {
	switch c.OID {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID,
		pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return true
	}
	return false
}

// Temporal reports whether the column holds dates or timestamps.
func (c Column) Temporal() bool {
	switch c.OID {
	case pgtype.DateOID, pgtype.TimestampOID, pgtype.TimestamptzOID:
		return true
	}
	return false
}

// QueryResult holds the output of one pipeline query execution.
// It is never mutated after Execute returns it.
type QueryResult struct {
	Columns  []Column
	Rows     [][]any
	RowCount int
}

// Empty reports whether the result set has no rows.
func (r *QueryResult) Empty() bool {
	return r == nil || r.RowCount == 0
}

// Execute runs a single read-only SQL statement and returns its result.
// The statement is checked by the read-only guard before it reaches the
// pool, regardless of the credential's own permissions.
func (d *DB) Execute(ctx context.Context, sql string) (*QueryResult, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, &QueryError{Kind: ErrKindOther, Message: "empty query"}
	}
	if err := CheckReadOnly(sql); err != nil {
		return nil, err
	}

	rows, err := d.Pool.Query(ctx, sql)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	result := &QueryResult{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, Column{
			Name: fd.Name,
			OID:  fd.DataTypeOID,
			Type: typeName(fd.DataTypeOID),
		})
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, classifyError(err)
		}
		row := make([]any, len(values))
		copy(row, values)
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(err)
	}

	return result, nil
}

// FormatValue renders a single cell for prompts and display.
// Floats are rounded to two decimals so the LLM doesn't choke on
// artifacts like 3.3333333333333335.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%.2f", val)
	case float32:
		if val == float32(int32(val)) {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%.2f", val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return FormatValue(f.Float64)
	default:
		s := fmt.Sprintf("%v", v)
		if len(s) > 100 {
			s = s[:97] + "..."
		}
		return s
	}
}

// FormatSample renders up to maxRows of the result as an aligned text
// table, followed by a truncation note when rows were held back. This is
// what gets serialized into answer prompts instead of the raw dump.
func (r *QueryResult) FormatSample(maxRows int) string {
	if r.Empty() {
		return "(no rows)"
	}

	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)

	headers := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		headers[i] = c.Name
	}
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	shown := r.RowCount
	if maxRows > 0 && shown > maxRows {
		shown = maxRows
	}
	for _, row := range r.Rows[:shown] {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		table.Append(cells)
	}
	table.Render()

	if shown < r.RowCount {
		sb.WriteString(fmt.Sprintf("(showing first %d of %d rows)\n", shown, r.RowCount))
	} else {
		sb.WriteString(fmt.Sprintf("(%d row%s)\n", r.RowCount, plural(r.RowCount)))
	}
	return sb.String()
}

// NumericValue converts a cell to float64 for plotting.
func NumericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return 0, false
		}
		return f.Float64, true
	}
	return 0, false
}

// typeName maps common PostgreSQL type OIDs to readable names.
func typeName(oid uint32) string {
	switch oid {
	case pgtype.Int2OID:
		return "smallint"
	case pgtype.Int4OID:
		return "integer"
	case pgtype.Int8OID:
		return "bigint"
	case pgtype.Float4OID:
		return "real"
	case pgtype.Float8OID:
		return "double precision"
	case pgtype.NumericOID:
		return "numeric"
	case pgtype.TextOID:
		return "text"
	case pgtype.VarcharOID:
		return "varchar"
	case pgtype.BPCharOID:
		return "char"
	case pgtype.BoolOID:
		return "boolean"
	case pgtype.DateOID:
		return "date"
	case pgtype.TimestampOID:
		return "timestamp"
	case pgtype.TimestamptzOID:
		return "timestamptz"
	case pgtype.UUIDOID:
		return "uuid"
	default:
		return fmt.Sprintf("oid(%d)", oid)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
