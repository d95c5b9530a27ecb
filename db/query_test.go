package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "3", FormatValue(3.0))
	assert.Equal(t, "3.33", FormatValue(10.0/3.0))
	assert.Equal(t, "hello", FormatValue("hello"))
	assert.Equal(t, "42", FormatValue(int64(42)))

	ts := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-01 09:30:00", FormatValue(ts))

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, FormatValue(string(long)), 100)
}

func TestColumnNumeric(t *testing.T) {
	assert.True(t, Column{OID: pgtype.Int8OID}.Numeric())
	assert.True(t, Column{OID: pgtype.NumericOID}.Numeric())
	assert.False(t, Column{OID: pgtype.TextOID}.Numeric())
	assert.False(t, Column{OID: pgtype.DateOID}.Numeric())
	assert.True(t, Column{OID: pgtype.TimestamptzOID}.Temporal())
}

func TestNumericValue(t *testing.T) {
	v, ok := NumericValue(int64(5))
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = NumericValue("not a number")
	assert.False(t, ok)
}

func TestFormatSampleTruncates(t *testing.T) {
	r := &QueryResult{
		Columns: []Column{
			{Name: "region", OID: pgtype.TextOID},
			{Name: "total", OID: pgtype.Int8OID},
		},
	}
	for i := 0; i < 10; i++ {
		r.Rows = append(r.Rows, []any{"r", int64(i)})
		r.RowCount++
	}

	sample := r.FormatSample(3)
	assert.Contains(t, sample, "region")
	assert.Contains(t, sample, "(showing first 3 of 10 rows)")

	full := r.FormatSample(0)
	assert.Contains(t, full, "(10 rows)")
}

func TestFormatSampleEmpty(t *testing.T) {
	r := &QueryResult{}
	assert.Equal(t, "(no rows)", r.FormatSample(5))
}
