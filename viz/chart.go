// Package viz renders static chart images from query results.
//
// The decision of whether and what to plot is pure heuristics over
// column types and cardinality, so the same result shape always makes
// the same decision. Rendering failures are the
// caller's to degrade on; Decide never fails, it skips.
package viz

import (
	"bytes"
	"fmt"
	"time"

	"github.com/DachengChen/paiChat/db"
	chart "github.com/wcharczuk/go-chart/v2"
)

// Kind is the selected chart type.
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
)

// Chart is a rendered image artifact.
type Chart struct {
	Kind Kind
	PNG  []byte
}

// Plan describes what to plot. XCol of -1 means the row index is the X
// axis (single numeric series with nothing to label it by).
type Plan struct {
	Kind Kind
	XCol int
	YCol int
}

const (
	// MinRows is the minimum result size worth plotting. A single row
	// (e.g. a COUNT(*)) has no axis to draw.
	MinRows = 2

	// MaxPoints bounds how many rows are rendered; beyond this the
	// chart is unreadable anyway.
	MaxPoints = 50

	// maxBarCategories bounds bar chart label count.
	maxBarCategories = 30
)

// Decide inspects a result set and picks a chart plan, or returns a
// non-empty skip reason. Skipping is a valid outcome, not an error.
func Decide(res *db.QueryResult) (Plan, string) {
	if res.Empty() {
		return Plan{}, "no rows to plot"
	}
	if res.RowCount < MinRows {
		return Plan{}, fmt.Sprintf("only %d row(s); too few for a meaningful chart", res.RowCount)
	}

	numeric := []int{}
	temporal := -1
	categorical := -1
	for i, col := range res.Columns {
		switch {
		case col.Numeric():
			numeric = append(numeric, i)
		case col.Temporal():
			if temporal == -1 {
				temporal = i
			}
		default:
			if categorical == -1 {
				categorical = i
			}
		}
	}

	if len(numeric) == 0 {
		return Plan{}, "no numeric column to plot"
	}

	switch {
	case temporal != -1:
		return Plan{Kind: KindLine, XCol: temporal, YCol: numeric[0]}, ""
	case categorical != -1:
		if res.RowCount > maxBarCategories {
			return Plan{}, fmt.Sprintf("%d categories; too many for a readable bar chart", res.RowCount)
		}
		return Plan{Kind: KindBar, XCol: categorical, YCol: numeric[0]}, ""
	case len(numeric) >= 2:
		return Plan{Kind: KindScatter, XCol: numeric[0], YCol: numeric[1]}, ""
	default:
		// Single numeric column, nothing to label it by: plot the series
		// against the row index.
		return Plan{Kind: KindLine, XCol: -1, YCol: numeric[0]}, ""
	}
}

// Render draws the planned chart as a PNG.
func Render(plan Plan, res *db.QueryResult, title string) (*Chart, error) {
	rows := res.Rows
	if len(rows) > MaxPoints {
		rows = rows[:MaxPoints]
	}

	var buf bytes.Buffer
	var err error
	switch plan.Kind {
	case KindBar:
		err = renderBar(&buf, plan, rows, res, title)
	case KindLine:
		err = renderLine(&buf, plan, rows, res, title)
	case KindScatter:
		err = renderScatter(&buf, plan, rows, res, title)
	default:
		return nil, fmt.Errorf("unknown chart kind %q", plan.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s chart: %w", plan.Kind, err)
	}

	return &Chart{Kind: plan.Kind, PNG: buf.Bytes()}, nil
}

func renderBar(buf *bytes.Buffer, plan Plan, rows [][]any, res *db.QueryResult, title string) error {
	bars := make([]chart.Value, 0, len(rows))
	for _, row := range rows {
		y, ok := db.NumericValue(row[plan.YCol])
		if !ok {
			continue
		}
		label := db.FormatValue(row[plan.XCol])
		if len(label) > 16 {
			label = label[:13] + "..."
		}
		bars = append(bars, chart.Value{Value: y, Label: label})
	}
	if len(bars) == 0 {
		return fmt.Errorf("no plottable values")
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    900,
		Height:   480,
		BarWidth: max(12, 600/len(bars)),
		Bars:     bars,
		YAxis: chart.YAxis{
			Name: res.Columns[plan.YCol].Name,
		},
	}
	return graph.Render(chart.PNG, buf)
}

func renderLine(buf *bytes.Buffer, plan Plan, rows [][]any, res *db.QueryResult, title string) error {
	// Time axis when the plan has a temporal X column.
	if plan.XCol >= 0 && res.Columns[plan.XCol].Temporal() {
		var xs []time.Time
		var ys []float64
		for _, row := range rows {
			ts, ok := row[plan.XCol].(time.Time)
			if !ok {
				continue
			}
			y, ok := db.NumericValue(row[plan.YCol])
			if !ok {
				continue
			}
			xs = append(xs, ts)
			ys = append(ys, y)
		}
		if len(xs) < MinRows {
			return fmt.Errorf("no plottable time series")
		}
		graph := chart.Chart{
			Title:  title,
			Width:  900,
			Height: 480,
			YAxis:  chart.YAxis{Name: res.Columns[plan.YCol].Name},
			Series: []chart.Series{
				chart.TimeSeries{XValues: xs, YValues: ys},
			},
		}
		return graph.Render(chart.PNG, buf)
	}

	// Row-index axis.
	var xs, ys []float64
	for i, row := range rows {
		y, ok := db.NumericValue(row[plan.YCol])
		if !ok {
			continue
		}
		xs = append(xs, float64(i+1))
		ys = append(ys, y)
	}
	if len(xs) < MinRows {
		return fmt.Errorf("no plottable values")
	}
	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 480,
		YAxis:  chart.YAxis{Name: res.Columns[plan.YCol].Name},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}
	return graph.Render(chart.PNG, buf)
}

func renderScatter(buf *bytes.Buffer, plan Plan, rows [][]any, res *db.QueryResult, title string) error {
	var xs, ys []float64
	for _, row := range rows {
		x, okX := db.NumericValue(row[plan.XCol])
		y, okY := db.NumericValue(row[plan.YCol])
		if !okX || !okY {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) < MinRows {
		return fmt.Errorf("no plottable values")
	}
	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 480,
		XAxis:  chart.XAxis{Name: res.Columns[plan.XCol].Name},
		YAxis:  chart.YAxis{Name: res.Columns[plan.YCol].Name},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    5,
				},
			},
		},
	}
	return graph.Render(chart.PNG, buf)
}
