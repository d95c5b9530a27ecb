package workflow

import (
	"context"

	"github.com/DachengChen/paiChat/viz"
)

// Visualize decides whether the result set supports a chart and renders
// one when it does. Stage 5 of the pipeline.
//
// Skipping is a valid outcome, not an error: too few rows or no numeric
// column means there is nothing to plot. Rendering failures degrade the
// turn to answer-only output and are only logged.
func (p *Pipeline) Visualize(ctx context.Context, t *Turn) error {
	if t.NoRows {
		t.ChartSkipped = true
		t.SkipReason = "no rows to plot"
		return nil
	}

	plan, skip := viz.Decide(t.Result)
	if skip != "" {
		t.ChartSkipped = true
		t.SkipReason = skip
		p.log.Info("workflow: chart skipped", "reason", skip)
		return nil
	}

	chart, err := viz.Render(plan, t.Result, t.Question)
	if err != nil {
		t.ChartSkipped = true
		t.SkipReason = "chart rendering failed"
		p.log.Warn("workflow: chart rendering failed", "error", err)
		return nil
	}

	t.Chart = chart
	p.log.Info("workflow: chart rendered", "kind", chart.Kind, "bytes", len(chart.PNG))
	return nil
}
