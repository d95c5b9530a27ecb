package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/DachengChen/paiChat/ai"
)

// GenerateAnswer interprets the query results in natural language.
// Stage 3 of the pipeline. Reads the result set, never mutates it.
//
// Large results are not dumped into the prompt: at most maxAnswerRows
// rows are serialized, with an explicit "showing first N of M" note so
// the model knows it is looking at a sample.
func (p *Pipeline) GenerateAnswer(ctx context.Context, t *Turn) error {
	if t.NoRows {
		t.Answer = noRowsAnswer
		return nil
	}

	userPrompt := fmt.Sprintf(
		"Original question: %s\nQuery used:\n%s\nQuery results:\n%s\nGive a natural-language answer to the original question.",
		t.Question, t.SQL, t.Result.FormatSample(p.maxAnswerRows))

	ai.LogRequest("GenerateAnswer", p.llm.Name(), map[string]string{
		"Question": t.Question,
		"SQL":      t.SQL,
	})
	answer, err := p.llm.Complete(ctx, answerSystemPrompt, userPrompt)
	ai.LogResponse("GenerateAnswer", answer, err)
	if err != nil {
		// Non-terminal: the user still gets the raw result rendered by
		// the frontend, just without interpretation.
		p.log.Warn("workflow: answer generation failed", "error", err)
		t.Answer = "I couldn't summarize the results, but the query ran successfully; see the data below."
		return nil
	}

	t.Answer = strings.TrimSpace(answer)
	return nil
}

// ExplainQuery explains the SQL's logic for a non-technical user.
// Stage 4 of the pipeline. Depends only on the question and the SQL, so
// it runs concurrently with GenerateAnswer.
func (p *Pipeline) ExplainQuery(ctx context.Context, t *Turn) error {
	userPrompt := fmt.Sprintf(
		"Question: %s\nSQL query:\n%s\n\nExplain how this query answers the question.",
		t.Question, t.SQL)

	ai.LogRequest("ExplainQuery", p.llm.Name(), map[string]string{
		"Question": t.Question,
		"SQL":      t.SQL,
	})
	explanation, err := p.llm.Complete(ctx, explainSystemPrompt, userPrompt)
	ai.LogResponse("ExplainQuery", explanation, err)
	if err != nil {
		// Non-terminal: an answer without an explanation is still useful.
		p.log.Warn("workflow: explanation failed", "error", err)
		t.Explanation = ""
		return nil
	}

	t.Explanation = strings.TrimSpace(explanation)
	return nil
}

// interpret runs GenerateAnswer and ExplainQuery concurrently. They are
// data-independent: both read (question, SQL, result) and write disjoint
// fields of the turn.
func (p *Pipeline) interpret(ctx context.Context, t *Turn) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = p.GenerateAnswer(ctx, t)
	}()
	go func() {
		defer wg.Done()
		_ = p.ExplainQuery(ctx, t)
	}()
	wg.Wait()
	return nil
}
