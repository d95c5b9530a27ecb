package workflow

import (
	"context"
	"fmt"

	"github.com/DachengChen/paiChat/ai"
)

// GenerateQuery turns the user question into a single SQL statement.
// Stage 1 of the pipeline. Pure LLM call, no side effects.
func (p *Pipeline) GenerateQuery(ctx context.Context, t *Turn) error {
	systemPrompt := fmt.Sprintf(generateSystemPrompt, p.schema.Description())
	userPrompt := buildGenerateUserPrompt(t)

	ai.LogRequest("GenerateQuery", p.llm.Name(), map[string]string{
		"Question": t.Question,
	})
	response, err := p.llm.Complete(ctx, systemPrompt, userPrompt)
	ai.LogResponse("GenerateQuery", response, err)
	if err != nil {
		return &GenerationError{Reason: err.Error()}
	}

	if isOutOfScope(response) {
		return &GenerationError{Reason: "model judged the question out of scope", OutOfScope: true}
	}

	sql := extractSQL(response)
	if sql == "" {
		return &GenerationError{Reason: "no SQL statement found in model output"}
	}

	t.SQL = sql
	p.log.Info("workflow: query generated", "question", t.Question, "sql", sql)
	return nil
}

// buildGenerateUserPrompt folds prior exchanges into the prompt so
// follow-up questions ("and by region?") have something to follow up on.
func buildGenerateUserPrompt(t *Turn) string {
	if len(t.History) == 0 {
		return "Question: " + t.Question
	}

	prompt := "Earlier in this conversation:\n"
	for _, ex := range t.History {
		prompt += fmt.Sprintf("Q: %s\nA: %s\n", ex.Question, ex.Answer)
	}
	prompt += "\nQuestion: " + t.Question
	return prompt
}
