package usecase

import (
	"context"
	"embed"
	"strings"
	"text/template"
	"time"

	"docqa/internal/domain"
	"docqa/internal/port"
)

//go:embed templates/answer.txt
var promptTemplates embed.FS

var answerTemplate = template.Must(
	template.New("answer.txt").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(promptTemplates, "templates/answer.txt"),
)

// Orchestrator turns a question into a grounded answer: retrieve, build a
// prompt restricted to the retrieved passages, call the generator, and
// assemble the answer with its sources and latency.
type Orchestrator struct {
	retriever *Retriever
	generator port.Generator
}

func NewOrchestrator(retriever *Retriever, generator port.Generator) *Orchestrator {
	return &Orchestrator{retriever: retriever, generator: generator}
}

// Answer always calls the generator, even when retrieval found nothing;
// the prompt then carries an empty context block and the expected answer
// is the model's explicit "I don't know." That statement is a normal
// outcome, not an error.
func (o *Orchestrator) Answer(ctx context.Context, question string) (domain.Answer, error) {
	start := time.Now()

	results, err := o.retriever.Retrieve(ctx, question)
	if err != nil {
		return domain.Answer{}, err
	}

	prompt, err := BuildPrompt(question, results)
	if err != nil {
		return domain.Answer{}, err
	}

	text, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.Answer{}, err
	}

	sources := make([]domain.Citation, 0, len(results))
	for _, r := range results {
		sources = append(sources, domain.Citation{
			DocName: r.DocName,
			ChunkID: r.ChunkID,
			Text:    r.Text,
		})
	}

	return domain.Answer{
		Text:      text,
		Sources:   sources,
		LatencyMS: time.Since(start).Milliseconds(),
	}, nil
}

// BuildPrompt renders the grounded prompt for a question and its retrieved
// passages, in retrieval order.
func BuildPrompt(question string, results []domain.QueryResult) (string, error) {
	var sb strings.Builder
	err := answerTemplate.Execute(&sb, struct {
		Question string
		Results  []domain.QueryResult
	}{Question: question, Results: results})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
