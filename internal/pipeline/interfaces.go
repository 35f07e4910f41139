package pipeline

import (
	"context"

	"github.com/dvloznov/statement-insights/internal/domain"
	"google.golang.org/genai"
)

// Analyzer turns statement documents into an AnalysisResult with a single
// call to the model service. This interface enables substituting a fixed
// payload in tests.
type Analyzer interface {
	// Analyze sends docs in one request and returns the complete result or
	// a single error. Callers must not overlap calls for the same session.
	Analyze(ctx context.Context, docs []domain.InputDocument) (*domain.AnalysisResult, error)
}

// ContentGenerator is the subset of the GenAI client used for the round
// trip. *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}
