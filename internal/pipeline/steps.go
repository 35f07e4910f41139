package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-insights/internal/domain"
)

// PipelineStep represents a single step of an analysis.
type PipelineStep interface {
	Execute(ctx context.Context, state *AnalysisState) error
}

// AnalysisState holds the shared state across all pipeline steps.
type AnalysisState struct {
	Documents      []domain.InputDocument
	Parts          []EncodedPart
	EncodingErrors []error
	Request        *AnalysisRequest
	RawText        string
	Result         *domain.AnalysisResult
}

// Step 1: FilterDocumentsStep drops documents that are neither images nor PDFs.
type FilterDocumentsStep struct{}

func (s *FilterDocumentsStep) Execute(ctx context.Context, state *AnalysisState) error {
	state.Documents = FilterQualifying(state.Documents)
	if len(state.Documents) == 0 {
		return ErrNoDocuments
	}
	return nil
}

// Step 2: EncodeDocumentsStep encodes every document, skipping unreadable ones.
type EncodeDocumentsStep struct {
	Concurrency int
}

func (s *EncodeDocumentsStep) Execute(ctx context.Context, state *AnalysisState) error {
	parts, failed := EncodeDocuments(ctx, state.Documents, s.Concurrency)
	state.Parts = parts
	state.EncodingErrors = failed
	if len(parts) == 0 {
		return ErrNoDocuments
	}
	return nil
}

// Step 3: BuildRequestStep assembles the outbound request.
type BuildRequestStep struct {
	Temperature float32
}

func (s *BuildRequestStep) Execute(ctx context.Context, state *AnalysisState) error {
	req, err := BuildAnalysisRequest(state.Parts, WithTemperature(s.Temperature))
	if err != nil {
		return err
	}
	state.Request = req
	return nil
}

// Step 4: GenerateStep performs the one round trip to the model.
type GenerateStep struct {
	Generator ContentGenerator
	Model     string
}

func (s *GenerateStep) Execute(ctx context.Context, state *AnalysisState) error {
	contents, err := state.Request.Contents()
	if err != nil {
		return fmt.Errorf("GenerateStep: %w", err)
	}

	resp, err := s.Generator.GenerateContent(ctx, s.Model, contents, state.Request.GenerateConfig())
	if err != nil {
		return &TransportError{Err: err}
	}
	if resp != nil {
		state.RawText = resp.Text()
	}
	return nil
}

// Step 5: DecodeResultStep parses the answer against the declared schema.
type DecodeResultStep struct{}

func (s *DecodeResultStep) Execute(ctx context.Context, state *AnalysisState) error {
	result, err := DecodeAnalysisResult(state.RawText)
	if err != nil {
		return err
	}
	state.Result = result
	return nil
}

// Pipeline executes a sequence of steps in order. The first error stops the
// run and is returned as is.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *AnalysisState) error {
	for _, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// NewAnalysisPipeline creates the standard five-step analysis pipeline.
func NewAnalysisPipeline(gen ContentGenerator, model string, temperature float32, concurrency int) *Pipeline {
	return NewPipeline(
		&FilterDocumentsStep{},
		&EncodeDocumentsStep{Concurrency: concurrency},
		&BuildRequestStep{Temperature: temperature},
		&GenerateStep{Generator: gen, Model: model},
		&DecodeResultStep{},
	)
}
