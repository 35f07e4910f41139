package pipeline

import (
	"fmt"

	"google.golang.org/genai"
)

// AnalysisRequest is the single outbound payload: instruction, the encoded
// documents in selection order, and the response schema. It is immutable
// once built; accessors hand out copies.
type AnalysisRequest struct {
	instruction string
	parts       []EncodedPart
	temperature float32
}

// RequestOption customises BuildAnalysisRequest.
type RequestOption func(*AnalysisRequest)

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float32) RequestOption {
	return func(r *AnalysisRequest) {
		r.temperature = t
	}
}

// BuildAnalysisRequest assembles the request from already-encoded parts.
// It performs no I/O. Parts must be non-empty.
func BuildAnalysisRequest(parts []EncodedPart, opts ...RequestOption) (*AnalysisRequest, error) {
	if len(parts) == 0 {
		return nil, ErrNoDocuments
	}

	req := &AnalysisRequest{
		instruction: BuildInstruction(),
		parts:       append([]EncodedPart(nil), parts...),
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

// Instruction returns the task description sent ahead of the documents.
func (r *AnalysisRequest) Instruction() string {
	return r.instruction
}

// Parts returns a copy of the encoded documents in request order.
func (r *AnalysisRequest) Parts() []EncodedPart {
	return append([]EncodedPart(nil), r.parts...)
}

// Temperature returns the sampling temperature for the call.
func (r *AnalysisRequest) Temperature() float32 {
	return r.temperature
}

// Schema returns the response schema declaration.
func (r *AnalysisRequest) Schema() *genai.Schema {
	return AnalysisSchema()
}

// Contents renders the request as a single user turn: the instruction text
// first, then one inline blob per document in order.
func (r *AnalysisRequest) Contents() ([]*genai.Content, error) {
	parts := make([]*genai.Part, 0, len(r.parts)+1)
	parts = append(parts, &genai.Part{Text: r.instruction})

	for _, p := range r.parts {
		data, err := p.Bytes()
		if err != nil {
			return nil, fmt.Errorf("AnalysisRequest.Contents: %w", err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: p.MediaType,
				Data:     data,
			},
		})
	}

	return []*genai.Content{
		{
			Role:  "user",
			Parts: parts,
		},
	}, nil
}

// GenerateConfig returns the model configuration: JSON output constrained
// to the schema, low temperature, single non-streamed answer.
func (r *AnalysisRequest) GenerateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(r.temperature),
		ResponseMIMEType: ResponseMediaType,
		ResponseSchema:   r.Schema(),
		CandidateCount:   1,
	}
}
