package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// AnalyzerConfig selects the model endpoint and call settings.
type AnalyzerConfig struct {
	// APIKey authenticates against the Gemini Developer API. Required unless
	// UseVertexAI is set.
	APIKey string

	// UseVertexAI routes calls through Vertex AI with Application Default
	// Credentials, using Project and Location.
	UseVertexAI bool
	Project     string
	Location    string

	// APIVersion and BaseURL override the SDK endpoint defaults.
	APIVersion string
	BaseURL    string

	Model       string
	Temperature *float32 // nil means DefaultTemperature

	EncodeConcurrency int
}

func (c AnalyzerConfig) validate() error {
	if c.UseVertexAI {
		if c.Project == "" {
			return &ConfigurationError{Setting: "GOOGLE_CLOUD_PROJECT", Reason: "required when Vertex AI is enabled"}
		}
		if c.Location == "" {
			return &ConfigurationError{Setting: "GOOGLE_CLOUD_LOCATION", Reason: "required when Vertex AI is enabled"}
		}
		return nil
	}
	if c.APIKey == "" {
		return &ConfigurationError{Setting: "GEMINI_API_KEY", Reason: "API key not found in environment variables"}
	}
	return nil
}

// GeminiAnalyzer is the Analyzer backed by the Gemini API.
type GeminiAnalyzer struct {
	pipeline *Pipeline
	model    string
	log      zerolog.Logger
}

// NewGeminiAnalyzer creates the GenAI client and the analyzer around it.
// A missing credential is reported as *ConfigurationError before any
// client is created.
func NewGeminiAnalyzer(ctx context.Context, cfg AnalyzerConfig, log zerolog.Logger) (*GeminiAnalyzer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{
			APIVersion: cfg.APIVersion,
			BaseURL:    cfg.BaseURL,
		},
	}
	if cfg.UseVertexAI {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	} else {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("NewGeminiAnalyzer: create genai client: %w", err)
	}

	return NewGeminiAnalyzerWithGenerator(client.Models, cfg, log), nil
}

// NewGeminiAnalyzerWithGenerator builds an analyzer over an existing
// generator. Unset values in cfg fall back to the package defaults.
func NewGeminiAnalyzerWithGenerator(gen ContentGenerator, cfg AnalyzerConfig, log zerolog.Logger) *GeminiAnalyzer {
	model := cfg.Model
	if model == "" {
		model = DefaultModelName
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &GeminiAnalyzer{
		pipeline: NewAnalysisPipeline(gen, model, temperature, cfg.EncodeConcurrency),
		model:    model,
		log:      log.With().Str("component", "analyzer").Str("model", model).Logger(),
	}
}

// Analyze implements Analyzer. It issues exactly one GenerateContent call;
// there is no retry and no partial result.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, docs []domain.InputDocument) (*domain.AnalysisResult, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	state := &AnalysisState{Documents: docs}
	start := time.Now()
	err := a.pipeline.Execute(ctx, state)

	for _, encErr := range state.EncodingErrors {
		a.log.Warn().Err(encErr).Msg("Document excluded from analysis")
	}

	if err != nil {
		a.log.Error().
			Err(err).
			Int("documents", len(docs)).
			Int("parts", len(state.Parts)).
			Dur("duration", time.Since(start)).
			Msg("Analysis failed")
		return nil, err
	}

	for _, msg := range Anomalies(state.Result) {
		a.log.Warn().Str("anomaly", msg).Msg("Unexpected value in analysis result")
	}

	a.log.Info().
		Int("parts", len(state.Parts)).
		Int("transactions", len(state.Result.Transactions)).
		Dur("duration", time.Since(start)).
		Msg("Analysis completed")

	return state.Result, nil
}

var _ Analyzer = (*GeminiAnalyzer)(nil)
