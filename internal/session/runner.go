package session

import (
	"context"

	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/pipeline"
	"github.com/rs/zerolog"
)

// Runner drives a session through one analysis.
type Runner struct {
	analyzer pipeline.Analyzer
	log      zerolog.Logger
}

// NewRunner creates a runner over the given analyzer.
func NewRunner(analyzer pipeline.Analyzer, log zerolog.Logger) *Runner {
	return &Runner{
		analyzer: analyzer,
		log:      log.With().Str("component", "session_runner").Logger(),
	}
}

// Begin filters docs down to images and PDFs and moves the session to
// Processing. With nothing qualifying the session stays where it is and
// ErrNoQualifyingDocuments is returned.
func (r *Runner) Begin(sess *Session, docs []domain.InputDocument) ([]domain.InputDocument, error) {
	qualifying := pipeline.FilterQualifying(docs)
	if len(qualifying) == 0 {
		return nil, ErrNoQualifyingDocuments
	}
	if err := sess.Begin(len(qualifying)); err != nil {
		return nil, err
	}

	r.log.Info().
		Str("session_id", sess.ID()).
		Int("submitted", len(docs)).
		Int("qualifying", len(qualifying)).
		Msg("Analysis started")
	return qualifying, nil
}

// Run analyzes docs for a session already in Processing and records the
// outcome. The analyzer's error is returned unchanged.
func (r *Runner) Run(ctx context.Context, sess *Session, docs []domain.InputDocument) error {
	log := logger.WithFields(r.log, map[string]interface{}{
		"session_id": sess.ID(),
		"documents":  len(docs),
	})

	result, err := r.analyzer.Analyze(ctx, docs)
	if err != nil {
		if ferr := sess.Fail(err); ferr != nil {
			log.Error().Err(ferr).Msg("Failed to record analysis error")
		}
		log.Warn().Err(err).Msg("Analysis failed")
		return err
	}

	if err := sess.Succeed(result); err != nil {
		log.Error().Err(err).Msg("Failed to record analysis result")
		return err
	}

	log.Info().
		Int("transactions", len(result.Transactions)).
		Msg("Analysis stored")
	return nil
}

// Submit runs Begin and Run in the calling goroutine.
func (r *Runner) Submit(ctx context.Context, sess *Session, docs []domain.InputDocument) error {
	qualifying, err := r.Begin(sess, docs)
	if err != nil {
		return err
	}
	return r.Run(ctx, sess, qualifying)
}
