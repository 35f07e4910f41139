package session

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// MockAnalyzer is a pipeline.Analyzer whose behaviour is set per test.
type MockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, docs []domain.InputDocument) (*domain.AnalysisResult, error)
	calls       int
	lastDocs    []domain.InputDocument
}

func (m *MockAnalyzer) Analyze(ctx context.Context, docs []domain.InputDocument) (*domain.AnalysisResult, error) {
	m.calls++
	m.lastDocs = docs
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, docs)
	}
	return &domain.AnalysisResult{}, nil
}

// stubGenerator answers every request with fixed text.
type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: g.text}}}},
		},
	}, nil
}

const statementJSON = `{
  "transactions": [
    {"date": "2024-01-05", "transaction_type": "debit", "party": "Acme Store", "description": "Purchase", "amount": 42.50, "status": "successful", "balance": 957.50}
  ],
  "insights": {
    "totalCredits": 0,
    "totalDebits": 42.50,
    "topSpendingCategories": [{"category": "Shopping", "amount": 42.50}],
    "monthlyExpenditurePattern": [{"month": "2024-01", "amount": 42.50}],
    "predictedMonthlySavings": 0,
    "actionableSavingsSuggestions": ["Reduce discretionary shopping"]
  }
}`

func newTestRunner(a pipeline.Analyzer) *Runner {
	return NewRunner(a, logger.NewWithWriter(&bytes.Buffer{}))
}

func TestRunner_SubmitSuccess(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{text: statementJSON}
	analyzer := pipeline.NewGeminiAnalyzerWithGenerator(gen, pipeline.AnalyzerConfig{}, logger.NewWithWriter(&bytes.Buffer{}))
	runner := newTestRunner(analyzer)
	sess := New()

	err := runner.Submit(ctx, sess, []domain.InputDocument{
		{Name: "statement.pdf", MediaType: "application/pdf", Data: []byte("%PDF-1.7")},
	})
	require.NoError(t, err)

	snap := sess.Snapshot()
	assert.Equal(t, StateSuccess, snap.State)
	require.NotNil(t, snap.Result)
	require.Len(t, snap.Result.Transactions, 1)
	assert.Equal(t, "debit", snap.Result.Transactions[0].TransactionType)
	assert.Equal(t, 42.5, snap.Result.Transactions[0].Amount)
	assert.Equal(t, 42.5, snap.Result.Insights.TotalDebits)
	assert.Equal(t, "Shopping", snap.Result.Insights.TopSpendingCategories[0].Category)
}

func TestRunner_SubmitTransportFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("connection reset by peer")}
	analyzer := pipeline.NewGeminiAnalyzerWithGenerator(gen, pipeline.AnalyzerConfig{}, logger.NewWithWriter(&bytes.Buffer{}))
	runner := newTestRunner(analyzer)
	sess := New()

	err := runner.Submit(context.Background(), sess, []domain.InputDocument{
		{Name: "scan.png", MediaType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
	})
	require.Error(t, err)

	snap := sess.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "connection reset by peer", snap.Error)
	assert.Nil(t, snap.Result)
}

func TestRunner_NoQualifyingDocumentsStaysIdle(t *testing.T) {
	mock := &MockAnalyzer{}
	runner := newTestRunner(mock)
	sess := New()

	err := runner.Submit(context.Background(), sess, []domain.InputDocument{
		{Name: "notes.txt", MediaType: "text/plain", Data: []byte("hello")},
	})
	assert.ErrorIs(t, err, ErrNoQualifyingDocuments)
	assert.Equal(t, StateIdle, sess.State())
	assert.Zero(t, mock.calls)
}

func TestRunner_BeginPassesOnlyQualifying(t *testing.T) {
	mock := &MockAnalyzer{}
	runner := newTestRunner(mock)
	sess := New()

	docs := []domain.InputDocument{
		{Name: "a.jpg", MediaType: "image/jpeg", Data: []byte("a")},
		{Name: "b.docx", MediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Data: []byte("b")},
		{Name: "c.pdf", MediaType: "application/pdf", Data: []byte("c")},
	}
	require.NoError(t, runner.Submit(context.Background(), sess, docs))

	require.Len(t, mock.lastDocs, 2)
	assert.Equal(t, "a.jpg", mock.lastDocs[0].Name)
	assert.Equal(t, "c.pdf", mock.lastDocs[1].Name)
	assert.Equal(t, 2, sess.Snapshot().FileCount)
}

func TestRunner_BusySessionIsNotResubmitted(t *testing.T) {
	mock := &MockAnalyzer{}
	runner := newTestRunner(mock)
	sess := New()
	require.NoError(t, sess.Begin(1))

	err := runner.Submit(context.Background(), sess, []domain.InputDocument{
		{Name: "a.pdf", MediaType: "application/pdf", Data: []byte("a")},
	})
	assert.ErrorIs(t, err, ErrBusy)
	assert.Zero(t, mock.calls)
}

func TestRunner_RunLogsSessionFields(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewRunner(&MockAnalyzer{
		AnalyzeFunc: func(ctx context.Context, docs []domain.InputDocument) (*domain.AnalysisResult, error) {
			return nil, errors.New("quota exceeded")
		},
	}, logger.NewWithWriter(buf))

	sess := New()
	docs := []domain.InputDocument{{Name: "a.pdf", MediaType: "application/pdf", Data: []byte("a")}}
	err := r.Submit(context.Background(), sess, docs)
	require.EqualError(t, err, "quota exceeded")
	assert.Equal(t, StateError, sess.State())

	out := buf.String()
	assert.Contains(t, out, `"session_id":"`+sess.ID()+`"`)
	assert.Contains(t, out, `"documents":1`)
	assert.Contains(t, out, "Analysis failed")
}
