package pipeline

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

// MockGenerator is a ContentGenerator whose behaviour is set per test.
type MockGenerator struct {
	GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

	mu           sync.Mutex
	calls        int
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
}

func (m *MockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	m.calls++
	m.lastModel = model
	m.lastContents = contents
	m.lastConfig = config
	m.mu.Unlock()

	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, model, contents, config)
	}
	return textResponse(""), nil
}

func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

// scenarioJSON is a single-debit statement answer.
const scenarioJSON = `{
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
