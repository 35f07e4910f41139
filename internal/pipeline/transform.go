package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/dvloznov/statement-insights/internal/domain"
)

// The wire types mirror AnalysisSchema with pointers, so that a required
// field that is absent or null can be told apart from a zero value.
type wireResult struct {
	Transactions *[]wireTransaction `json:"transactions"`
	Insights     *wireInsights      `json:"insights"`
}

type wireTransaction struct {
	Date            *string  `json:"date"`
	Time            *string  `json:"time"`
	TransactionType *string  `json:"transaction_type"`
	Party           *string  `json:"party"`
	Description     *string  `json:"description"`
	Amount          *float64 `json:"amount"`
	Status          *string  `json:"status"`
	Balance         *float64 `json:"balance"`
}

type wireInsights struct {
	TotalCredits                 *float64        `json:"totalCredits"`
	TotalDebits                  *float64        `json:"totalDebits"`
	TopSpendingCategories        *[]wireCategory `json:"topSpendingCategories"`
	MonthlyExpenditurePattern    *[]wireMonth    `json:"monthlyExpenditurePattern"`
	PredictedMonthlySavings      *float64        `json:"predictedMonthlySavings"`
	ActionableSavingsSuggestions *[]string       `json:"actionableSavingsSuggestions"`
}

type wireCategory struct {
	Category *string  `json:"category"`
	Amount   *float64 `json:"amount"`
}

type wireMonth struct {
	Month  *string  `json:"month"`
	Amount *float64 `json:"amount"`
}

// DecodeAnalysisResult parses the model's text answer into an AnalysisResult.
// Any failure, including an empty answer, is a *ResponseShapeError.
func DecodeAnalysisResult(raw string) (*domain.AnalysisResult, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, newResponseShapeError("empty response from model", nil)
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		return nil, newResponseShapeError("unmarshal JSON", err)
	}

	if err := validateWireResult(&wire); err != nil {
		return nil, newResponseShapeError("", err)
	}

	return wire.toDomain(), nil
}

// toDomain must only be called after validateWireResult succeeded.
func (w *wireResult) toDomain() *domain.AnalysisResult {
	txs := make([]domain.Transaction, 0, len(*w.Transactions))
	for _, t := range *w.Transactions {
		txs = append(txs, domain.Transaction{
			Date:            *t.Date,
			Time:            t.Time,
			TransactionType: *t.TransactionType,
			Party:           *t.Party,
			Description:     *t.Description,
			Amount:          *t.Amount,
			Status:          *t.Status,
			Balance:         t.Balance,
		})
	}

	in := w.Insights
	cats := make([]domain.CategoryMetric, 0, len(*in.TopSpendingCategories))
	for _, c := range *in.TopSpendingCategories {
		cats = append(cats, domain.CategoryMetric{Category: *c.Category, Amount: *c.Amount})
	}
	months := make([]domain.MonthlyPattern, 0, len(*in.MonthlyExpenditurePattern))
	for _, m := range *in.MonthlyExpenditurePattern {
		months = append(months, domain.MonthlyPattern{Month: *m.Month, Amount: *m.Amount})
	}
	suggestions := append(make([]string, 0, len(*in.ActionableSavingsSuggestions)), *in.ActionableSavingsSuggestions...)

	return &domain.AnalysisResult{
		Transactions: txs,
		Insights: domain.FinancialInsights{
			TotalCredits:                 *in.TotalCredits,
			TotalDebits:                  *in.TotalDebits,
			TopSpendingCategories:        cats,
			MonthlyExpenditurePattern:    months,
			PredictedMonthlySavings:      *in.PredictedMonthlySavings,
			ActionableSavingsSuggestions: suggestions,
		},
	}
}

// cleanModelJSON strips Markdown fences and surrounding chatter in case the
// model ignored the JSON response type.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// ```json ... ``` or ``` ... ```
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return strings.Trim(s, "`")
		}
		s = strings.TrimSpace(s[idx+1:])
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only the outermost object.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
		}
	}

	return strings.TrimSpace(s)
}
