package pipeline

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/statement-insights/internal/domain"
)

// validateWireResult checks the decoded answer against the required fields
// of AnalysisSchema. Values are not judged here; see Anomalies.
func validateWireResult(w *wireResult) error {
	if w.Transactions == nil {
		return errors.New("missing required field \"transactions\"")
	}
	if w.Insights == nil {
		return errors.New("missing required field \"insights\"")
	}

	for i, t := range *w.Transactions {
		if err := validateTransaction(t); err != nil {
			return fmt.Errorf("transactions[%d]: %w", i, err)
		}
	}

	if err := validateInsights(w.Insights); err != nil {
		return fmt.Errorf("insights: %w", err)
	}
	return nil
}

func validateTransaction(t wireTransaction) error {
	required := []struct {
		name    string
		present bool
	}{
		{"date", t.Date != nil},
		{"transaction_type", t.TransactionType != nil},
		{"party", t.Party != nil},
		{"description", t.Description != nil},
		{"amount", t.Amount != nil},
		{"status", t.Status != nil},
	}
	for _, f := range required {
		if !f.present {
			return fmt.Errorf("missing required field %q", f.name)
		}
	}
	return nil
}

func validateInsights(in *wireInsights) error {
	switch {
	case in.TotalCredits == nil:
		return errors.New("missing required field \"totalCredits\"")
	case in.TotalDebits == nil:
		return errors.New("missing required field \"totalDebits\"")
	case in.TopSpendingCategories == nil:
		return errors.New("missing required field \"topSpendingCategories\"")
	case in.MonthlyExpenditurePattern == nil:
		return errors.New("missing required field \"monthlyExpenditurePattern\"")
	case in.PredictedMonthlySavings == nil:
		return errors.New("missing required field \"predictedMonthlySavings\"")
	case in.ActionableSavingsSuggestions == nil:
		return errors.New("missing required field \"actionableSavingsSuggestions\"")
	}

	for i, c := range *in.TopSpendingCategories {
		if c.Category == nil || c.Amount == nil {
			return fmt.Errorf("topSpendingCategories[%d]: category and amount are required", i)
		}
	}
	for i, m := range *in.MonthlyExpenditurePattern {
		if m.Month == nil || m.Amount == nil {
			return fmt.Errorf("monthlyExpenditurePattern[%d]: month and amount are required", i)
		}
	}
	return nil
}

// Anomalies lists values in a schema-conforming result that break the
// extraction rules given to the model: dates not in YYYY-MM-DD and
// negative amounts or totals. The result is returned to the caller as is;
// the list is only for logging.
func Anomalies(result *domain.AnalysisResult) []string {
	if result == nil {
		return nil
	}

	var out []string
	for i, t := range result.Transactions {
		if _, err := civil.ParseDate(t.Date); err != nil {
			out = append(out, fmt.Sprintf("transactions[%d]: date %q is not YYYY-MM-DD", i, t.Date))
		}
		if t.Amount < 0 {
			out = append(out, fmt.Sprintf("transactions[%d]: amount %v is negative", i, t.Amount))
		}
	}
	if result.Insights.TotalCredits < 0 {
		out = append(out, fmt.Sprintf("insights: totalCredits %v is negative", result.Insights.TotalCredits))
	}
	if result.Insights.TotalDebits < 0 {
		out = append(out, fmt.Sprintf("insights: totalDebits %v is negative", result.Insights.TotalDebits))
	}
	return out
}
