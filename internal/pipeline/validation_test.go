package pipeline

import (
	"strings"
	"testing"

	"github.com/dvloznov/statement-insights/internal/domain"
)

func strPtr(s string) *string      { return &s }
func floatPtr(f float64) *float64 { return &f }

func validTransaction() wireTransaction {
	return wireTransaction{
		Date:            strPtr("2024-01-05"),
		TransactionType: strPtr("debit"),
		Party:           strPtr("Acme Store"),
		Description:     strPtr("Purchase"),
		Amount:          floatPtr(42.5),
		Status:          strPtr("successful"),
	}
}

func TestValidateTransaction(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(tx *wireTransaction)
		wantErr string
	}{
		{name: "valid", mutate: func(tx *wireTransaction) {}},
		{name: "missing date", mutate: func(tx *wireTransaction) { tx.Date = nil }, wantErr: `"date"`},
		{name: "missing party", mutate: func(tx *wireTransaction) { tx.Party = nil }, wantErr: `"party"`},
		{name: "missing status", mutate: func(tx *wireTransaction) { tx.Status = nil }, wantErr: `"status"`},
		{name: "day first date", mutate: func(tx *wireTransaction) { tx.Date = strPtr("05/01/2024") }},
		{name: "negative amount", mutate: func(tx *wireTransaction) { tx.Amount = floatPtr(-1) }},
		{name: "zero amount", mutate: func(tx *wireTransaction) { tx.Amount = floatPtr(0) }},
		{name: "null time and balance", mutate: func(tx *wireTransaction) { tx.Time = nil; tx.Balance = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)

			err := validateTransaction(tx)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validateTransaction() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("validateTransaction() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateTransaction() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateInsights(t *testing.T) {
	valid := func() *wireInsights {
		return &wireInsights{
			TotalCredits:                 floatPtr(1000),
			TotalDebits:                  floatPtr(42.5),
			TopSpendingCategories:        &[]wireCategory{{Category: strPtr("Shopping"), Amount: floatPtr(42.5)}},
			MonthlyExpenditurePattern:    &[]wireMonth{{Month: strPtr("January"), Amount: floatPtr(42.5)}},
			PredictedMonthlySavings:      floatPtr(957.5),
			ActionableSavingsSuggestions: &[]string{},
		}
	}

	tests := []struct {
		name    string
		mutate  func(in *wireInsights)
		wantErr string
	}{
		{name: "valid", mutate: func(in *wireInsights) {}},
		{name: "missing totalCredits", mutate: func(in *wireInsights) { in.TotalCredits = nil }, wantErr: "totalCredits"},
		{name: "missing suggestions", mutate: func(in *wireInsights) { in.ActionableSavingsSuggestions = nil }, wantErr: "actionableSavingsSuggestions"},
		{name: "negative debits", mutate: func(in *wireInsights) { in.TotalDebits = floatPtr(-3) }},
		{name: "negative savings allowed", mutate: func(in *wireInsights) { in.PredictedMonthlySavings = floatPtr(-200) }},
		{
			name:    "category without amount",
			mutate:  func(in *wireInsights) { in.TopSpendingCategories = &[]wireCategory{{Category: strPtr("Food")}} },
			wantErr: "topSpendingCategories[0]",
		},
		{
			name:    "month without name",
			mutate:  func(in *wireInsights) { in.MonthlyExpenditurePattern = &[]wireMonth{{Amount: floatPtr(1)}} },
			wantErr: "monthlyExpenditurePattern[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(in)

			err := validateInsights(in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validateInsights() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateInsights() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWireResult_ReportsRowIndex(t *testing.T) {
	bad := validTransaction()
	bad.Status = nil

	w := &wireResult{
		Transactions: &[]wireTransaction{validTransaction(), bad},
		Insights: &wireInsights{
			TotalCredits:                 floatPtr(0),
			TotalDebits:                  floatPtr(0),
			TopSpendingCategories:        &[]wireCategory{},
			MonthlyExpenditurePattern:    &[]wireMonth{},
			PredictedMonthlySavings:      floatPtr(0),
			ActionableSavingsSuggestions: &[]string{},
		},
	}

	err := validateWireResult(w)
	if err == nil {
		t.Fatal("validateWireResult() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "transactions[1]") {
		t.Errorf("validateWireResult() error = %q, want row index transactions[1]", err)
	}
}

func TestAnomalies(t *testing.T) {
	result := &domain.AnalysisResult{
		Transactions: []domain.Transaction{
			{Date: "2024-01-05", Amount: 42.5},
			{Date: "05/01/2024", Amount: 10},
			{Date: "2024-02-30", Amount: -3},
		},
		Insights: domain.FinancialInsights{TotalCredits: 100, TotalDebits: -1, PredictedMonthlySavings: -50},
	}

	got := Anomalies(result)
	want := []string{
		`transactions[1]: date "05/01/2024" is not YYYY-MM-DD`,
		`transactions[2]: date "2024-02-30" is not YYYY-MM-DD`,
		"transactions[2]: amount -3 is negative",
		"insights: totalDebits -1 is negative",
	}
	if len(got) != len(want) {
		t.Fatalf("Anomalies() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Anomalies()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if clean := Anomalies(&domain.AnalysisResult{Transactions: []domain.Transaction{{Date: "2024-01-05"}}}); len(clean) != 0 {
		t.Errorf("Anomalies() on a clean result = %q, want none", clean)
	}
	if Anomalies(nil) != nil {
		t.Error("Anomalies(nil) should be nil")
	}
}
