package domain

// CategoryMetric is the aggregate spend for one category.
type CategoryMetric struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// MonthlyPattern is the aggregate spend for one month. Month is either a
// calendar month name or YYYY-MM, whichever the model produced.
type MonthlyPattern struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// FinancialInsights holds the aggregates derived from the extracted rows.
type FinancialInsights struct {
	TotalCredits                 float64          `json:"totalCredits"`
	TotalDebits                  float64          `json:"totalDebits"`
	TopSpendingCategories        []CategoryMetric `json:"topSpendingCategories"`
	MonthlyExpenditurePattern    []MonthlyPattern `json:"monthlyExpenditurePattern"`
	PredictedMonthlySavings      float64          `json:"predictedMonthlySavings"`
	ActionableSavingsSuggestions []string         `json:"actionableSavingsSuggestions"`
}

// AnalysisResult is the complete structured answer for one analysis round trip.
// It is created once per successful call and never modified afterwards.
type AnalysisResult struct {
	Transactions []Transaction     `json:"transactions"`
	Insights     FinancialInsights `json:"insights"`
}
