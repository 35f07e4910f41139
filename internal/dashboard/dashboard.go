// Package dashboard turns an analysis result into the view model the
// presentation layer renders: summary cards, chart series, suggestions and
// per-row table hints.
package dashboard

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dvloznov/statement-insights/internal/domain"
)

// DefaultTopCategories is the number of categories charted when the caller
// does not choose.
const DefaultTopCategories = 6

// Tone is a presentation hint for a value.
type Tone string

const (
	ToneOK     Tone = "ok"
	ToneWarn   Tone = "warn"
	ToneDanger Tone = "danger"
	ToneMuted  Tone = "muted"
)

// Card is one summary figure.
type Card struct {
	Label     string  `json:"label"`
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
	Tone      Tone    `json:"tone"`
}

// Row is a transaction with its display hints.
type Row struct {
	domain.Transaction
	IsCredit        bool   `json:"is_credit"`
	StatusTone      Tone   `json:"status_tone"`
	AmountFormatted string `json:"amount_formatted"`
}

// View is the full dashboard for one result.
type View struct {
	Cards       []Card                  `json:"cards"`
	Categories  []domain.CategoryMetric `json:"categories"`
	Monthly     []domain.MonthlyPattern `json:"monthly"`
	Suggestions []string                `json:"suggestions"`
	Rows        []Row                   `json:"rows"`
}

// Build derives the view model. Categories are ordered by amount, largest
// first with ties broken by name, and cut to topN (topN <= 0 keeps all).
// Months keep the order the model returned.
func Build(result *domain.AnalysisResult, topN int) *View {
	if result == nil {
		return &View{
			Cards:       []Card{},
			Categories:  []domain.CategoryMetric{},
			Monthly:     []domain.MonthlyPattern{},
			Suggestions: []string{},
			Rows:        []Row{},
		}
	}
	in := result.Insights

	net := in.TotalCredits - in.TotalDebits
	netTone := ToneOK
	if net < 0 {
		netTone = ToneDanger
	}

	view := &View{
		Cards: []Card{
			newCard("Total Credits", in.TotalCredits, ToneOK),
			newCard("Total Debits", in.TotalDebits, ToneDanger),
			newCard("Net Flow", net, netTone),
			newCard("Est. Monthly Savings", in.PredictedMonthlySavings, ToneOK),
		},
		Categories:  topCategories(in.TopSpendingCategories, topN),
		Monthly:     append([]domain.MonthlyPattern{}, in.MonthlyExpenditurePattern...),
		Suggestions: append([]string{}, in.ActionableSavingsSuggestions...),
		Rows:        make([]Row, 0, len(result.Transactions)),
	}

	for _, t := range result.Transactions {
		view.Rows = append(view.Rows, Row{
			Transaction:     t,
			IsCredit:        IsCredit(t.TransactionType),
			StatusTone:      StatusTone(t.Status),
			AmountFormatted: FormatCurrency(t.Amount),
		})
	}

	return view
}

func newCard(label string, amount float64, tone Tone) Card {
	return Card{Label: label, Amount: amount, Formatted: FormatCurrency(amount), Tone: tone}
}

func topCategories(in []domain.CategoryMetric, topN int) []domain.CategoryMetric {
	out := append([]domain.CategoryMetric{}, in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// IsCredit reports whether a transaction type reads as money coming in.
func IsCredit(transactionType string) bool {
	return strings.Contains(strings.ToLower(transactionType), "credit")
}

// StatusTone maps a transaction status onto a display tone.
func StatusTone(status string) Tone {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "failed":
		return ToneDanger
	case "pending":
		return ToneWarn
	case "reversed":
		return ToneMuted
	default:
		return ToneOK
	}
}

// FormatCurrency renders v as US dollars: "$1,234.50", "-$12.00".
func FormatCurrency(v float64) string {
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	if v < 0 && cents != 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}
