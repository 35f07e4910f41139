package pipeline

import "google.golang.org/genai"

// AnalysisSchema declares the exact response shape the model must return.
// A fresh value is built on every call so requests never share it.
func AnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"transactions": {
				Type:  genai.TypeArray,
				Items: transactionSchema(),
			},
			"insights": insightsSchema(),
		},
		Required:         []string{"transactions", "insights"},
		PropertyOrdering: []string{"transactions", "insights"},
	}
}

func transactionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":             {Type: genai.TypeString, Description: "YYYY-MM-DD format"},
			"time":             {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"transaction_type": {Type: genai.TypeString, Description: "debit, credit, upi, card, charge, atm, etc."},
			"party":            {Type: genai.TypeString, Description: "Name of the payer or payee"},
			"description":      {Type: genai.TypeString},
			"amount":           {Type: genai.TypeNumber, Description: "Absolute value of the transaction"},
			"status":           {Type: genai.TypeString, Description: "successful, failed, reversed, pending"},
			"balance": {
				Type:        genai.TypeNumber,
				Nullable:    genai.Ptr(true),
				Description: "The balance after this transaction if visible",
			},
		},
		Required: []string{"date", "transaction_type", "party", "description", "amount", "status"},
		PropertyOrdering: []string{
			"date", "time", "transaction_type", "party", "description", "amount", "status", "balance",
		},
	}
}

func insightsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"totalCredits": {Type: genai.TypeNumber},
			"totalDebits":  {Type: genai.TypeNumber},
			"topSpendingCategories": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category": {
							Type: genai.TypeString,
							Description: "Specific name of the spending category (e.g., 'Groceries', 'Rent', 'Utilities', 'Shopping'). " +
								"Do not use the word 'category'.",
						},
						"amount": {Type: genai.TypeNumber},
					},
					Required: []string{"category", "amount"},
				},
			},
			"monthlyExpenditurePattern": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"month":  {Type: genai.TypeString, Description: "Month name or YYYY-MM"},
						"amount": {Type: genai.TypeNumber},
					},
					Required: []string{"month", "amount"},
				},
			},
			"predictedMonthlySavings": {Type: genai.TypeNumber},
			"actionableSavingsSuggestions": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{
			"totalCredits",
			"totalDebits",
			"topSpendingCategories",
			"monthlyExpenditurePattern",
			"predictedMonthlySavings",
			"actionableSavingsSuggestions",
		},
	}
}
