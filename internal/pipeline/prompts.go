package pipeline

import "strings"

// analysisInstruction is sent as the first part of every request, ahead of
// the documents.
var analysisInstruction = []string{
	"You are an expert financial OCR system.",
	"Analyze the provided bank statement documents (images or PDFs).",
	"Extract every single transaction row available in the documents.",
	"Normalize inconsistent terminology.",
	"Extract the date in YYYY-MM-DD format.",
	"Determine the transaction type (Credit/Debit/UPI/etc).",
	"Identify the 'Party' (who paid or who was paid).",
	"Extract the Balance if available in the row.",
	"Report every amount as an absolute value; direction belongs in the transaction type and status.",
	"",
	"After extracting transactions, perform a financial analysis to populate the insights section including:",
	"- Sum of credits and debits.",
	"- Categorize spending into meaningful groups (e.g., Food, Transport, Rent, Utilities, Shopping) and identify the top spending categories by total amount. " +
		"Ensure the 'category' field contains the actual name of the category (e.g. \"Groceries\"), not the word \"category\".",
	"- Identify monthly spending patterns.",
	"- Predict savings and give suggestions.",
}

// BuildInstruction returns the natural-language task description.
func BuildInstruction() string {
	return strings.Join(analysisInstruction, "\n")
}
