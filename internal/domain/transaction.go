package domain

// Transaction is one statement row as extracted by the model.
// The model is asked for Amount as a magnitude, with direction carried by
// TransactionType and Status.
type Transaction struct {
	Date            string   `json:"date"`           // YYYY-MM-DD as requested
	Time            *string  `json:"time,omitempty"` // clock time if printed on the statement
	TransactionType string   `json:"transaction_type"`
	Party           string   `json:"party"`
	Description     string   `json:"description"`
	Amount          float64  `json:"amount"`
	Status          string   `json:"status"`
	Balance         *float64 `json:"balance"` // running balance, nil when not visible
}

// HasTime reports whether the model extracted a clock time for the row.
func (t Transaction) HasTime() bool {
	return t.Time != nil && *t.Time != ""
}

// HasBalance reports whether the running balance was visible on the row.
func (t Transaction) HasBalance() bool {
	return t.Balance != nil
}
