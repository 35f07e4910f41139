package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dvloznov/statement-insights/internal/domain"
)

// ContentType is the media type of the exported table.
const ContentType = "text/csv; charset=utf-8"

// columns is the header row, in field order.
var columns = []string{
	"date",
	"time",
	"transaction_type",
	"party",
	"description",
	"amount",
	"status",
	"balance",
}

// Filename is the download name of the exported table.
func Filename() string {
	return "bank_statement_analysis.csv"
}

// Writer wraps csv.Writer for exporting transactions. Fields holding a
// comma, quote or line break are quoted and inner quotes doubled.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteTransactions writes one row per transaction.
func (w *Writer) WriteTransactions(txs []domain.Transaction) error {
	for i := range txs {
		if err := w.csv.Write(transactionToRow(&txs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteTransactions writes the header and every transaction to w and
// flushes.
func WriteTransactions(w io.Writer, txs []domain.Transaction) error {
	cw := NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("WriteTransactions: header: %w", err)
	}
	if err := cw.WriteTransactions(txs); err != nil {
		return fmt.Errorf("WriteTransactions: rows: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteTransactions: flush: %w", err)
	}
	return nil
}

func transactionToRow(t *domain.Transaction) []string {
	row := make([]string, len(columns))
	row[0] = t.Date
	if t.HasTime() {
		row[1] = *t.Time
	}
	row[2] = t.TransactionType
	row[3] = t.Party
	row[4] = t.Description
	row[5] = formatNumber(t.Amount)
	row[6] = t.Status
	if t.HasBalance() {
		row[7] = formatNumber(*t.Balance)
	}
	return row
}

// formatNumber renders the shortest decimal form, 957.5 not 957.50.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
