package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/statement-insights/internal/config"
	"github.com/dvloznov/statement-insights/internal/dashboard"
	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/dvloznov/statement-insights/internal/export"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/pipeline"
	"github.com/dvloznov/statement-insights/internal/session"
	"github.com/dvloznov/statement-insights/internal/sources"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithLevel(cfg.Logger.Level)

	switch os.Args[1] {
	case "analyze":
		runAnalyze(cfg, log)
	case "inspect":
		runInspect(cfg, log)
	case "upload":
		runUpload(cfg, log)
	case "schema":
		runSchema(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Statement Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options] <path|gs://bucket/object|gs://bucket/prefix/>...")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Extract transactions and insights from statement images or PDFs")
	fmt.Println("  inspect   List the documents an input resolves to, without analyzing")
	fmt.Println("  upload    Upload a statement file to Cloud Storage for later analysis")
	fmt.Println("  schema    Print the response schema sent to the model")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAnalyze(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	out := fs.String("out", "", "Write the transaction table as CSV to this file")
	top := fs.Int("top", cfg.Dashboard.TopCategories, "Number of spending categories to show")
	asJSON := fs.Bool("json", false, "Print the full analysis result as JSON")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall time limit")
	model := fs.String("model", cfg.Gemini.Model, "Gemini model name")
	fs.Parse(os.Args[2:])

	if fs.NArg() == 0 {
		log.Fatal().Msg("Usage: cli analyze [-out file.csv] [-top N] <path|gs://...>...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	docs := loadDocuments(ctx, cfg, log, fs.Args())

	analyzerCfg := cfg.AnalyzerConfig()
	analyzerCfg.Model = *model
	analyzer, err := pipeline.NewGeminiAnalyzer(ctx, analyzerCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create analyzer")
	}

	sess := session.New()
	runner := session.NewRunner(analyzer, log)
	if err := runner.Submit(ctx, sess, docs); err != nil {
		log.Fatal().Err(err).Str("state", string(sess.State())).Msg("Analysis failed")
	}
	result := sess.Snapshot().Result

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode result")
		}
	} else {
		printReport(os.Stdout, dashboard.Build(result, *top))
	}

	if *out != "" {
		if err := writeCSV(*out, result.Transactions); err != nil {
			log.Fatal().Err(err).Msg("Failed to write CSV")
		}
		fmt.Fprintf(os.Stderr, "Wrote %d transactions to %s\n", len(result.Transactions), *out)
	}
}

func runInspect(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	if fs.NArg() == 0 {
		log.Fatal().Msg("Usage: cli inspect <path|gs://...>...")
	}

	ctx := logger.WithContext(context.Background(), log)
	docs := loadDocuments(ctx, cfg, log, fs.Args())

	fmt.Printf("\n=== Documents (%d) ===\n", len(docs))
	for i, doc := range docs {
		marker := "skip"
		if pipeline.IsQualifying(doc.MediaType) {
			marker = "send"
		}
		fmt.Printf("%d. [%s] %s  %s  %d bytes\n", i+1, marker, doc.Name, doc.MediaType, doc.Size())
	}
	fmt.Println()
}

func runUpload(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local statement file")
	contentType := fs.String("content-type", "", "Content type (detected when empty)")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH [-object NAME]")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := logger.WithContext(context.Background(), log)

	store, err := sources.NewGCSStore(ctx, cfg.Storage.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer store.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := store.UploadFile(ctx, *bucketName, *objectName, *filePath, *contentType); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func runSchema(log zerolog.Logger) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pipeline.AnalysisSchema()); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode schema")
	}
}

// loadDocuments resolves inputs, opening a Cloud Storage client only when a
// gs:// input is present.
func loadDocuments(ctx context.Context, cfg *config.Config, log zerolog.Logger, inputs []string) []domain.InputDocument {
	var store sources.ObjectStore
	for _, in := range inputs {
		if !sources.IsGCSURI(in) {
			continue
		}
		gcsStore, err := sources.NewGCSStore(ctx, cfg.Storage.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer gcsStore.Close()
		store = gcsStore
		break
	}

	loader := sources.NewLoader(store, cfg.Gemini.EncodeConcurrency, log)
	docs, failed := loader.Load(ctx, inputs)
	if len(docs) == 0 {
		log.Fatal().Int("failed", len(failed)).Msg("No readable documents")
	}
	return docs
}

func writeCSV(path string, txs []domain.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writeCSV: create %s: %w", path, err)
	}
	if err := export.WriteTransactions(f, txs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printReport(w io.Writer, view *dashboard.View) {
	fmt.Fprintln(w, "\n=== Summary ===")
	for _, card := range view.Cards {
		fmt.Fprintf(w, "%-22s %s\n", card.Label+":", card.Formatted)
	}

	if len(view.Categories) > 0 {
		fmt.Fprintln(w, "\n=== Top Spending Categories ===")
		for i, c := range view.Categories {
			fmt.Fprintf(w, "%d. %-20s %s\n", i+1, c.Category, dashboard.FormatCurrency(c.Amount))
		}
	}

	if len(view.Monthly) > 0 {
		fmt.Fprintln(w, "\n=== Monthly Expenditure ===")
		for _, m := range view.Monthly {
			fmt.Fprintf(w, "%-10s %s\n", m.Month, dashboard.FormatCurrency(m.Amount))
		}
	}

	if len(view.Suggestions) > 0 {
		fmt.Fprintln(w, "\n=== Suggestions ===")
		for _, s := range view.Suggestions {
			fmt.Fprintf(w, "- %s\n", s)
		}
	}

	fmt.Fprintf(w, "\n=== Transactions (%d) ===\n", len(view.Rows))
	for _, row := range view.Rows {
		sign := "-"
		if row.IsCredit {
			sign = "+"
		}
		balance := "-"
		if row.Balance != nil {
			balance = dashboard.FormatCurrency(*row.Balance)
		}
		fmt.Fprintf(w, "%s  %-10s %s%-12s %-10s %s  (balance %s)\n",
			row.Date, row.TransactionType, sign, row.AmountFormatted, row.Status, row.Party, balance)
	}
	fmt.Fprintln(w)
}
