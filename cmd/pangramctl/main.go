// Command pangramctl inspects and maintains the Pangram history database.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mrexodia/pangram-webui/internal/config"
	"github.com/mrexodia/pangram-webui/internal/credits"
	"github.com/mrexodia/pangram-webui/internal/store"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: pangramctl <command> [options]

Commands:
  stats                 Show usage statistics
  list [-n LIMIT]       List recent analyses (default 20)
  show ID [--json]      Show full analysis details
  export [-o PATH]      Export all analyses to JSON (stdout by default)
  search QUERY [-n N]   Search analyses by text content
  delete ID [-f]        Delete an analysis (asks for confirmation)
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "pangramctl: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	switch command {
	case "stats":
		return cmdStats(args)
	case "list":
		return cmdList(args)
	case "show":
		return cmdShow(args)
	case "export":
		return cmdExport(args)
	case "search":
		return cmdSearch(args)
	case "delete":
		return cmdDelete(args)
	case "-h", "--help", "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// openStore opens the shared history database. The inspector runs as its
// own process; concurrent web writes are handled by the engine's locking.
func openStore() (*store.SQLiteStore, *sql.DB, error) {
	db, err := store.Open(config.DatabasePath())
	if err != nil {
		return nil, nil, err
	}
	if err := store.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewSQLiteStore(db), db, nil
}

func cmdStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := context.Background()

	stats, err := s.AggregateStats(ctx)
	if err != nil {
		return err
	}
	wordCounts, err := s.ListWordCounts(ctx)
	if err != nil {
		return err
	}
	totalCredits := credits.Total(wordCounts)

	fmt.Println("=== Pangram Usage Stats ===")
	fmt.Printf("Total analyses:  %d\n", stats.TotalAnalyses)
	fmt.Printf("Total words:     %s\n", groupThousands(stats.TotalWords))
	fmt.Printf("Total credits:   %d ($%.2f)\n", totalCredits, float64(totalCredits)*credits.DollarsPerCredit)
	if stats.FirstAnalysis != "" {
		fmt.Printf("First analysis:  %s\n", stats.FirstAnalysis)
		fmt.Printf("Last analysis:   %s\n", stats.LastAnalysis)
	}
	return nil
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	var limit int
	fs.IntVar(&limit, "n", 20, "number of results")
	fs.IntVar(&limit, "limit", 20, "number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := s.ListRecent(context.Background(), limit)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println("No analyses found.")
		return nil
	}

	fmt.Printf("%-5s %-20s %-7s %-8s %-12s %s\n", "ID", "Date", "Words", "Credits", "Result", "Preview")
	fmt.Println(strings.Repeat("-", 100))
	for _, row := range rows {
		preview := strings.ReplaceAll(row.Preview, "\n", " ")
		if len(row.Preview) >= 60 {
			preview += "..."
		}
		fmt.Printf("%-5d %-20s %-7d %-8d %-12s %s\n",
			row.ID, displayDate(row.CreatedAt), row.WordCount,
			credits.ForWordCount(row.WordCount), row.PredictionShort, preview)
	}
	return nil
}

func cmdShow(args []string) error {
	if len(args) < 1 {
		return errors.New("show requires an analysis ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid analysis ID %q", args[0])
	}

	fs := flag.NewFlagSet("show", flag.ExitOnError)
	showJSON := fs.Bool("json", false, "include raw JSON response")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	s, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := s.GetByID(context.Background(), id)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Printf("Analysis %d not found.\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("=== Analysis #%d ===\n", a.ID)
	fmt.Printf("Date:        %s\n", a.CreatedAt)
	fmt.Printf("Words:       %d\n", a.WordCount)
	fmt.Printf("Credits:     %d\n", credits.ForWordCount(a.WordCount))
	fmt.Printf("Headline:    %s\n", a.Headline)
	fmt.Printf("Prediction:  %s\n", a.PredictionShort)
	fmt.Printf("AI:          %.1f%%\n", a.FractionAI*100)
	fmt.Printf("AI-Assisted: %.1f%%\n", a.FractionAIAssisted*100)
	fmt.Printf("Human:       %.1f%%\n", a.FractionHuman*100)
	fmt.Println()
	fmt.Println("=== Text ===")
	fmt.Println(a.Text)

	if *showJSON {
		pretty, err := prettyJSON(a.ResponseJSON)
		if err != nil {
			return fmt.Errorf("stored response payload is not valid JSON: %w", err)
		}
		fmt.Println()
		fmt.Println("=== Response JSON ===")
		fmt.Println(pretty)
	}
	return nil
}

// exportRecord carries parsed payloads so the export is portable JSON,
// not doubly-encoded strings.
type exportRecord struct {
	ID        int64           `json:"id"`
	CreatedAt string          `json:"created_at"`
	Text      string          `json:"text"`
	WordCount int             `json:"word_count"`
	Credits   int             `json:"credits"`
	Request   json.RawMessage `json:"request"`
	Response  json.RawMessage `json:"response"`
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var output string
	fs.StringVar(&output, "o", "", "output file (default: stdout)")
	fs.StringVar(&output, "output", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	all, err := s.ListAll(context.Background())
	if err != nil {
		return err
	}

	records := make([]exportRecord, 0, len(all))
	for _, a := range all {
		records = append(records, exportRecord{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			Text:      a.Text,
			WordCount: a.WordCount,
			Credits:   a.Credits,
			Request:   json.RawMessage(a.RequestJSON),
			Response:  json.RawMessage(a.ResponseJSON),
		})
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	if output != "" {
		if err := os.WriteFile(output, out, 0o644); err != nil {
			return err
		}
		fmt.Printf("Exported %d analyses to %s\n", len(records), output)
		return nil
	}
	fmt.Println(string(out))
	return nil
}

func cmdSearch(args []string) error {
	if len(args) < 1 {
		return errors.New("search requires a query")
	}
	query := args[0]

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var limit int
	fs.IntVar(&limit, "n", 20, "number of results")
	fs.IntVar(&limit, "limit", 20, "number of results")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	s, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := s.SearchByText(context.Background(), query, limit)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Printf("No analyses matching '%s'\n", query)
		return nil
	}

	fmt.Printf("Found %d matching analyses:\n\n", len(rows))
	for _, row := range rows {
		preview := strings.ReplaceAll(row.Preview, "\n", " ")
		fmt.Printf("#%d [%s] %s (%d words)\n", row.ID, row.PredictionShort, displayDate(row.CreatedAt), row.WordCount)
		fmt.Printf("  %s...\n\n", preview)
	}
	return nil
}

func cmdDelete(args []string) error {
	if len(args) < 1 {
		return errors.New("delete requires an analysis ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid analysis ID %q", args[0])
	}

	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	var force bool
	fs.BoolVar(&force, "f", false, "skip confirmation")
	fs.BoolVar(&force, "force", false, "skip confirmation")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	s, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := context.Background()

	if _, err := s.GetByID(ctx, id); errors.Is(err, store.ErrNotFound) {
		fmt.Printf("Analysis %d not found.\n", id)
		return nil
	} else if err != nil {
		return err
	}

	if !force {
		fmt.Printf("Delete analysis #%d? [y/N] ", id)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if _, err := s.DeleteByID(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted analysis #%d\n", id)
	return nil
}

// displayDate renders a stored ISO-8601 timestamp as "YYYY-MM-DD HH:MM:SS".
func displayDate(createdAt string) string {
	if len(createdAt) >= 19 {
		createdAt = createdAt[:19]
	}
	return strings.Replace(createdAt, "T", " ", 1)
}

// groupThousands formats n with comma separators.
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func prettyJSON(raw string) (string, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
