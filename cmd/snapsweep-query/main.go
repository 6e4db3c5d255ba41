package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"snapsweep/internal/exitcodes"
	"snapsweep/internal/history"
)

func main() {
	// Parse command-line flags
	dbPath := flag.String("db", "/var/lib/snapsweep/history.db", "Path to history database")
	recent := flag.Int("recent", 0, "Show N most recent snapshot outcomes")
	runs := flag.Int("runs", 0, "Show N most recent cleanup runs")
	action := flag.String("action", "", "Filter outcomes by action (DELETE, SKIP, ERROR)")
	config := flag.String("config", "", "Filter outcomes by snapper config")
	limit := flag.Int("limit", 50, "Maximum rows for filtered queries")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	db, err := history.Open(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	switch {
	case *runs > 0:
		showRuns(db, *runs, *jsonOutput)
	case *recent > 0:
		records, err := db.RecentOutcomes(*recent)
		showOutcomes(records, err, *jsonOutput)
	case *action != "":
		records, err := db.OutcomesByAction(*action, *limit)
		showOutcomes(records, err, *jsonOutput)
	case *config != "":
		records, err := db.OutcomesByConfig(*config, *limit)
		showOutcomes(records, err, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  snapsweep-query --recent 10          # Show 10 most recent outcomes")
		fmt.Println("  snapsweep-query --runs 5             # Show 5 most recent cleanup runs")
		fmt.Println("  snapsweep-query --action ERROR       # Show failed delete attempts")
		fmt.Println("  snapsweep-query --config home        # Show outcomes for config 'home'")
		os.Exit(exitcodes.Failure)
	}
}

func showRuns(db *history.DB, limit int, jsonOutput bool) {
	records, err := db.RecentRuns(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to query runs: %v", err)
	}

	if jsonOutput {
		printJSON(records)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tCONFIG\tMAX-KEEP\tDISCOVERED\tDELETED\tATTEMPTS")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Config,
			r.MaxKeep,
			formatCount(r.Discovered),
			formatCount(r.Deleted),
			formatCount(r.Attempts),
		)
	}
	w.Flush()
}

func showOutcomes(records []history.OutcomeRecord, err error, jsonOutput bool) {
	if err != nil {
		log.Fatalf("ERROR: Failed to query outcomes: %v", err)
	}

	if jsonOutput {
		printJSON(records)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tCONFIG\tACTION\tNUMBER\tPATH\tDETAIL")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Config,
			r.Action,
			r.Number,
			r.Path,
			r.Detail,
		)
	}
	w.Flush()
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("ERROR: Failed to encode JSON: %v", err)
	}
	fmt.Println(string(data))
}

func formatCount(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
