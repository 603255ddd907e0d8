package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/playoff-odds/internal/store/snapshots"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

func main() {
	n := flag.Int("n", 20, "number of recent snapshots to list")
	dbPath := flag.String("db", "data/snapshots.db", "path to snapshot store")
	show := flag.String("show", "", "print the newest snapshot for this league id as JSON")
	year := flag.Int("year", 0, "season year for -show")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel("warn"))

	store, err := snapshots.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *show != "" {
		if *year == 0 {
			fmt.Fprintln(os.Stderr, "usage: go run ./cmd/inspect_snapshots -show <league> -year <yyyy>")
			os.Exit(1)
		}
		l, err := store.Latest(*show, *year)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(l)
		return
	}

	metas, err := store.List(*n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list: %v\n", err)
		os.Exit(1)
	}
	if len(metas) == 0 {
		fmt.Println("(no data)")
		return
	}

	fmt.Printf("=== Snapshots (showing %d) ===\n", len(metas))
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LEAGUE\tYEAR\tWEEK\tTEAMS\tSIZE\tSAVED")
	fmt.Fprintln(w, "------\t----\t----\t-----\t----\t-----")
	for _, m := range metas {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
			m.LeagueID, m.Year, m.Week, m.Franchises,
			humanize.Bytes(uint64(m.Bytes)), humanize.Time(m.SavedAt))
	}
	w.Flush()
}
