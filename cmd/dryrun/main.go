package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"libhub/internal/match"
	"libhub/internal/registry"
	"libhub/pkg/database"
)

// Reads candidate records from a CSV (code,name,address header) and
// reports, without writing anything, which of them the registry would
// treat as duplicates.
func main() {
	var (
		input   = flag.String("input", "data/candidates.csv", "input CSV path for candidate records")
		asJSON  = flag.Bool("json", false, "print the full report as JSON")
		timeout = flag.Duration("timeout", 2*time.Minute, "db read timeout")
	)
	flag.Parse()

	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	candidates, err := readCandidates(*input)
	if err != nil {
		log.Fatalf("read candidates failed: %v", err)
	}

	records, err := registry.NewRepo(db).FindAll(ctx)
	if err != nil {
		log.Fatalf("load registry failed: %v", err)
	}
	pool := match.NewPoolFromRecords(records)

	report := match.ClassifyAll(candidates, pool)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("encode report: %v", err)
		}
		return
	}

	for _, res := range report.Results {
		switch res.Decision {
		case match.DecisionDuplicate:
			fmt.Printf("DUPLICATE  %-40s score=%.4f matches %q (id=%d)\n",
				res.Candidate.Name, res.BestScore, res.BestMatch.Name, res.BestMatch.ID)
		case match.DecisionNew:
			if res.BestMatch != nil {
				fmt.Printf("NEW        %-40s near miss %q score=%.4f\n",
					res.Candidate.Name, res.BestMatch.Name, res.BestScore)
			} else {
				fmt.Printf("NEW        %s\n", res.Candidate.Name)
			}
		case match.DecisionSkipped:
			fmt.Printf("SKIPPED    %s\n", res.Candidate.Name)
		}
	}
	fmt.Printf("\n%d candidates against %d registry records: %d duplicates, %d new, %d skipped\n",
		len(report.Results), pool.Len(), report.Duplicates, report.NewRecords, report.Skipped)
}

func readCandidates(path string) ([]match.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range []string{"name", "address"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var out []match.Candidate
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}
		out = append(out, match.Candidate{
			Code:    valueAt(idx, row, "code"),
			Name:    valueAt(idx, row, "name"),
			Address: valueAt(idx, row, "address"),
		})
	}
	return out, nil
}

func valueAt(idx map[string]int, row []string, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
