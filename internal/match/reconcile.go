package match

import (
	"context"
	"fmt"
	"log"

	"libhub/pkg/models"
)

// SecondaryCandidate is a record from the secondary source offered for
// cross-source linking.
type SecondaryCandidate struct {
	Code    int64
	Name    string
	Address string
}

// RecordUpdater persists a secondary-source code onto an existing record.
type RecordUpdater interface {
	SetSecondaryCode(ctx context.Context, id int64, code int64) error
}

type ReconcileStats struct {
	Matched       int `json:"matched"`
	Unmatched     int `json:"unmatched"`
	AlreadyLinked int `json:"already_linked"`
}

// Reconcile links every registry record that still lacks a secondary
// code to its counterpart among the candidates, by exact normalized
// name+address key. It is deliberately strict: a record whose key is
// absent from the candidate lookup stays unlinked rather than being
// fuzzily attached to the wrong facility. Fuzzy scoring stays in the
// dry-run classifier, which reports and never writes.
//
// On a candidate key collision the first candidate wins, and an
// attached candidate is consumed so one secondary code never lands on
// two records. Records that already carry a code are skipped, so the
// operation is safe to re-run.
func Reconcile(ctx context.Context, existing []models.LibraryRecord, candidates []SecondaryCandidate, store RecordUpdater) (ReconcileStats, error) {
	var stats ReconcileStats

	byKey := make(map[string]SecondaryCandidate, len(candidates))
	for _, cand := range candidates {
		k := NormalizeName(cand.Name) + NormalizeAddress(cand.Address)
		if k == "" {
			continue
		}
		if _, ok := byKey[k]; !ok {
			byKey[k] = cand
		}
	}

	for i := range existing {
		rec := &existing[i]
		if rec.HasD4LCode() {
			stats.AlreadyLinked++
			continue
		}

		k := NormalizeName(rec.Name) + NormalizeAddress(rec.Address)
		if k == "" {
			stats.Unmatched++
			continue
		}
		cand, ok := byKey[k]
		if !ok {
			stats.Unmatched++
			continue
		}

		if err := store.SetSecondaryCode(ctx, rec.ID, cand.Code); err != nil {
			return stats, fmt.Errorf("link record %d to code %d: %w", rec.ID, cand.Code, err)
		}
		code := cand.Code
		rec.D4LCode = &code
		delete(byKey, k)
		stats.Matched++
	}

	log.Printf("[reconcile] matched=%d unmatched=%d already_linked=%d",
		stats.Matched, stats.Unmatched, stats.AlreadyLinked)
	return stats, nil
}
