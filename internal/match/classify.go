package match

import (
	"libhub/pkg/models"
)

// DuplicateThreshold is the combined-similarity score above which an
// incoming record is considered a duplicate of an existing one.
const DuplicateThreshold = 0.90

// Pool is the set of existing registry records an incoming record is
// classified against. Entries are kept in insertion order so that
// classification is deterministic; on a normalized-key collision the
// first record seen wins.
type Pool struct {
	entries []poolEntry
	seen    map[string]struct{}
}

type poolEntry struct {
	record  models.LibraryRecord
	nameKey string
	addrKey string
}

func NewPool() *Pool {
	return &Pool{seen: make(map[string]struct{})}
}

// NewPoolFromRecords builds a pool over the given records, preserving
// their order.
func NewPoolFromRecords(records []models.LibraryRecord) *Pool {
	p := NewPool()
	for _, rec := range records {
		p.Add(rec)
	}
	return p
}

func (p *Pool) Add(rec models.LibraryRecord) {
	nameKey := NormalizeName(rec.Name)
	addrKey := NormalizeAddress(rec.Address)

	key := nameKey + "|" + addrKey
	if _, ok := p.seen[key]; ok {
		return
	}
	p.seen[key] = struct{}{}
	p.entries = append(p.entries, poolEntry{record: rec, nameKey: nameKey, addrKey: addrKey})
}

func (p *Pool) Len() int {
	return len(p.entries)
}

// Candidate is one incoming record offered for duplicate classification.
type Candidate struct {
	Code    string `json:"code,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Decision string

const (
	DecisionDuplicate Decision = "duplicate"
	DecisionNew       Decision = "new"
	DecisionSkipped   Decision = "skipped"
)

// Result is the classification outcome for a single candidate. For a
// "new" decision, BestMatch (when non-nil) is the closest same-district
// record that still scored at or below the threshold: the near miss an
// operator wants to eyeball before committing a merge policy.
type Result struct {
	Candidate Candidate             `json:"candidate"`
	Decision  Decision              `json:"decision"`
	BestMatch *models.LibraryRecord `json:"best_match,omitempty"`
	BestScore float64               `json:"best_score,omitempty"`
}

type Report struct {
	Results    []Result `json:"results"`
	Duplicates int      `json:"duplicates"`
	NewRecords int      `json:"new_records"`
	Skipped    int      `json:"skipped"`
}

// ClassifyAll runs the dry-run duplicate check for every candidate
// against the pool. It never mutates anything: the output is a report,
// not a merge.
//
// The normalized address is a hard gate: only records in the same
// administrative district are scored for name similarity. Among those,
// the single best-scoring record decides (strict greater-than, so the
// first-seen entry wins ties), and only a score strictly above
// DuplicateThreshold classifies the candidate as a duplicate.
func ClassifyAll(candidates []Candidate, pool *Pool) Report {
	report := Report{Results: make([]Result, 0, len(candidates))}

	for _, cand := range candidates {
		res := classifyOne(cand, pool)
		switch res.Decision {
		case DecisionDuplicate:
			report.Duplicates++
		case DecisionNew:
			report.NewRecords++
		case DecisionSkipped:
			report.Skipped++
		}
		report.Results = append(report.Results, res)
	}
	return report
}

func classifyOne(cand Candidate, pool *Pool) Result {
	nameKey := NormalizeName(cand.Name)
	addrKey := NormalizeAddress(cand.Address)

	if nameKey == "" || addrKey == "" {
		return Result{Candidate: cand, Decision: DecisionSkipped}
	}

	bestScore := 0.0
	var best *models.LibraryRecord

	for i := range pool.entries {
		entry := &pool.entries[i]
		if entry.addrKey != addrKey {
			continue
		}
		score := CombinedSimilarity(nameKey, entry.nameKey)
		if score > bestScore {
			bestScore = score
			best = &entry.record
		}
	}

	res := Result{Candidate: cand, BestScore: bestScore}
	if best != nil {
		rec := *best
		res.BestMatch = &rec
	}
	if bestScore > DuplicateThreshold {
		res.Decision = DecisionDuplicate
	} else {
		res.Decision = DecisionNew
	}
	return res
}
