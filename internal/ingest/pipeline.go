package ingest

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"libhub/internal/match"
	"libhub/pkg/models"
)

// Notifier pushes progress events to connected clients. A nil notifier
// is valid and means no events.
type Notifier interface {
	BroadcastJSON(v any)
}

// PageEvent is broadcast after every committed page.
type PageEvent struct {
	Type     string    `json:"type"`
	Source   string    `json:"source"`
	Page     int       `json:"page"`
	Inserted int       `json:"inserted"`
	Skipped  int       `json:"skipped"`
	At       time.Time `json:"at"`
}

type Stats struct {
	Pages    int `json:"pages"`
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Pipeline drives paginated ingestion from an external source into the
// registry. Each page is committed in its own transaction, so a failure
// mid-run keeps everything already committed and the next run resumes
// by skipping codes it has seen.
type Pipeline struct {
	Repo     Repository
	Hub      Notifier
	PageSize int
}

func NewPipeline(repo Repository, hub Notifier, pageSize int) *Pipeline {
	return &Pipeline{Repo: repo, Hub: hub, PageSize: pageSize}
}

// IngestPrimary walks the primary source page by page and inserts every
// record whose code is not yet in the registry. A page shorter than the
// page size ends the walk, which means a feed whose last page is exactly
// full costs one extra, empty fetch.
func (p *Pipeline) IngestPrimary(ctx context.Context, src SourceClient) (Stats, error) {
	var stats Stats

	records, err := p.Repo.FindAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("snapshot registry: %w", err)
	}
	known := SnapshotKnownCodes(records)

	for page := 1; ; page++ {
		raws, err := src.FetchPage(ctx, page, p.PageSize)
		if err != nil {
			return stats, fmt.Errorf("fetch %s page %d: %w", src.Name(), page, err)
		}
		stats.Pages++
		stats.Fetched += len(raws)

		batch := make([]models.LibraryRecord, 0, len(raws))
		for _, raw := range raws {
			rec, ok := p.mapPrimary(raw, known)
			if !ok {
				log.Printf("[ingest] %s skip code=%q name=%q", src.Name(), raw.Code, raw.Name)
				stats.Skipped++
				continue
			}
			batch = append(batch, rec)
		}

		if len(batch) > 0 {
			if err := p.Repo.InsertBatch(ctx, batch); err != nil {
				return stats, fmt.Errorf("insert %s page %d: %w", src.Name(), page, err)
			}
			stats.Inserted += len(batch)
		}

		log.Printf("[ingest] %s page %d: fetched=%d inserted=%d", src.Name(), page, len(raws), len(batch))
		p.notify(PageEvent{
			Type:     "ingest_page",
			Source:   src.Name(),
			Page:     page,
			Inserted: len(batch),
			Skipped:  len(raws) - len(batch),
			At:       time.Now().UTC(),
		})

		if len(raws) < p.PageSize {
			break
		}
	}

	log.Printf("[ingest] %s done: pages=%d fetched=%d inserted=%d skipped=%d",
		src.Name(), stats.Pages, stats.Fetched, stats.Inserted, stats.Skipped)
	return stats, nil
}

// IngestSecondaryAndReconcile walks the secondary source with the same
// pagination rule, but never creates records: collected candidates are
// linked onto existing records by exact normalized name+address key.
func (p *Pipeline) IngestSecondaryAndReconcile(ctx context.Context, src SourceClient) (Stats, match.ReconcileStats, error) {
	var stats Stats
	var rstats match.ReconcileStats

	records, err := p.Repo.FindAll(ctx)
	if err != nil {
		return stats, rstats, fmt.Errorf("snapshot registry: %w", err)
	}
	known := SnapshotKnownCodes(records)

	var candidates []match.SecondaryCandidate
	for page := 1; ; page++ {
		raws, err := src.FetchPage(ctx, page, p.PageSize)
		if err != nil {
			return stats, rstats, fmt.Errorf("fetch %s page %d: %w", src.Name(), page, err)
		}
		stats.Pages++
		stats.Fetched += len(raws)

		for _, raw := range raws {
			code, err := strconv.ParseInt(raw.Code, 10, 64)
			if err != nil || raw.Name == "" || !hasCoordinates(raw) {
				log.Printf("[ingest] %s skip code=%q name=%q", src.Name(), raw.Code, raw.Name)
				stats.Skipped++
				continue
			}
			if known.HasSecondary(code) {
				stats.Skipped++
				continue
			}
			candidates = append(candidates, match.SecondaryCandidate{
				Code:    code,
				Name:    raw.Name,
				Address: raw.Address,
			})
		}

		log.Printf("[ingest] %s page %d: fetched=%d collected=%d", src.Name(), page, len(raws), len(candidates))

		if len(raws) < p.PageSize {
			break
		}
	}

	rstats, err = match.Reconcile(ctx, records, candidates, p.Repo)
	if err != nil {
		return stats, rstats, fmt.Errorf("reconcile %s: %w", src.Name(), err)
	}

	p.notify(PageEvent{
		Type:     "reconcile_done",
		Source:   src.Name(),
		Page:     stats.Pages,
		Inserted: rstats.Matched,
		Skipped:  rstats.Unmatched,
		At:       time.Now().UTC(),
	})
	return stats, rstats, nil
}

// mapPrimary validates and converts one raw primary record. Records
// without a code or name, with unparsable coordinates, or whose code is
// already registered are dropped.
func (p *Pipeline) mapPrimary(raw RawLibrary, known KnownCodes) (models.LibraryRecord, bool) {
	if raw.Code == "" || raw.Name == "" {
		return models.LibraryRecord{}, false
	}
	if known.HasPrimary(raw.Code) {
		return models.LibraryRecord{}, false
	}

	lat, err := strconv.ParseFloat(raw.Latitude, 64)
	if err != nil {
		return models.LibraryRecord{}, false
	}
	lon, err := strconv.ParseFloat(raw.Longitude, 64)
	if err != nil {
		return models.LibraryRecord{}, false
	}

	return models.LibraryRecord{
		NlssCode:  raw.Code,
		Name:      raw.Name,
		Address:   raw.Address,
		Tel:       raw.Tel,
		Homepage:  raw.Homepage,
		Latitude:  lat,
		Longitude: lon,
	}, true
}

func hasCoordinates(raw RawLibrary) bool {
	if _, err := strconv.ParseFloat(raw.Latitude, 64); err != nil {
		return false
	}
	if _, err := strconv.ParseFloat(raw.Longitude, 64); err != nil {
		return false
	}
	return true
}

func (p *Pipeline) notify(v any) {
	if p.Hub == nil {
		return
	}
	p.Hub.BroadcastJSON(v)
}
