package ingest

import (
	"context"

	"libhub/pkg/models"
)

// RawLibrary is the source-agnostic shape a page of upstream data is
// mapped into. All fields are strings as delivered; parsing and
// validation happen in the pipeline so each client stays a thin codec.
type RawLibrary struct {
	Code      string
	Name      string
	Address   string
	Tel       string
	Homepage  string
	Latitude  string
	Longitude string
}

// SourceClient is implemented by each external facility source. Pages
// are 1-based; a short page (fewer than size records) marks the end of
// the feed.
type SourceClient interface {
	Name() string
	FetchPage(ctx context.Context, page, size int) ([]RawLibrary, error)
}

// Repository is the slice of registry storage the pipeline needs.
type Repository interface {
	FindAll(ctx context.Context) ([]models.LibraryRecord, error)
	InsertBatch(ctx context.Context, records []models.LibraryRecord) error
	SetSecondaryCode(ctx context.Context, id int64, code int64) error
}

// KnownCodes is a point-in-time snapshot of the source codes already in
// the registry. It is taken once before a run and passed by value; the
// pipeline consults it but never grows it, so a record appearing twice
// upstream within one run surfaces as a constraint error instead of
// being silently absorbed.
type KnownCodes struct {
	primary   map[string]struct{}
	secondary map[int64]struct{}
}

func SnapshotKnownCodes(records []models.LibraryRecord) KnownCodes {
	kc := KnownCodes{
		primary:   make(map[string]struct{}, len(records)),
		secondary: make(map[int64]struct{}),
	}
	for _, rec := range records {
		if rec.NlssCode != "" {
			kc.primary[rec.NlssCode] = struct{}{}
		}
		if rec.HasD4LCode() {
			kc.secondary[*rec.D4LCode] = struct{}{}
		}
	}
	return kc
}

func (kc KnownCodes) HasPrimary(code string) bool {
	_, ok := kc.primary[code]
	return ok
}

func (kc KnownCodes) HasSecondary(code int64) bool {
	_, ok := kc.secondary[code]
	return ok
}
