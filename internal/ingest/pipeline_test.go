package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"libhub/pkg/models"
)

type fakeSource struct {
	pages   [][]RawLibrary
	calls   int
	failAt  int // 1-based page to fail on, 0 = never
	failErr error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchPage(ctx context.Context, page, size int) ([]RawLibrary, error) {
	f.calls++
	if f.failAt != 0 && page == f.failAt {
		return nil, f.failErr
	}
	if page > len(f.pages) {
		return nil, nil
	}
	return f.pages[page-1], nil
}

type fakeRepo struct {
	existing  []models.LibraryRecord
	batches   [][]models.LibraryRecord
	links     map[int64]int64 // record id -> secondary code
	insertErr error
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]models.LibraryRecord, error) {
	return f.existing, nil
}

func (f *fakeRepo) InsertBatch(ctx context.Context, records []models.LibraryRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.batches = append(f.batches, records)
	return nil
}

func (f *fakeRepo) SetSecondaryCode(ctx context.Context, id int64, code int64) error {
	if f.links == nil {
		f.links = make(map[int64]int64)
	}
	f.links[id] = code
	return nil
}

func (f *fakeRepo) insertedCount() int {
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func rawLib(code, name string) RawLibrary {
	return RawLibrary{
		Code:      code,
		Name:      name,
		Address:   "경기도 성남시 분당구 정자일로 95",
		Latitude:  "37.3595",
		Longitude: "127.1052",
	}
}

func fullPages(count, size int) [][]RawLibrary {
	var pages [][]RawLibrary
	for i := 0; i < count; i++ {
		page := make([]RawLibrary, 0, size)
		for j := 0; j < size; j++ {
			n := i*size + j
			page = append(page, rawLib(fmt.Sprintf("C%03d", n), fmt.Sprintf("도서관%d", n)))
		}
		pages = append(pages, page)
	}
	return pages
}

func TestIngestPrimaryStopsOnShortPage(t *testing.T) {
	src := &fakeSource{pages: [][]RawLibrary{
		{rawLib("C1", "가람"), rawLib("C2", "나래")},
		{rawLib("C3", "다솜")},
	}}
	repo := &fakeRepo{}
	p := NewPipeline(repo, nil, 2)

	stats, err := p.IngestPrimary(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", src.calls)
	}
	if stats.Pages != 2 || stats.Fetched != 3 || stats.Inserted != 3 {
		t.Fatalf("stats = %+v, want 2 pages, 3 fetched, 3 inserted", stats)
	}
}

func TestIngestPrimaryExactlyFullFeedCostsExtraFetch(t *testing.T) {
	// Two exactly full pages: the walk cannot know the feed ended until
	// a third, empty fetch comes back short.
	src := &fakeSource{pages: fullPages(2, 2)}
	repo := &fakeRepo{}
	p := NewPipeline(repo, nil, 2)

	stats, err := p.IngestPrimary(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("fetch calls = %d, want 3 (two full pages plus the empty tail)", src.calls)
	}
	if stats.Pages != 3 || stats.Inserted != 4 {
		t.Fatalf("stats = %+v, want 3 pages and 4 inserted", stats)
	}
	if len(repo.batches) != 2 {
		t.Fatalf("batches = %d, want 2 (no insert for the empty tail)", len(repo.batches))
	}
}

func TestIngestPrimarySkipsKnownCodesAndBadCoordinates(t *testing.T) {
	repo := &fakeRepo{existing: []models.LibraryRecord{
		{ID: 1, NlssCode: "C1", Name: "가람", Latitude: 37.0, Longitude: 127.0},
	}}
	src := &fakeSource{pages: [][]RawLibrary{{
		rawLib("C1", "가람"), // already registered
		rawLib("C2", "나래"),
		{Code: "C3", Name: "다솜", Latitude: "", Longitude: "127.0"},
		{Code: "", Name: "이름만"},
	}}}
	p := NewPipeline(repo, nil, 10)

	stats, err := p.IngestPrimary(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Inserted != 1 || stats.Skipped != 3 {
		t.Fatalf("stats = %+v, want 1 inserted and 3 skipped", stats)
	}
	if repo.insertedCount() != 1 || repo.batches[0][0].NlssCode != "C2" {
		t.Fatalf("inserted batches = %+v, want only C2", repo.batches)
	}
}

func TestIngestPrimaryKeepsCommittedPagesOnTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	src := &fakeSource{pages: fullPages(3, 2), failAt: 2, failErr: boom}
	repo := &fakeRepo{}
	p := NewPipeline(repo, nil, 2)

	stats, err := p.IngestPrimary(context.Background(), src)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped transport failure", err)
	}
	if stats.Pages != 1 || stats.Inserted != 2 {
		t.Fatalf("stats = %+v, want the first page committed before the abort", stats)
	}
	if repo.insertedCount() != 2 {
		t.Fatalf("repo holds %d records, want the 2 from page 1", repo.insertedCount())
	}
}

func TestIngestSecondaryLinksWithoutInserting(t *testing.T) {
	linked := int64(500)
	repo := &fakeRepo{existing: []models.LibraryRecord{
		{ID: 1, NlssCode: "C1", Name: "정자도서관", Address: "경기도 성남시 분당구 정자일로 95"},
		{ID: 2, NlssCode: "C2", Name: "수내도서관", Address: "경기도 성남시 분당구 수내로 80"},
		{ID: 3, NlssCode: "C3", Name: "중앙도서관", Address: "대전광역시 서구 둔산동 100", D4LCode: &linked},
	}}
	src := &fakeSource{pages: [][]RawLibrary{{
		{Code: "141001", Name: "정자 작은도서관", Address: "경기도 성남시 분당구 정자일로 소재", Latitude: "37.3595", Longitude: "127.1052"},
		{Code: "141002", Name: "해운대도서관", Address: "부산광역시 해운대구 우동 1", Latitude: "35.1631", Longitude: "129.1635"},
		{Code: "500", Name: "중앙도서관", Address: "대전광역시 서구 둔산동 100", Latitude: "36.3515", Longitude: "127.3850"}, // code already linked
		{Code: "not-a-number", Name: "깨진코드"},
	}}}
	p := NewPipeline(repo, nil, 10)

	stats, rstats, err := p.IngestSecondaryAndReconcile(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.batches) != 0 {
		t.Fatalf("secondary ingestion inserted records: %+v", repo.batches)
	}
	if stats.Skipped != 2 {
		t.Fatalf("stats = %+v, want 2 skipped (known code and unparsable code)", stats)
	}
	if rstats.Matched != 1 || rstats.Unmatched != 1 {
		t.Fatalf("reconcile stats = %+v, want 1 matched and 1 unmatched", rstats)
	}
	if repo.links[1] != 141001 {
		t.Fatalf("links = %+v, want record 1 linked to 141001", repo.links)
	}
}

type recordingNotifier struct {
	events []any
}

func (n *recordingNotifier) BroadcastJSON(v any) {
	n.events = append(n.events, v)
}

func TestIngestPrimaryBroadcastsPageEvents(t *testing.T) {
	src := &fakeSource{pages: [][]RawLibrary{{rawLib("C1", "가람")}}}
	hub := &recordingNotifier{}
	p := NewPipeline(&fakeRepo{}, hub, 10)

	if _, err := p.IngestPrimary(context.Background(), src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(hub.events))
	}
	ev, ok := hub.events[0].(PageEvent)
	if !ok || ev.Type != "ingest_page" || ev.Source != "fake" || ev.Inserted != 1 {
		t.Fatalf("event = %+v, want ingest_page from fake with 1 inserted", hub.events[0])
	}
}
