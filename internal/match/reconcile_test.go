package match

import (
	"context"
	"errors"
	"testing"

	"libhub/pkg/models"
)

type fakeUpdater struct {
	calls   []linkCall
	failOn  int64
	failErr error
}

type linkCall struct {
	id   int64
	code int64
}

func (f *fakeUpdater) SetSecondaryCode(ctx context.Context, id int64, code int64) error {
	if f.failErr != nil && id == f.failOn {
		return f.failErr
	}
	f.calls = append(f.calls, linkCall{id: id, code: code})
	return nil
}

func TestReconcileLinksExactKeys(t *testing.T) {
	linked := int64(9999)
	existing := []models.LibraryRecord{
		{ID: 1, Name: "정자도서관", Address: "경기도 성남시 분당구 정자일로 95"},
		{ID: 2, Name: "수내도서관", Address: "경기도 성남시 분당구 수내로 80"},
		{ID: 3, Name: "중앙도서관", Address: "대전광역시 서구 둔산동 100", D4LCode: &linked},
	}
	candidates := []SecondaryCandidate{
		{Code: 141234, Name: "정자 작은도서관", Address: "경기도 성남시 분당구 정자일로 소재"},
		{Code: 141236, Name: "해운대도서관", Address: "부산광역시 해운대구 우동 1"},
	}

	store := &fakeUpdater{}
	stats, err := Reconcile(context.Background(), existing, candidates, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Matched != 1 || stats.Unmatched != 1 || stats.AlreadyLinked != 1 {
		t.Fatalf("stats = %+v, want 1 matched, 1 unmatched, 1 already linked", stats)
	}
	if len(store.calls) != 1 || store.calls[0] != (linkCall{id: 1, code: 141234}) {
		t.Fatalf("store calls = %+v, want single link of record 1 to 141234", store.calls)
	}
	if !existing[0].HasD4LCode() || *existing[0].D4LCode != 141234 {
		t.Fatalf("record 1 not updated in memory: %+v", existing[0])
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	existing := []models.LibraryRecord{
		{ID: 1, Name: "정자도서관", Address: "경기도 성남시 분당구 정자일로 95"},
	}
	candidates := []SecondaryCandidate{
		{Code: 141234, Name: "정자도서관", Address: "경기도 성남시 분당구 정자일로 95"},
	}

	store := &fakeUpdater{}
	if _, err := Reconcile(context.Background(), existing, candidates, store); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stats, err := Reconcile(context.Background(), existing, candidates, store)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.Matched != 0 || stats.AlreadyLinked != 1 {
		t.Fatalf("second run stats = %+v, want a no-op on the linked record", stats)
	}
	if len(store.calls) != 1 {
		t.Fatalf("store calls = %d, want exactly 1 across both runs", len(store.calls))
	}
}

func TestReconcileFirstSeenWinsOnKeyCollision(t *testing.T) {
	// Two candidates share a normalized key: the first one's code is the
	// one attached. Two records share the key too: the candidate is
	// consumed by the first record, the second stays unlinked.
	existing := []models.LibraryRecord{
		{ID: 1, Name: "정자도서관", Address: "경기도 성남시 분당구 정자일로 95"},
		{ID: 2, Name: "정자 작은도서관", Address: "경기도 성남시 분당구 정자일로 95"},
	}
	candidates := []SecondaryCandidate{
		{Code: 100, Name: "정자도서관", Address: "경기도 성남시 분당구 정자일로 95"},
		{Code: 200, Name: "정자도서관", Address: "경기도 성남시 분당구 정자일로 95"},
	}

	store := &fakeUpdater{}
	stats, err := Reconcile(context.Background(), existing, candidates, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Matched != 1 || stats.Unmatched != 1 {
		t.Fatalf("stats = %+v, want 1 matched and 1 unmatched", stats)
	}
	if len(store.calls) != 1 || store.calls[0] != (linkCall{id: 1, code: 100}) {
		t.Fatalf("store calls = %+v, want single link of record 1 to 100", store.calls)
	}
	if existing[1].HasD4LCode() {
		t.Fatalf("record 2 must stay unlinked, got %+v", existing[1])
	}
}

func TestReconcileSkipsEmptyKeys(t *testing.T) {
	existing := []models.LibraryRecord{
		{ID: 1, Name: "어린이도서관", Address: ""},
	}
	candidates := []SecondaryCandidate{
		{Code: 100, Name: "도서관", Address: ""},
	}

	store := &fakeUpdater{}
	stats, err := Reconcile(context.Background(), existing, candidates, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Unmatched != 1 || len(store.calls) != 0 {
		t.Fatalf("stats = %+v calls = %+v, want 1 unmatched and no links", stats, store.calls)
	}
}

func TestReconcileAbortsOnStoreError(t *testing.T) {
	existing := []models.LibraryRecord{
		{ID: 1, Name: "정자도서관", Address: "경기도 성남시 분당구 정자일로 95"},
		{ID: 2, Name: "수내도서관", Address: "경기도 성남시 분당구 수내로 80"},
	}
	candidates := []SecondaryCandidate{
		{Code: 100, Name: "정자도서관", Address: "경기도 성남시 분당구 정자일로 95"},
		{Code: 200, Name: "수내도서관", Address: "경기도 성남시 분당구 수내로 80"},
	}

	boom := errors.New("disk full")
	store := &fakeUpdater{failOn: 1, failErr: boom}
	stats, err := Reconcile(context.Background(), existing, candidates, store)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped store failure", err)
	}
	if stats.Matched != 0 || len(store.calls) != 0 {
		t.Fatalf("stats = %+v calls = %+v, want abort before any link", stats, store.calls)
	}
}
