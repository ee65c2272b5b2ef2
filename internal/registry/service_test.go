package registry

import (
	"context"
	"testing"

	"libhub/internal/geo"
	"libhub/pkg/models"
)

type fakeBoxFinder struct {
	records []models.LibraryRecord
	lastBox geo.BoundingBox
}

func (f *fakeBoxFinder) FindInBoundingBox(ctx context.Context, box geo.BoundingBox) ([]models.LibraryRecord, error) {
	f.lastBox = box
	out := make([]models.LibraryRecord, 0)
	for _, rec := range f.records {
		if rec.Latitude < box.MinLat || rec.Latitude > box.MaxLat {
			continue
		}
		if rec.Longitude < box.MinLon || rec.Longitude > box.MaxLon {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func TestNearbyFiltersAndSorts(t *testing.T) {
	// Center is Seoul City Hall. The first two are within 5 km, the
	// third is across town, the fourth is in Busan.
	store := &fakeBoxFinder{records: []models.LibraryRecord{
		{ID: 1, Name: "남산도서관", Latitude: 37.5512, Longitude: 126.9810},
		{ID: 2, Name: "정독도서관", Latitude: 37.5820, Longitude: 126.9830},
		{ID: 3, Name: "강남도서관", Latitude: 37.4920, Longitude: 127.0350},
		{ID: 4, Name: "부산도서관", Latitude: 35.1060, Longitude: 128.9650},
	}}
	svc := NewSearchService(store)

	results, err := svc.Nearby(context.Background(), 37.5665, 126.9780, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 within 5 km", len(results))
	}
	if results[0].DistanceKm > results[1].DistanceKm {
		t.Fatalf("results not sorted by distance: %.3f then %.3f", results[0].DistanceKm, results[1].DistanceKm)
	}
	for _, res := range results {
		if res.DistanceKm > 5.0 {
			t.Errorf("library %d at %.3f km is outside the radius", res.Library.ID, res.DistanceKm)
		}
		if res.Library.ID == 3 || res.Library.ID == 4 {
			t.Errorf("library %d should have been filtered out", res.Library.ID)
		}
	}
}

func TestNearbyDropsBoxCorners(t *testing.T) {
	// A point inside the bounding box but outside the circle: offset by
	// nearly the radius in both latitude and longitude at once.
	store := &fakeBoxFinder{records: []models.LibraryRecord{
		{ID: 1, Name: "모서리도서관", Latitude: 37.5665 + 0.043, Longitude: 126.9780 + 0.054},
	}}
	svc := NewSearchService(store)

	results, err := svc.Nearby(context.Background(), 37.5665, 126.9780, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("corner point leaked through: %+v", results)
	}
}

func TestNearbyEmptyStore(t *testing.T) {
	svc := NewSearchService(&fakeBoxFinder{})
	results, err := svc.Nearby(context.Background(), 37.5665, 126.9780, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want none", results)
	}
}
