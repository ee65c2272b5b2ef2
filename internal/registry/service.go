package registry

import (
	"context"
	"fmt"
	"sort"

	"libhub/internal/geo"
	"libhub/pkg/models"
)

// BoxFinder is the storage slice the proximity search needs.
type BoxFinder interface {
	FindInBoundingBox(ctx context.Context, box geo.BoundingBox) ([]models.LibraryRecord, error)
}

type NearbyResult struct {
	Library    models.LibraryRecord `json:"library"`
	DistanceKm float64              `json:"distance_km"`
}

type SearchService struct {
	Store BoxFinder
}

func NewSearchService(store BoxFinder) *SearchService {
	return &SearchService{Store: store}
}

// Nearby returns every library within radiusKm of the point, nearest
// first. A bounding-box query narrows the candidates on the index; the
// haversine distance then drops the box corners that fall outside the
// circle.
func (s *SearchService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyResult, error) {
	box := geo.BoxAround(lat, lon, radiusKm)
	candidates, err := s.Store.FindInBoundingBox(ctx, box)
	if err != nil {
		return nil, fmt.Errorf("nearby candidates: %w", err)
	}

	out := make([]NearbyResult, 0, len(candidates))
	for _, rec := range candidates {
		d := geo.DistanceKm(lat, lon, rec.Latitude, rec.Longitude)
		if d > radiusKm {
			continue
		}
		out = append(out, NearbyResult{Library: rec, DistanceKm: d})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out, nil
}
