// README: Google geocoding enrichment of activity coordinates.
package maps

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"googlemaps.github.io/maps"

	"itinerary/internal/logger"
	"itinerary/internal/modules/itinerary"
)

// Geocoder resolves a free-text place query to coordinates.
// found=false with a nil error means the place is unknown.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (coords itinerary.Coordinates, found bool, err error)
}

// GeocodeService handles interactions with the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

// NewGeocodeService creates a new GeocodeService with the given API Key.
func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

func (s *GeocodeService) Geocode(ctx context.Context, query string) (itinerary.Coordinates, bool, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return itinerary.Coordinates{}, false, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return itinerary.Coordinates{}, false, nil
	}
	loc := results[0].Geometry.Location
	return itinerary.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, true, nil
}

// maxDistanceKm bounds how far a geocoded activity may be from the destination itself.
const maxDistanceKm = 150.0

// Enricher fills missing activity coordinates with bounded concurrency.
type Enricher struct {
	geo         Geocoder
	concurrency int
	log         *logger.Logger
}

func NewEnricher(geo Geocoder, concurrency int, log *logger.Logger) *Enricher {
	if concurrency <= 0 {
		concurrency = 4
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Enricher{geo: geo, concurrency: concurrency, log: log}
}

type lookup struct {
	coords itinerary.Coordinates
	found  bool
}

// Enrich returns a copy of it in which activities without coordinates carry the
// geocoded location when one was found. Lookup failures leave coordinates absent,
// as do hits more than maxDistanceKm from the geocoded destination.
func (e *Enricher) Enrich(ctx context.Context, it itinerary.Itinerary) itinerary.Itinerary {
	out := it
	out.Days = make([]itinerary.DayPlan, len(it.Days))
	queries := map[string]struct{}{}
	for i, day := range it.Days {
		out.Days[i] = day
		out.Days[i].Activities = append([]itinerary.Activity(nil), day.Activities...)
		if out.Days[i].Activities == nil {
			out.Days[i].Activities = []itinerary.Activity{}
		}
		for _, a := range day.Activities {
			if q := queryFor(a, it.Destination); q != "" && a.Location.Coordinates == nil {
				queries[q] = struct{}{}
			}
		}
	}
	if len(queries) == 0 {
		return out
	}
	if it.Destination != "" {
		queries[it.Destination] = struct{}{}
	}

	var (
		mu      sync.Mutex
		results = make(map[string]lookup, len(queries))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for q := range queries {
		g.Go(func() error {
			coords, found, err := e.geo.Geocode(gctx, q)
			if err != nil {
				e.log.Warn("geocode failed", "query", q, "error", err)
				return nil
			}
			mu.Lock()
			results[q] = lookup{coords: coords, found: found}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	center, hasCenter := results[it.Destination]
	hasCenter = hasCenter && center.found
	dropped := 0

	for i := range out.Days {
		for j := range out.Days[i].Activities {
			a := &out.Days[i].Activities[j]
			if a.Location.Coordinates != nil {
				continue
			}
			r, ok := results[queryFor(*a, it.Destination)]
			if !ok || !r.found {
				continue
			}
			if hasCenter && haversineKm(center.coords, r.coords) > maxDistanceKm {
				dropped++
				continue
			}
			c := r.coords
			a.Location.Coordinates = &c
		}
	}
	if dropped > 0 {
		e.log.Debug("geocode hits outside destination dropped", "destination", it.Destination, "count", dropped)
	}
	return out
}

func queryFor(a itinerary.Activity, destination string) string {
	var parts []string
	if a.Location.Name != "" && a.Location.Name != itinerary.PlaceholderLocation {
		parts = append(parts, a.Location.Name)
	}
	if a.Location.Address != "" && a.Location.Address != itinerary.PlaceholderAddress {
		parts = append(parts, a.Location.Address)
	}
	if len(parts) == 0 {
		return ""
	}
	if destination != "" && !strings.Contains(strings.Join(parts, " "), destination) {
		parts = append(parts, destination)
	}
	return strings.Join(parts, ", ")
}
