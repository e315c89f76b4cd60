package aggregators

import (
	"context"
	"fmt"

	"access-insights/internal/models"
)

// LocationResolver is the geo lookup the location reduction depends on.
// (nil, nil) means the address has no record and the event is excluded;
// a non-nil error is a hard fault that aborts the batch. Implementations are
// called concurrently from the reduction workers.
//
//go:generate mockgen -source=location_aggregator.go -destination=./mocks/location_resolver_mock.go -package=mocks
type LocationResolver interface {
	Resolve(ip string) (*models.Location, error)
}

// LocationAggregator counts events per resolved (country, city) pair. Events
// whose IP is absent from the geo database are excluded here; they still
// count in the status and volume reductions, which never consult geo data.
type LocationAggregator struct {
	resolver LocationResolver
	workers  int
}

func NewLocationAggregator(resolver LocationResolver, workers int) *LocationAggregator {
	return &LocationAggregator{resolver: resolver, workers: workers}
}

type placeKey struct {
	country string
	city    string
}

func (a *LocationAggregator) Aggregate(_ context.Context, events []*models.LogEvent) ([]models.LocationVisit, error) {
	counts, err := countShards(events, a.workers, func(event *models.LogEvent) (placeKey, bool, error) {
		location, err := a.resolver.Resolve(event.RemoteHost)
		if err != nil {
			return placeKey{}, false, fmt.Errorf("resolving %s: %w", event.RemoteHost, err)
		}
		if location == nil {
			return placeKey{}, false, nil
		}
		return placeKey{country: location.Country, city: location.City}, true, nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([]models.LocationVisit, 0, len(counts))
	for place, count := range counts {
		rows = append(rows, models.LocationVisit{Country: place.country, City: place.city, Count: count})
	}
	return rows, nil
}
