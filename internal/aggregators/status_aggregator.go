package aggregators

import (
	"context"

	"access-insights/internal/models"
)

// StatusAggregator counts events per response status code. Every event
// qualifies, so the row counts of a batch always sum to the batch's event
// count.
type StatusAggregator struct {
	workers int
}

func NewStatusAggregator(workers int) *StatusAggregator {
	return &StatusAggregator{workers: workers}
}

func (a *StatusAggregator) Aggregate(_ context.Context, events []*models.LogEvent) ([]models.StatusCount, error) {
	counts, err := countShards(events, a.workers, func(event *models.LogEvent) (int, bool, error) {
		return event.Status, true, nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([]models.StatusCount, 0, len(counts))
	for status, count := range counts {
		rows = append(rows, models.StatusCount{Status: status, Count: count})
	}
	return rows, nil
}
