package aggregators

import (
	"context"

	"access-insights/internal/models"
)

// VolumeAggregator counts events per absolute minute since the Unix epoch.
// The bucket is the truncated minute the event falls within: second 59 stays
// in its minute, second 0 opens the next one.
type VolumeAggregator struct {
	workers int
}

func NewVolumeAggregator(workers int) *VolumeAggregator {
	return &VolumeAggregator{workers: workers}
}

func (a *VolumeAggregator) Aggregate(_ context.Context, events []*models.LogEvent) ([]models.LogVolume, error) {
	counts, err := countShards(events, a.workers, func(event *models.LogEvent) (int64, bool, error) {
		return event.Timestamp.Unix() / 60, true, nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([]models.LogVolume, 0, len(counts))
	for bucket, count := range counts {
		rows = append(rows, models.LogVolume{MinuteBucket: bucket, Count: count})
	}
	return rows, nil
}
