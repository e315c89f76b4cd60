package pipelines

import (
	"context"
	"sort"
	"time"

	"access-insights/internal/aggregators"
	"access-insights/internal/mergers"
	"access-insights/internal/models"
	"access-insights/internal/parsers"
	"access-insights/internal/shared/svcerrors"
)

// BatchPipeline runs one aggregation kind end to end over a raw batch:
// parse, reduce, report, merge. Implementations are driven by the batch
// stream, one partition per kind, so Process never runs concurrently with
// itself for the same kind.
//
//go:generate mockgen -source=pipeline.go -destination=./mocks/pipeline_mock.go -package=mocks
type BatchPipeline interface {
	Kind() models.AggregationKind
	Process(ctx context.Context, batch *models.RawBatch) *svcerrors.ServiceError
}

// Observer receives each batch's reduction, sorted by the pipeline's row
// order, after aggregation succeeds and before any counter is merged. A nil
// observer is skipped.
type Observer[R any] func(batchTime time.Time, rows []R)

type Pipeline[R mergers.CounterRow] struct {
	kind       models.AggregationKind
	parser     parsers.EventParser
	aggregator aggregators.Aggregator[R]
	less       func(a, b R) bool
	observer   Observer[R]
	writer     *mergers.CounterMergeWriter[R]
}

func NewPipeline[R mergers.CounterRow](
	kind models.AggregationKind,
	parser parsers.EventParser,
	aggregator aggregators.Aggregator[R],
	less func(a, b R) bool,
	observer Observer[R],
	writer *mergers.CounterMergeWriter[R],
) *Pipeline[R] {
	return &Pipeline[R]{
		kind:       kind,
		parser:     parser,
		aggregator: aggregator,
		less:       less,
		observer:   observer,
		writer:     writer,
	}
}

func (p *Pipeline[R]) Kind() models.AggregationKind { return p.kind }

// Process runs the batch through the full phase sequence. The observer sees
// every batch that aggregates cleanly, even if the merge then fails: the
// report reflects the batch itself, the counters reflect durable state, and
// the two only part ways when the returned error says so.
func (p *Pipeline[R]) Process(ctx context.Context, batch *models.RawBatch) *svcerrors.ServiceError {
	events := p.parser.ParseBatch(batch.Lines)

	rows, err := p.aggregator.Aggregate(ctx, events)
	if err != nil {
		return errInternalAggregationFailed(err)
	}

	sorted := make([]R, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return p.less(sorted[i], sorted[j]) })

	if p.observer != nil {
		p.observer(batch.BatchTime, sorted)
	}

	if err := p.writer.Merge(ctx, sorted); err != nil {
		return errInternalMergeFailed(err)
	}
	return nil
}

// Row orders for the three built-in reductions.

func StatusAscending(a, b models.StatusCount) bool { return a.Status < b.Status }

func MinuteAscending(a, b models.LogVolume) bool { return a.MinuteBucket < b.MinuteBucket }

// CountryAscending orders by country, then city within a country.
func CountryAscending(a, b models.LocationVisit) bool {
	if a.Country != b.Country {
		return a.Country < b.Country
	}
	return a.City < b.City
}
