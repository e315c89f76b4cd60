package models

// AggregationKind names one of the keyed reductions a pipeline can run.
// Each kind owns its own counter keyspace in the durable store.
type AggregationKind string

const (
	KindStatus   AggregationKind = "status"
	KindVolume   AggregationKind = "volume"
	KindLocation AggregationKind = "location"
)

// Kinds returns every aggregation kind, in deployment wiring order.
func Kinds() []AggregationKind {
	return []AggregationKind{KindStatus, KindVolume, KindLocation}
}
