package models

import "strconv"

// The three row types below are one batch's partial counts, one row per
// distinct key. Counts cover that batch only; running totals live in the
// durable counter store and are produced by merging row deltas into it.

// StatusCount is the number of events in a batch with one response status.
type StatusCount struct {
	Status int   `json:"status"`
	Count  int64 `json:"count"`
}

func (c StatusCount) CounterKey() string { return strconv.Itoa(c.Status) }

func (c StatusCount) Delta() int64 { return c.Count }

// LogVolume is the number of events in a batch whose timestamp falls within
// one absolute minute. MinuteBucket is minutes since the Unix epoch,
// truncated, so an event at second 59 stays in its own minute.
type LogVolume struct {
	MinuteBucket int64 `json:"minuteBucket"`
	Count        int64 `json:"count"`
}

func (v LogVolume) CounterKey() string { return strconv.FormatInt(v.MinuteBucket, 10) }

func (v LogVolume) Delta() int64 { return v.Count }

// LocationVisit is the number of events in a batch resolved to one
// (country, city) pair. Events whose IP is absent from the geo database
// produce no LocationVisit at all.
type LocationVisit struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Count   int64  `json:"count"`
}

func (l LocationVisit) CounterKey() string { return l.Country + "/" + l.City }

func (l LocationVisit) Delta() int64 { return l.Count }
