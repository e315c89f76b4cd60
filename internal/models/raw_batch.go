package models

import "time"

// RawBatch is one scheduler-delivered unit of raw access-log text.
//
// Lines is the batch's raw multi-line blob; splitting and per-line validation
// happen inside the pipelines, not at intake. BatchTime is the logical time
// assigned when the batch was accepted, distinct from the event timestamps
// inside the lines.
type RawBatch struct {
	BatchID   string
	BatchTime time.Time
	Lines     string
}
