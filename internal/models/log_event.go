package models

import "time"

// LogEvent is one validated access-log record. Every LogEvent comes from a
// line that matched the combined log grammar in full; Status and Bytes are
// non-negative because the grammar only admits unsigned digit runs.
//
// Events are built once per matching line, never mutated, and consumed within
// the batch that produced them. They are not persisted.
type LogEvent struct {
	RemoteHost string
	ClientID   string
	UserID     string
	Timestamp  time.Time
	Method     string
	Path       string
	Status     int
	Bytes      int
	Referrer   string
	UserAgent  string
}
