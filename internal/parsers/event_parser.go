package parsers

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"access-insights/internal/models"
)

// timestampLayout is the bracketed timestamp format of a combined access log,
// e.g. 10/Oct/2020:13:55:36 -0700.
const timestampLayout = "02/Jan/2006:15:04:05 -0700"

// lineExpr matches one full combined access-log line:
// host ident user [timestamp] "METHOD path HTTP/version" status bytes "referrer" "user-agent"
var lineExpr = regexp.MustCompile(
	`^(\S+) (\S+) (\S+) \[([^\]]+)\] "(\S+) (\S+) HTTP/[0-9.]+" (\d{3}) (\d+) "([^"]*)" "([^"]*)"$`,
)

//go:generate mockgen -source=event_parser.go -destination=./mocks/event_parser_mock.go -package=mocks
type EventParser interface {
	// ParseLine parses one raw line into a LogEvent. ok is false for any line
	// that does not match the grammar in full; rejected lines carry no error
	// and it is the caller's choice whether to account for them.
	ParseLine(line string) (*models.LogEvent, bool)

	// ParseBatch splits blob on newlines and parses each resulting line
	// independently. Malformed lines drop out, so a blob of n lines yields at
	// most n events.
	ParseBatch(blob string) []*models.LogEvent
}

type eventParser struct{}

func NewEventParser() EventParser {
	return &eventParser{}
}

func (p *eventParser) ParseLine(line string) (*models.LogEvent, bool) {
	m := lineExpr.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	timestamp, err := time.Parse(timestampLayout, m[4])
	if err != nil {
		return nil, false
	}
	status, err := strconv.Atoi(m[7])
	if err != nil {
		return nil, false
	}
	bytes, err := strconv.Atoi(m[8])
	if err != nil {
		return nil, false
	}

	return &models.LogEvent{
		RemoteHost: m[1],
		ClientID:   m[2],
		UserID:     m[3],
		Timestamp:  timestamp,
		Method:     m[5],
		Path:       m[6],
		Status:     status,
		Bytes:      bytes,
		Referrer:   m[9],
		UserAgent:  m[10],
	}, true
}

func (p *eventParser) ParseBatch(blob string) []*models.LogEvent {
	lines := strings.Split(blob, "\n")
	events := make([]*models.LogEvent, 0, len(lines))
	for _, line := range lines {
		// Tolerate CRLF input; the grammar itself stays anchored.
		line = strings.TrimSuffix(line, "\r")
		if event, ok := p.ParseLine(line); ok {
			events = append(events, event)
		}
	}
	return events
}
