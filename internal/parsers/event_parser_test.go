package parsers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLine = `1.2.3.4 - - [10/Oct/2020:13:55:36 -0700] "GET /index HTTP/1.1" 200 1024 "-" "curl/7.0"`

func TestEventParser_ParseLine_RecoversAllFields(t *testing.T) {
	t.Parallel()

	parser := NewEventParser()

	event, ok := parser.ParseLine(sampleLine)
	require.True(t, ok)

	assert.Equal(t, "1.2.3.4", event.RemoteHost)
	assert.Equal(t, "-", event.ClientID)
	assert.Equal(t, "-", event.UserID)
	assert.Equal(t, "GET", event.Method)
	assert.Equal(t, "/index", event.Path)
	assert.Equal(t, 200, event.Status)
	assert.Equal(t, 1024, event.Bytes)
	assert.Equal(t, "-", event.Referrer)
	assert.Equal(t, "curl/7.0", event.UserAgent)

	expected := time.Date(2020, 10, 10, 13, 55, 36, 0, time.FixedZone("", -7*3600))
	assert.True(t, event.Timestamp.Equal(expected), "timestamp should honor the -0700 offset")
}

func TestEventParser_ParseLine_ParsesIdentifiersAndQuotedFields(t *testing.T) {
	t.Parallel()

	parser := NewEventParser()

	line := `203.0.113.9 ident7 alice [01/Jan/2024:00:00:59 +0000] "POST /api/v1/orders HTTP/2.0" 201 87 "https://example.com/cart" "Mozilla/5.0 (X11; Linux x86_64)"`
	event, ok := parser.ParseLine(line)
	require.True(t, ok)

	assert.Equal(t, "203.0.113.9", event.RemoteHost)
	assert.Equal(t, "ident7", event.ClientID)
	assert.Equal(t, "alice", event.UserID)
	assert.Equal(t, "POST", event.Method)
	assert.Equal(t, "/api/v1/orders", event.Path)
	assert.Equal(t, 201, event.Status)
	assert.Equal(t, 87, event.Bytes)
	assert.Equal(t, "https://example.com/cart", event.Referrer)
	assert.Equal(t, "Mozilla/5.0 (X11; Linux x86_64)", event.UserAgent)
}

func TestEventParser_ParseLine_RejectsMalformedLines(t *testing.T) {
	t.Parallel()

	parser := NewEventParser()

	tests := []struct {
		name string
		line string
	}{
		{name: "empty line", line: ""},
		{name: "garbage", line: "not a log line at all"},
		{name: "missing trailing user-agent quote", line: `1.2.3.4 - - [10/Oct/2020:13:55:36 -0700] "GET /index HTTP/1.1" 200 1024 "-" "curl/7.0`},
		{name: "missing timestamp brackets", line: `1.2.3.4 - - 10/Oct/2020:13:55:36 -0700 "GET /index HTTP/1.1" 200 1024 "-" "curl/7.0"`},
		{name: "two-digit status", line: `1.2.3.4 - - [10/Oct/2020:13:55:36 -0700] "GET /index HTTP/1.1" 20 1024 "-" "curl/7.0"`},
		{name: "negative byte count", line: `1.2.3.4 - - [10/Oct/2020:13:55:36 -0700] "GET /index HTTP/1.1" 200 -5 "-" "curl/7.0"`},
		{name: "non-numeric status", line: `1.2.3.4 - - [10/Oct/2020:13:55:36 -0700] "GET /index HTTP/1.1" abc 1024 "-" "curl/7.0"`},
		{name: "bad protocol token", line: `1.2.3.4 - - [10/Oct/2020:13:55:36 -0700] "GET /index FTP/1.1" 200 1024 "-" "curl/7.0"`},
		{name: "unparsable timestamp", line: `1.2.3.4 - - [99/Oct/2020:13:55:36 -0700] "GET /index HTTP/1.1" 200 1024 "-" "curl/7.0"`},
		{name: "trailing garbage", line: sampleLine + " extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			event, ok := parser.ParseLine(tt.line)
			assert.False(t, ok)
			assert.Nil(t, event)
		})
	}
}

func TestEventParser_ParseBatch_DropsMalformedLines(t *testing.T) {
	t.Parallel()

	parser := NewEventParser()

	blob := sampleLine + "\n" +
		"garbage in the middle\n" +
		`5.6.7.8 - - [10/Oct/2020:13:56:01 -0700] "GET /about HTTP/1.1" 404 512 "-" "curl/7.0"` + "\n" +
		"\n" +
		`9.9.9.9 - - [10/Oct/2020:13:56:02 -0700] "HEAD / HTTP/1.0" 301 0 "-" "probe"`

	events := parser.ParseBatch(blob)
	require.Len(t, events, 3)
	assert.Equal(t, 200, events[0].Status)
	assert.Equal(t, 404, events[1].Status)
	assert.Equal(t, 301, events[2].Status)
}

func TestEventParser_ParseBatch_HandlesCRLF(t *testing.T) {
	t.Parallel()

	parser := NewEventParser()

	blob := sampleLine + "\r\n" + sampleLine + "\r\n"
	events := parser.ParseBatch(blob)
	assert.Len(t, events, 2)
}

func TestEventParser_ParseBatch_EmptyBlob(t *testing.T) {
	t.Parallel()

	parser := NewEventParser()
	assert.Empty(t, parser.ParseBatch(""))
}
