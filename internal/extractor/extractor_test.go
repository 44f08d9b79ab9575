package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLine = `10.0.0.5 - frontend - [01/07/2025:06:00:04] "GET /api/cart HTTP/1.1" 503 1024 "https://shop.example.com/" "Mozilla/5.0 (X11; Linux x86_64)" 842`

func TestExtractor_Extract_FullMatch(t *testing.T) {
	extractor := NewExtractor()

	record, ok := extractor.Extract(sampleLine + "\n")
	require.True(t, ok, "Expected line to match the grammar")

	assert.Equal(t, "10.0.0.5", record.SourceAddress)
	assert.Equal(t, "GET", record.Method)
	assert.Equal(t, "/api/cart", record.RequestPath)
	assert.Equal(t, "503", record.StatusCode)
	assert.Equal(t, int64(842), record.DurationMs)
	assert.Equal(t, sampleLine, record.RawLine)

	require.True(t, record.Timestamp.Valid())
	assert.Equal(t, time.Date(2025, 7, 1, 6, 0, 4, 0, time.UTC), record.Timestamp.Time)
}

func TestExtractor_Extract_Mismatches(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		name string
		line string
	}{
		{"empty line", ""},
		{"stack trace noise", "\tat com.example.Service.handle(Service.java:42)"},
		{"missing referrer field", `10.0.0.5 - frontend - [01/07/2025:06:00:04] "GET /api/cart HTTP/1.1" 200 1024 "curl/8.4" 842`},
		{"lowercase method", `10.0.0.5 - frontend - [01/07/2025:06:00:04] "get /api/cart HTTP/1.1" 200 1024 "-" "curl/8.4" 842`},
		{"missing duration", `10.0.0.5 - frontend - [01/07/2025:06:00:04] "GET /api/cart HTTP/1.1" 200 1024 "-" "curl/8.4"`},
		{"two digit status", `10.0.0.5 - frontend - [01/07/2025:06:00:04] "GET /api/cart HTTP/1.1" 20 1024 "-" "curl/8.4" 842`},
		{"ipv6 address", `::1 - frontend - [01/07/2025:06:00:04] "GET /api/cart HTTP/1.1" 200 1024 "-" "curl/8.4" 842`},
		{"leading whitespace", ` 10.0.0.5 - frontend - [01/07/2025:06:00:04] "GET /api/cart HTTP/1.1" 200 1024 "-" "curl/8.4" 842`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok := extractor.Extract(tt.line)
			assert.False(t, ok)
			assert.Nil(t, record)
		})
	}
}

func TestExtractor_Extract_UnparseableTimestampStillMatches(t *testing.T) {
	extractor := NewExtractor()

	// 31/02 fits the grammar but is not a real date
	line := `10.0.0.7 - api - [31/02/2025:06:00:04] "POST /checkout HTTP/2.0" 201 12 "-" "-" 15`

	record, ok := extractor.Extract(line)
	require.True(t, ok)
	assert.Equal(t, TimestampUnparseable, record.Timestamp.Status)
	assert.Equal(t, "POST", record.Method)
	assert.Equal(t, int64(15), record.DurationMs)
}

func TestExtractor_Extract_UserAgentWithQuotesAndSpaces(t *testing.T) {
	extractor := NewExtractor()

	line := `192.168.1.20 - web - [15/12/2024:23:59:59] "DELETE /api/items/42?force=true HTTP/1.1" 404 0 "-" "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)" 7 trailing-field`

	record, ok := extractor.Extract(line)
	require.True(t, ok)
	assert.Equal(t, "DELETE", record.Method)
	assert.Equal(t, "/api/items/42?force=true", record.RequestPath)
	assert.Equal(t, "404", record.StatusCode)
	assert.Equal(t, int64(7), record.DurationMs)
}

func TestExtractor_MatchAndCoerceStages(t *testing.T) {
	extractor := NewExtractor()

	fields, ok := extractor.Match(sampleLine)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5", fields.Address)
	assert.Equal(t, "01/07/2025:06:00:04", fields.Timestamp)
	assert.Equal(t, "503", fields.Code)
	assert.Equal(t, "842", fields.Duration)

	t.Run("coerce rejects overflowing duration", func(t *testing.T) {
		fields.Duration = "99999999999999999999999"
		record, err := extractor.Coerce(fields)
		assert.Error(t, err)
		assert.Nil(t, record)
	})
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		status TimestampStatus
	}{
		{"absent", "", TimestampAbsent},
		{"valid", "01/07/2025:06:00:04", TimestampValid},
		{"valid unpadded", "1/7/2025:6:0:4", TimestampValid},
		{"valid mixed padding", "1/07/2025:06:00:04", TimestampValid},
		{"two digit year", "01/07/25:06:00:04", TimestampUnparseable},
		{"wrong separator", "01-07-2025 06:00:04", TimestampUnparseable},
		{"impossible date", "31/02/2025:06:00:04", TimestampUnparseable},
		{"garbage", "yesterday", TimestampUnparseable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := ParseTimestamp(tt.raw)
			assert.Equal(t, tt.status, ts.Status)
			assert.Equal(t, tt.status == TimestampValid, ts.Valid())
		})
	}
}

func TestParseTimestamp_PaddingIsOptional(t *testing.T) {
	padded := ParseTimestamp("01/07/2025:06:00:04")
	unpadded := ParseTimestamp("1/7/2025:6:00:04")
	require.True(t, padded.Valid())
	require.True(t, unpadded.Valid())
	assert.True(t, padded.Time.Equal(unpadded.Time))
	assert.Equal(t, time.July, unpadded.Time.Month())
	assert.Equal(t, 1, unpadded.Time.Day())
}
