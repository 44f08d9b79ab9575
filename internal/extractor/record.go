package extractor

import "time"

// TimestampStatus tells whether a timestamp was supplied and whether it parsed
type TimestampStatus int

const (
	// TimestampAbsent means no value was supplied (e.g. no --from bound configured)
	TimestampAbsent TimestampStatus = iota
	// TimestampUnparseable means a value was supplied but did not match the layout
	TimestampUnparseable
	// TimestampValid means Time holds the parsed instant
	TimestampValid
)

// Timestamp is an instant that may be absent or unparseable
type Timestamp struct {
	Time   time.Time
	Status TimestampStatus
}

// Valid reports whether the timestamp carries a usable instant
func (t Timestamp) Valid() bool {
	return t.Status == TimestampValid
}

// Record represents one access log line that matched the grammar
type Record struct {
	SourceAddress string
	Timestamp     Timestamp
	Method        string
	RequestPath   string
	StatusCode    string
	DurationMs    int64
	RawLine       string
}
