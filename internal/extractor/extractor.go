package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// accessLinePattern is the one access log grammar we understand:
//
//	10.0.0.5 - frontend - [01/07/2025:06:00:04] "GET /api/cart HTTP/1.1" 200 512 "-" "curl/8.4" 842
//
// Only the start is anchored; anything after the duration field is ignored.
const accessLinePattern = `^(?P<ip>\d+\.\d+\.\d+\.\d+)\s+-\s+\w+\s+-\s+` + // address, ident
	`\[(?P<dt>[\d/:]+)\].+?` + // bracketed timestamp, gap
	`"(?P<method>[A-Z]+)\s+(?P<url>[^\s]+)\s+HTTP.*?"\s+` + // request line
	`(?P<code>\d{3})\s+\d+\s+` + // status, bytes
	`".*?"\s+".*?"\s+` + // referrer, user agent
	`(?P<duration>\d+)` // duration in ms

// Fields holds the raw captures of a grammar match, before any coercion
type Fields struct {
	Address   string
	Timestamp string
	Method    string
	Path      string
	Code      string
	Duration  string
	Line      string
}

// Extractor extracts structured records from raw access log lines
type Extractor struct {
	lineRegex *regexp.Regexp

	ipIdx       int
	dtIdx       int
	methodIdx   int
	urlIdx      int
	codeIdx     int
	durationIdx int
}

// NewExtractor compiles the access log grammar
func NewExtractor() *Extractor {
	lineRegex := regexp.MustCompile(accessLinePattern)

	return &Extractor{
		lineRegex:   lineRegex,
		ipIdx:       lineRegex.SubexpIndex("ip"),
		dtIdx:       lineRegex.SubexpIndex("dt"),
		methodIdx:   lineRegex.SubexpIndex("method"),
		urlIdx:      lineRegex.SubexpIndex("url"),
		codeIdx:     lineRegex.SubexpIndex("code"),
		durationIdx: lineRegex.SubexpIndex("duration"),
	}
}

// Match applies the grammar to a line and returns the captured fields
func (e *Extractor) Match(line string) (Fields, bool) {
	matches := e.lineRegex.FindStringSubmatch(line)
	if matches == nil {
		return Fields{}, false
	}

	return Fields{
		Address:   matches[e.ipIdx],
		Timestamp: matches[e.dtIdx],
		Method:    matches[e.methodIdx],
		Path:      matches[e.urlIdx],
		Code:      matches[e.codeIdx],
		Duration:  matches[e.durationIdx],
		Line:      line,
	}, true
}

// Coerce converts matched fields into a Record
func (e *Extractor) Coerce(fields Fields) (*Record, error) {
	durationMs, err := strconv.ParseInt(fields.Duration, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration field %q: %w", fields.Duration, err)
	}

	return &Record{
		SourceAddress: fields.Address,
		Timestamp:     ParseTimestamp(fields.Timestamp),
		Method:        fields.Method,
		RequestPath:   fields.Path,
		StatusCode:    fields.Code,
		DurationMs:    durationMs,
		RawLine:       strings.TrimSpace(fields.Line),
	}, nil
}

// Extract returns a record for a line, or false when the line is not an access log line.
// Non-matching lines are expected noise and are not reported.
func (e *Extractor) Extract(line string) (*Record, bool) {
	fields, ok := e.Match(line)
	if !ok {
		return nil, false
	}

	record, err := e.Coerce(fields)
	if err != nil {
		return nil, false
	}

	return record, true
}
