package aggregator

import (
	"slices"
	"strings"

	"log-filter/internal/extractor"
)

// TopN is the number of records shown by the top view
const TopN = 10

// Mode selects which view is produced for a run
type Mode string

const (
	ModeList    Mode = "list"
	ModeTop     Mode = "top"
	ModeSummary Mode = "summary"
)

// Severity is the color class of a listed line
type Severity int

const (
	SeverityNone Severity = iota
	SeveritySuccess
	SeverityClientError
	SeverityServerError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityClientError:
		return "client_error"
	case SeverityServerError:
		return "server_error"
	default:
		return "none"
	}
}

// ListingEntry is one accepted line in the full listing view
type ListingEntry struct {
	Line     string
	Severity Severity
}

// KeyAverage is the mean duration for one IP or URL
type KeyAverage struct {
	Key       string
	Count     int
	AverageMs float64
}

// Summary holds the per-IP and per-URL averages in first-appearance order
type Summary struct {
	ByIP  []KeyAverage
	ByURL []KeyAverage
}

// State accumulates accepted records for a single pass. It is not safe for concurrent use.
type State struct {
	records []*extractor.Record
	byIP    *durationIndex
	byURL   *durationIndex
}

// New returns an empty aggregation state
func New() *State {
	return &State{
		byIP:  newDurationIndex(),
		byURL: newDurationIndex(),
	}
}

// Add records an accepted record
func (s *State) Add(record *extractor.Record) {
	s.byIP.add(record.SourceAddress, record.DurationMs)
	s.byURL.add(record.RequestPath, record.DurationMs)
	s.records = append(s.records, record)
}

// Len returns the number of accepted records
func (s *State) Len() int {
	return len(s.records)
}

// Listing returns every accepted line in input order with its severity
func (s *State) Listing() []ListingEntry {
	entries := make([]ListingEntry, 0, len(s.records))
	for _, record := range s.records {
		entries = append(entries, ListingEntry{
			Line:     record.RawLine,
			Severity: ClassifySeverity(record.RawLine),
		})
	}
	return entries
}

// Top returns up to n records with the longest durations. Equal durations keep input order.
func (s *State) Top(n int) []*extractor.Record {
	sorted := slices.Clone(s.records)
	slices.SortStableFunc(sorted, func(a, b *extractor.Record) int {
		switch {
		case a.DurationMs > b.DurationMs:
			return -1
		case a.DurationMs < b.DurationMs:
			return 1
		default:
			return 0
		}
	})

	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Summary returns the mean duration per IP and per URL
func (s *State) Summary() Summary {
	return Summary{
		ByIP:  s.byIP.averages(),
		ByURL: s.byURL.averages(),
	}
}

// ClassifySeverity looks for " 5", " 4" and " 2" anywhere in the line, in that order.
// This is a substring heuristic: a path or byte count containing " 5" also counts as 5xx.
func ClassifySeverity(line string) Severity {
	switch {
	case strings.Contains(line, " 5"):
		return SeverityServerError
	case strings.Contains(line, " 4"):
		return SeverityClientError
	case strings.Contains(line, " 2"):
		return SeveritySuccess
	default:
		return SeverityNone
	}
}

// durationIndex maps a key to its durations and remembers first-appearance order
type durationIndex struct {
	order     []string
	durations map[string][]int64
}

func newDurationIndex() *durationIndex {
	return &durationIndex{durations: make(map[string][]int64)}
}

func (d *durationIndex) add(key string, durationMs int64) {
	if _, ok := d.durations[key]; !ok {
		d.order = append(d.order, key)
	}
	d.durations[key] = append(d.durations[key], durationMs)
}

func (d *durationIndex) averages() []KeyAverage {
	result := make([]KeyAverage, 0, len(d.order))
	for _, key := range d.order {
		values := d.durations[key]
		// float64 sum: durations near MaxInt64 would overflow an int64 total
		var sum float64
		for _, v := range values {
			sum += float64(v)
		}
		result = append(result, KeyAverage{
			Key:       key,
			Count:     len(values),
			AverageMs: sum / float64(len(values)),
		})
	}
	return result
}
