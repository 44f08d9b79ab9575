package filters

import (
	"fmt"
	"regexp"

	"log-filter/internal/extractor"
)

// Filter names used in rejection statistics
const (
	FilterTime     = "time"
	FilterDuration = "duration"
	FilterStatus   = "status"
	FilterAddress  = "address"
	FilterRegex    = "regex"
)

// Options holds the raw filter values as given on the command line or in a profile.
// Empty values disable the corresponding filter.
type Options struct {
	Regex           string
	From            string
	To              string
	HTTPCodes       string
	DurationBetween string
	IP              string
	Subnet          string
}

// Stats counts how records went through the filter
type Stats struct {
	Processed int
	Accepted  int
	Rejected  map[string]int
}

// Filter decides whether a record is accepted; every configured filter must pass
type Filter struct {
	from      extractor.Timestamp
	to        extractor.Timestamp
	window    *DurationWindow
	codes     StatusCodeSet
	addresses *AddressMatcher
	pattern   *regexp.Regexp

	stats Stats
}

// New compiles the options. Duration, status class and regex errors are returned here so
// the caller can abort before reading any input. A malformed address filter is not an
// error: it rejects every record and is reported through Warnings.
func New(opts Options) (*Filter, error) {
	f := &Filter{
		from:  extractor.ParseTimestamp(opts.From),
		to:    extractor.ParseTimestamp(opts.To),
		stats: Stats{Rejected: make(map[string]int)},
	}

	if opts.DurationBetween != "" {
		window, err := ParseDurationWindow(opts.DurationBetween)
		if err != nil {
			return nil, err
		}
		f.window = &window
	}

	codes, err := ExpandStatusCodes(opts.HTTPCodes)
	if err != nil {
		return nil, err
	}
	f.codes = codes

	f.addresses = NewAddressMatcher(opts.IP, opts.Subnet)

	if opts.Regex != "" {
		pattern, err := regexp.Compile("(?i)" + opts.Regex)
		if err != nil {
			return nil, fmt.Errorf("invalid --regex pattern %q: %w", opts.Regex, err)
		}
		f.pattern = pattern
	}

	return f, nil
}

// Accept applies all filters to a record, cheapest first
func (f *Filter) Accept(record *extractor.Record) bool {
	f.stats.Processed++

	switch {
	case !f.matchesTimeFilter(record.Timestamp):
		f.stats.Rejected[FilterTime]++
	case !f.matchesDurationFilter(record.DurationMs):
		f.stats.Rejected[FilterDuration]++
	case !f.matchesStatusFilter(record.StatusCode):
		f.stats.Rejected[FilterStatus]++
	case !f.matchesAddressFilter(record.SourceAddress):
		f.stats.Rejected[FilterAddress]++
	case !f.matchesRegexFilter(record.RawLine):
		f.stats.Rejected[FilterRegex]++
	default:
		f.stats.Accepted++
		return true
	}

	return false
}

// Stats returns a copy of the counters collected so far
func (f *Filter) Stats() Stats {
	rejected := make(map[string]int, len(f.stats.Rejected))
	for name, count := range f.stats.Rejected {
		rejected[name] = count
	}
	return Stats{
		Processed: f.stats.Processed,
		Accepted:  f.stats.Accepted,
		Rejected:  rejected,
	}
}

// Warnings lists filter values that did not parse but were accepted with degraded
// behavior: an ignored time bound, or an address filter that rejects everything.
func (f *Filter) Warnings() []error {
	var warnings []error
	if f.from.Status == extractor.TimestampUnparseable {
		warnings = append(warnings, fmt.Errorf("--from is not DD/MM/YYYY:HH:MM:SS and is ignored"))
	}
	if f.to.Status == extractor.TimestampUnparseable {
		warnings = append(warnings, fmt.Errorf("--to is not DD/MM/YYYY:HH:MM:SS and is ignored"))
	}
	if err := f.addresses.Err(); err != nil {
		warnings = append(warnings, fmt.Errorf("%w; no record will match", err))
	}
	return warnings
}

// matchesTimeFilter checks both bounds inclusively. A record timestamp or a bound that did
// not parse never excludes anything.
func (f *Filter) matchesTimeFilter(ts extractor.Timestamp) bool {
	if !ts.Valid() {
		return true
	}

	if f.from.Valid() && ts.Time.Before(f.from.Time) {
		return false
	}

	if f.to.Valid() && ts.Time.After(f.to.Time) {
		return false
	}

	return true
}

func (f *Filter) matchesDurationFilter(durationMs int64) bool {
	if f.window == nil {
		return true
	}
	return f.window.Contains(durationMs)
}

// matchesStatusFilter treats an empty code set as "no status filter"
func (f *Filter) matchesStatusFilter(code string) bool {
	if len(f.codes) == 0 {
		return true
	}
	return f.codes.Contains(code)
}

func (f *Filter) matchesAddressFilter(address string) bool {
	if !f.addresses.Enabled() {
		return true
	}
	return f.addresses.Match(address)
}

// matchesRegexFilter searches the whole raw line, not individual fields
func (f *Filter) matchesRegexFilter(line string) bool {
	if f.pattern == nil {
		return true
	}
	return f.pattern.MatchString(line)
}
