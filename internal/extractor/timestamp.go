package extractor

import "time"

// TimestampLayout is the DD/MM/YYYY:HH:MM:SS layout used by log lines and --from/--to.
// Every field except the year also accepts a single digit ("1/7/2025:6:00:04").
const TimestampLayout = "2/1/2006:15:4:5"

// ParseTimestamp never fails: an empty input is absent, a bad input is unparseable
func ParseTimestamp(raw string) Timestamp {
	if raw == "" {
		return Timestamp{Status: TimestampAbsent}
	}

	t, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		return Timestamp{Status: TimestampUnparseable}
	}

	return Timestamp{Time: t, Status: TimestampValid}
}
