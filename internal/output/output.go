package output

import (
	"encoding/json"
	"fmt"
	"io"

	"log-filter/internal/aggregator"
	"log-filter/internal/extractor"

	"golang.org/x/term"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
	ansiReset  = "\x1b[0m"
)

// Options controls how views are rendered
type Options struct {
	Format string // text, json
	Color  string // auto, always, never
}

// Renderer writes aggregation views to an output stream
type Renderer struct {
	w      io.Writer
	format string
	color  bool
}

// TopEntry is the JSON shape of one top-N line
type TopEntry struct {
	Rank       int    `json:"rank"`
	DurationMs int64  `json:"duration_ms"`
	IP         string `json:"ip"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode string `json:"status_code"`
}

// LineEntry is the JSON shape of one listed line
type LineEntry struct {
	Line     string `json:"line"`
	Severity string `json:"severity"`
}

// AverageEntry is the JSON shape of one summary line
type AverageEntry struct {
	Group     string  `json:"group"`
	Key       string  `json:"key"`
	Count     int     `json:"count"`
	AverageMs float64 `json:"average_ms"`
}

// NewRenderer validates the options and resolves "auto" color against w
func NewRenderer(w io.Writer, opts Options) (*Renderer, error) {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Color == "" {
		opts.Color = ColorAuto
	}

	switch opts.Format {
	case FormatText, FormatJSON:
	default:
		return nil, fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", opts.Format)
	}

	var color bool
	switch opts.Color {
	case ColorAlways:
		color = true
	case ColorNever:
		color = false
	case ColorAuto:
		color = isTerminal(w)
	default:
		return nil, fmt.Errorf("invalid color mode: %s (must be 'auto', 'always' or 'never')", opts.Color)
	}

	return &Renderer{
		w:      w,
		format: opts.Format,
		color:  color && opts.Format == FormatText,
	}, nil
}

// Render writes the view selected by mode
func (r *Renderer) Render(mode aggregator.Mode, state *aggregator.State) error {
	switch mode {
	case aggregator.ModeTop:
		return r.RenderTop(state.Top(aggregator.TopN))
	case aggregator.ModeSummary:
		return r.RenderSummary(state.Summary())
	case aggregator.ModeList, "":
		return r.RenderListing(state.Listing())
	default:
		return fmt.Errorf("unknown output mode: %s", mode)
	}
}

// RenderListing prints every accepted line, colored by severity in text mode
func (r *Renderer) RenderListing(entries []aggregator.ListingEntry) error {
	if r.format == FormatJSON {
		enc := json.NewEncoder(r.w)
		for _, entry := range entries {
			if err := enc.Encode(LineEntry{Line: entry.Line, Severity: entry.Severity.String()}); err != nil {
				return fmt.Errorf("failed to write line: %w", err)
			}
		}
		return nil
	}

	for _, entry := range entries {
		if _, err := fmt.Fprintln(r.w, r.colorize(entry.Line, entry.Severity)); err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}
	return nil
}

// RenderTop prints the longest requests as "<duration>ms - <ip> <method> <path>"
func (r *Renderer) RenderTop(records []*extractor.Record) error {
	if r.format == FormatJSON {
		enc := json.NewEncoder(r.w)
		for i, record := range records {
			entry := TopEntry{
				Rank:       i + 1,
				DurationMs: record.DurationMs,
				IP:         record.SourceAddress,
				Method:     record.Method,
				Path:       record.RequestPath,
				StatusCode: record.StatusCode,
			}
			if err := enc.Encode(entry); err != nil {
				return fmt.Errorf("failed to write top entry: %w", err)
			}
		}
		return nil
	}

	if _, err := fmt.Fprintf(r.w, "\n🔟 Top %d Longest Requests:\n", aggregator.TopN); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, record := range records {
		if _, err := fmt.Fprintln(r.w, FormatTopLine(record)); err != nil {
			return fmt.Errorf("failed to write top entry: %w", err)
		}
	}
	return nil
}

// RenderSummary prints the per-IP then per-URL averages with two decimals
func (r *Renderer) RenderSummary(summary aggregator.Summary) error {
	if r.format == FormatJSON {
		enc := json.NewEncoder(r.w)
		for _, group := range []struct {
			name     string
			averages []aggregator.KeyAverage
		}{{"ip", summary.ByIP}, {"url", summary.ByURL}} {
			for _, avg := range group.averages {
				entry := AverageEntry{Group: group.name, Key: avg.Key, Count: avg.Count, AverageMs: avg.AverageMs}
				if err := enc.Encode(entry); err != nil {
					return fmt.Errorf("failed to write summary entry: %w", err)
				}
			}
		}
		return nil
	}

	if err := r.writeAverages("\n📊 Average Duration by IP:", summary.ByIP); err != nil {
		return err
	}
	return r.writeAverages("\n📊 Average Duration by URL:", summary.ByURL)
}

// FormatTopLine renders one record of the top view
func FormatTopLine(record *extractor.Record) string {
	return fmt.Sprintf("%dms - %s %s %s", record.DurationMs, record.SourceAddress, record.Method, record.RequestPath)
}

func (r *Renderer) writeAverages(header string, averages []aggregator.KeyAverage) error {
	if _, err := fmt.Fprintln(r.w, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, avg := range averages {
		if _, err := fmt.Fprintf(r.w, "%s: %.2f ms\n", avg.Key, avg.AverageMs); err != nil {
			return fmt.Errorf("failed to write summary entry: %w", err)
		}
	}
	return nil
}

func (r *Renderer) colorize(line string, severity aggregator.Severity) string {
	if !r.color {
		return line
	}

	switch severity {
	case aggregator.SeverityServerError:
		return ansiRed + line + ansiReset
	case aggregator.SeverityClientError:
		return ansiYellow + line + ansiReset
	case aggregator.SeveritySuccess:
		return ansiGreen + line + ansiReset
	default:
		return line
	}
}

// isTerminal reports whether w is a terminal file descriptor
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
