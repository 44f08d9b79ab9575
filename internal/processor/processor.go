package processor

import (
	"context"
	"fmt"
	"io"

	"log-filter/internal/aggregator"
	"log-filter/internal/extractor"
	"log-filter/internal/filters"
	"log-filter/internal/source"

	"github.com/lixenwraith/log"
)

// cancelCheckInterval is how many lines are scanned between context checks
const cancelCheckInterval = 1000

// Result summarizes one pass over the input
type Result struct {
	LinesRead       int
	LinesOversized  int
	LinesParsed     int
	RecordsAccepted int
	FilterStats     filters.Stats
}

// Processor runs the extract -> filter -> aggregate pass over a line stream
type Processor struct {
	extractor    *extractor.Extractor
	filter       *filters.Filter
	logger       *log.Logger
	maxLineBytes int
}

// New creates a processor; maxLineBytes <= 0 uses source.DefaultMaxLineBytes
func New(ext *extractor.Extractor, filter *filters.Filter, logger *log.Logger, maxLineBytes int) *Processor {
	return &Processor{
		extractor:    ext,
		filter:       filter,
		logger:       logger,
		maxLineBytes: maxLineBytes,
	}
}

// Run scans r once, adding every accepted record to state. Lines that do not match the
// grammar, including lines over the byte limit, are skipped silently. A cancelled
// context stops the scan with ctx.Err().
func (p *Processor) Run(ctx context.Context, r io.Reader, state *aggregator.State) (Result, error) {
	var result Result

	lines := source.Lines(r, p.maxLineBytes)
	for lines.Next() {
		result.LinesRead++
		if result.LinesRead%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		if lines.Oversized() {
			result.LinesOversized++
			continue
		}

		record, ok := p.extractor.Extract(lines.Text())
		if !ok {
			continue
		}
		result.LinesParsed++

		if !p.filter.Accept(record) {
			continue
		}
		state.Add(record)
		result.RecordsAccepted++
	}

	if err := lines.Err(); err != nil {
		return result, fmt.Errorf("error reading log lines (after line %d): %w", result.LinesRead, err)
	}

	result.FilterStats = p.filter.Stats()

	p.logger.Debug("msg", "Finished scanning input",
		"component", "processor",
		"lines_read", result.LinesRead,
		"lines_oversized", result.LinesOversized,
		"lines_parsed", result.LinesParsed,
		"records_accepted", result.RecordsAccepted)
	for name, count := range result.FilterStats.Rejected {
		p.logger.Debug("msg", "Records rejected by filter",
			"component", "processor",
			"filter", name,
			"count", count)
	}

	return result, nil
}
