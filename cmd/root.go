package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log-filter/internal/aggregator"
	"log-filter/internal/config"
	"log-filter/internal/extractor"
	"log-filter/internal/filters"
	"log-filter/internal/logging"
	"log-filter/internal/output"
	"log-filter/internal/processor"
	"log-filter/internal/source"

	"github.com/spf13/cobra"
)

// options holds the raw flag values of one invocation
type options struct {
	configPath      string
	regex           string
	from            string
	to              string
	http            string
	durationBetween string
	ip              string
	subnet          string
	top             bool
	summary         bool
	outputFormat    string
	color           string
	logLevel        string
}

// newRootCmd builds the command with fresh flag state, so repeated runs share nothing
func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "log-filter <file>",
		Short: "Filter and summarize web server access logs",
		Long: `A CLI utility to filter access logs and summarize request latency.

Each line is parsed with a fixed access log grammar; lines that do not match are skipped.
All filters are optional and combined with AND. Use "-" to read standard input; gzip
files are decompressed automatically.

Examples:
  # Print all 5xx and 404 responses, colored by severity
  log-filter access.log --http 5xx,404

  # Requests between 300ms and 2s from one subnet
  log-filter access.log --duration-between 300ms-2s --subnet 10.0.0.0/24

  # Top 10 longest requests in a time window
  log-filter access.log --from 01/07/2025:06:00:00 --to 01/07/2025:07:00:00 --top

  # Average duration per IP and URL, as JSON lines
  log-filter access.log --summary --format json

  # Use a saved filter profile
  log-filter access.log --config checkout-errors.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogFilter(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "filter profile (YAML); flags override its values")
	flags.StringVar(&opts.regex, "regex", "", "case-insensitive regex searched in the whole line")
	flags.StringVar(&opts.from, "from", "", "start time, inclusive [DD/MM/YYYY:HH:MM:SS]")
	flags.StringVar(&opts.to, "to", "", "end time, inclusive [DD/MM/YYYY:HH:MM:SS]")
	flags.StringVar(&opts.http, "http", "", "HTTP status filter, e.g. 4xx,5xx,200")
	flags.StringVar(&opts.durationBetween, "duration-between", "", "duration range, inclusive, e.g. 300ms-2s")
	flags.StringVar(&opts.ip, "ip", "", "exact client IP")
	flags.StringVar(&opts.subnet, "subnet", "", "client subnet (CIDR)")
	flags.BoolVar(&opts.top, "top", false, "show the top 10 longest requests")
	flags.BoolVar(&opts.summary, "summary", false, "show average duration per IP and URL")
	flags.StringVarP(&opts.outputFormat, "format", "f", "text", "output format: text, json")
	flags.StringVar(&opts.color, "color", "auto", "color listed lines by status: auto, always, never")
	flags.StringVar(&opts.logLevel, "log-level", logging.DefaultLevel, "diagnostic log level on stderr: debug, info, warn, error")

	return cmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runLogFilter(cmd *cobra.Command, opts *options, path string) error {
	// Load profile, then let explicitly set flags win
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cmd, opts, cfg); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logging.Shutdown(logger)

	// Build filters before touching the input so config errors abort early
	filter, err := filters.New(filters.Options{
		Regex:           cfg.Filters.Regex,
		From:            cfg.Filters.From,
		To:              cfg.Filters.To,
		HTTPCodes:       cfg.Filters.HTTP,
		DurationBetween: cfg.Filters.DurationBetween,
		IP:              cfg.Filters.IP,
		Subnet:          cfg.Filters.Subnet,
	})
	if err != nil {
		if errors.Is(err, filters.ErrInvalidDuration) {
			return fmt.Errorf("invalid --duration-between format, use like: 300ms-2s (%w)", err)
		}
		return err
	}
	for _, warning := range filter.Warnings() {
		logger.Warn("msg", "Filter value ignored or unusable",
			"component", "cli",
			"error", warning.Error())
	}

	renderer, err := output.NewRenderer(cmd.OutOrStdout(), output.Options{
		Format: cfg.Output.Format,
		Color:  cfg.Output.Color,
	})
	if err != nil {
		return err
	}

	logger.Info("msg", "Starting log filter",
		"component", "cli",
		"file", path,
		"mode", cfg.Output.Mode,
		"format", cfg.Output.Format)

	reader, err := source.Open(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	// Setup signal handling so an interrupted scan stops cleanly
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := aggregator.New()
	p := processor.New(extractor.NewExtractor(), filter, logger, cfg.Processing.MaxLineBytes)
	result, err := p.Run(ctx, reader, state)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", path, err)
	}

	logger.Info("msg", "Scan complete",
		"component", "cli",
		"lines_read", result.LinesRead,
		"lines_oversized", result.LinesOversized,
		"lines_parsed", result.LinesParsed,
		"records_accepted", result.RecordsAccepted)

	return renderer.Render(aggregator.Mode(cfg.Output.Mode), state)
}

// applyFlags copies explicitly set flags over the profile values
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) error {
	flags := cmd.Flags()

	overrides := []struct {
		name   string
		value  string
		target *string
	}{
		{"regex", opts.regex, &cfg.Filters.Regex},
		{"from", opts.from, &cfg.Filters.From},
		{"to", opts.to, &cfg.Filters.To},
		{"http", opts.http, &cfg.Filters.HTTP},
		{"duration-between", opts.durationBetween, &cfg.Filters.DurationBetween},
		{"ip", opts.ip, &cfg.Filters.IP},
		{"subnet", opts.subnet, &cfg.Filters.Subnet},
		{"format", opts.outputFormat, &cfg.Output.Format},
		{"color", opts.color, &cfg.Output.Color},
		{"log-level", opts.logLevel, &cfg.Logging.Level},
	}
	for _, o := range overrides {
		if flags.Changed(o.name) {
			*o.target = o.value
		}
	}

	if opts.top && opts.summary {
		return fmt.Errorf("--top and --summary cannot be used together")
	}
	switch {
	case opts.top:
		cfg.Output.Mode = string(aggregator.ModeTop)
	case opts.summary:
		cfg.Output.Mode = string(aggregator.ModeSummary)
	}

	return cfg.Validate()
}
