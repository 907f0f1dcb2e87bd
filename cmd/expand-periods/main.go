// Command expand-periods reads a panel table, adds period-expansion columns
// described by a configuration file and writes the result.
//
//	expand-periods -config expand.yaml -input panel.csv -output out.parquet
//
// File formats follow the extension: .csv, .json, .jsonl/.ndjson and
// .parquet. EXPAND_* environment variables override the configuration file,
// and command-line flags override both.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/config"
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	"github.com/mztrk/ExpendbyPeriods/internal/expand"
	dfio "github.com/mztrk/ExpendbyPeriods/internal/io"
	"github.com/mztrk/ExpendbyPeriods/internal/monitoring"
	"github.com/mztrk/ExpendbyPeriods/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cliFlags struct {
	configPath string
	input      string
	output     string
	delimiter  string
	verbose    bool
	version    bool
	metrics    bool
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("expand-periods", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "configuration file (.json, .yaml or .yml)")
	fs.StringVar(&f.input, "input", "", "input table")
	fs.StringVar(&f.output, "output", "", "output table")
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV field delimiter for input and output (\\t for tab)")
	fs.BoolVar(&f.verbose, "v", false, "log progress")
	fs.BoolVar(&f.version, "version", false, "print version information and exit")
	fs.BoolVar(&f.metrics, "metrics", false, "print per-phase metrics after the run")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s\n\nUsage: expand-periods -input FILE -output FILE [-config FILE] [options]\n\n", version.Short())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.version {
		return f, nil
	}
	if f.input == "" || f.output == "" {
		fs.Usage()
		return f, errors.New("-input and -output are required")
	}
	return f, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	if f.version {
		fmt.Fprint(stdout, version.Info().String())
		return 0
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := loadConfig(f)
	if err != nil {
		logger.Error("loading configuration", "error", err)
		return 1
	}

	var metrics *monitoring.MetricsCollector
	if cfg.MetricsCollection {
		metrics = monitoring.NewMetricsCollector(true)
	}

	if err := expandFile(ctx, cfg, f.input, f.output, logger, metrics); err != nil {
		logger.Error("expansion failed", "error", err)
		return 1
	}

	if metrics != nil {
		if _, err := metrics.GetSummary().WriteTo(stderr); err != nil {
			logger.Error("writing metrics", "error", err)
			return 1
		}
	}
	return 0
}

func loadConfig(f cliFlags) (config.Config, error) {
	cfg := config.NewConfig()
	if f.configPath != "" {
		loaded, err := config.LoadFromFile(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	cfg = config.ApplyEnv(cfg)
	if f.delimiter != "" {
		cfg.CSVDelimiter = f.delimiter
	}
	if f.verbose {
		cfg.VerboseLogging = true
	}
	if f.metrics {
		cfg.MetricsCollection = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func expandFile(ctx context.Context, cfg config.Config, input, output string, logger *slog.Logger, metrics *monitoring.MetricsCollector) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	fileOpts, err := cfg.FileOptions()
	if err != nil {
		return err
	}
	mem := memory.NewGoAllocator()
	opts.Logger = logger
	opts.Metrics = metrics
	opts.Allocator = mem

	var df *dataframe.DataFrame
	err = metrics.RecordOperation("read", 0, func() error {
		var readErr error
		df, readErr = dfio.ReadFileWithOptions(input, mem, fileOpts)
		return readErr
	})
	if err != nil {
		return err
	}
	defer df.Release()

	result, err := expand.Expand(ctx, df, opts)
	if err != nil {
		return err
	}
	defer result.Release()

	return metrics.RecordOperation("write", result.Len(), func() error {
		return dfio.WriteFileWithOptions(output, result, fileOpts)
	})
}
