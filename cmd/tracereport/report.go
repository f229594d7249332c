package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"tracereport/internal/config"
	"tracereport/internal/eventlog"
	"tracereport/internal/jit"
	"tracereport/internal/metrics"
	"tracereport/internal/report"
	"tracereport/internal/source"
)

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report [flags] <eventlog>",
		Short: "Replay an event log and print the trace report",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	reportCmd.Flags().String("config", "", "path to a TOML config file")
	reportCmd.Flags().Int("context", 5, "function context lines around the first/last block")
	reportCmd.Flags().Int("op-width", 40, "width of the operation column")
	reportCmd.Flags().String("format", "auto", "event log format (auto|ndjson|msgpack)")
	reportCmd.Flags().String("source-root", "", "directory that relative chunk names resolve against")
	reportCmd.Flags().Int("jobs", 0, "max parallel source reads (0=auto)")
	reportCmd.Flags().String("metrics-out", "", "write Prometheus metrics in text format to file")
	reportCmd.Flags().StringP("output", "o", "", "write the report to file instead of stdout")
	return reportCmd
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadReportConfig(cmd)
	if err != nil {
		return err
	}
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := eventlog.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	metricsOut, err := cmd.Flags().GetString("metrics-out")
	if err != nil {
		return fmt.Errorf("failed to get metrics-out flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	out := cmd.OutOrStdout()
	colorOut := os.Stdout
	if outPath != "" {
		f, createErr := os.Create(outPath)
		if createErr != nil {
			return fmt.Errorf("failed to create output: %w", createErr)
		}
		defer f.Close()
		out, colorOut = f, f
	}
	useColor, err := resolveColor(cfg.Report.Color, colorOut)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger := slog.Default()
	met := metrics.NewCollector()
	prog := cfg.Program()
	collector := jit.NewCollector(prog, cfg.MessageTable(prog), prog.Table(), jit.WithMetrics(met))
	gate := jit.NewGate(collector)

	annotator := source.NewAnnotator(
		source.WithBaseDir(cfg.Report.SourceRoot),
		source.WithJobs(jobs),
		source.WithLogger(logger),
	)
	gen := report.NewGenerator(collector,
		report.WithInstrumentation(gate),
		report.WithAnnotator(annotator),
		report.WithOptions(report.Options{
			ContextLines: cfg.Report.ContextLines,
			OpWidth:      cfg.Report.OpWidth,
			Color:        useColor,
		}),
		report.WithLogger(logger),
		report.WithMetrics(met),
	)

	stats, replayErr := eventlog.ReplayFile(args[0], format, prog, gate, logger)
	logger.Debug("replay finished",
		slog.Int("protos", stats.Protos),
		slog.Int("events", stats.Events),
		slog.Int("attempts", collector.Len()))

	if replayErr != nil {
		// the shutdown hook still reports whatever was collected
		logger.Error("replay stopped early", slog.Any("error", replayErr))
		err = gen.Close(context.WithoutCancel(ctx), out)
	} else {
		err = gen.Generate(ctx, out)
	}
	err = errors.Join(replayErr, err)

	if showTimings {
		if werr := gen.Timer().WriteSummary(cmd.ErrOrStderr()); werr != nil {
			logger.Warn("failed to write timings", slog.Any("error", werr))
		}
	}
	if metricsOut != "" {
		if merr := met.WriteTextfile(metricsOut); merr != nil {
			err = errors.Join(err, fmt.Errorf("failed to write metrics: %w", merr))
		}
	}
	return err
}

// loadReportConfig reads --config and applies explicitly set flags on top.
func loadReportConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("context") {
		if cfg.Report.ContextLines, err = flags.GetInt("context"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("op-width") {
		if cfg.Report.OpWidth, err = flags.GetInt("op-width"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("source-root") {
		if cfg.Report.SourceRoot, err = flags.GetString("source-root"); err != nil {
			return cfg, err
		}
	}
	if cmd.Root().PersistentFlags().Changed("color") {
		if cfg.Report.Color, err = cmd.Root().PersistentFlags().GetString("color"); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// resolveColor turns a color setting into on/off for out.
func resolveColor(setting string, out *os.File) (bool, error) {
	mode, err := config.ParseColor(setting)
	if err != nil {
		return false, err
	}
	switch mode {
	case config.ColorOn:
		return true, nil
	case config.ColorOff:
		return false, nil
	default:
		return isTerminal(out), nil
	}
}
