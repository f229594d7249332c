package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// cleanups run in reverse order after the command finishes.
var cleanups []func()

func setupSession(cmd *cobra.Command) error {
	logger, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopProf)

	stopTrace, err := setupTracing(cmd)
	if err != nil {
		teardownSession()
		return err
	}
	cleanups = append(cleanups, stopTrace)
	return nil
}

func teardownSession() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// setupLogging builds the stderr text logger from --log-level.
func setupLogging(cmd *cobra.Command) (*slog.Logger, error) {
	levelStr, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	level, err := parseLogLevel(levelStr)
	if err != nil {
		return nil, err
	}
	h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return slog.New(h), nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return level, fmt.Errorf("invalid log level: %q (expected: debug|info|warn|error)", s)
	}
	return level, nil
}
