package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tracereport/internal/eventlog"
)

func newConvertCmd() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert [flags] <in> <out>",
		Short: "Re-encode an event log between ndjson and msgpack",
		Args:  cobra.ExactArgs(2),
		RunE:  runConvert,
	}
	convertCmd.Flags().String("from", "auto", "input format (auto|ndjson|msgpack)")
	convertCmd.Flags().String("to", "auto", "output format (auto|ndjson|msgpack)")
	return convertCmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	from, err := formatFlag(cmd, "from")
	if err != nil {
		return err
	}
	to, err := formatFlag(cmd, "to")
	if err != nil {
		return err
	}

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	n, copyErr := convertLog(
		eventlog.NewReader(in, eventlog.Detect(args[0], from)),
		eventlog.NewWriter(out, eventlog.Detect(args[1], to)),
	)
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("%s: %w", args[0], copyErr)
	}
	slog.Info("converted event log", slog.Int("entries", n), slog.String("out", args[1]))
	return nil
}

// convertLog copies every entry after the header from r to w.
func convertLog(r *eventlog.Reader, w *eventlog.Writer) (int, error) {
	n := 0
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return n, w.Err()
		}
		if err != nil {
			return n, err
		}
		w.Write(e)
		n++
	}
}

func formatFlag(cmd *cobra.Command, name string) (eventlog.Format, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return eventlog.FormatAuto, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return eventlog.ParseFormat(s)
}
