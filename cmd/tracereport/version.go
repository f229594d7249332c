package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tracereport/internal/config"
	"tracereport/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	var (
		format string
		full   bool
	)
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show tracereport build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(format) {
			case "json":
				return renderVersionJSON(cmd.OutOrStdout(), full)
			case "pretty":
				colorSetting, err := cmd.Root().PersistentFlags().GetString("color")
				if err != nil {
					return fmt.Errorf("failed to get color flag: %w", err)
				}
				mode, err := config.ParseColor(colorSetting)
				if err != nil {
					return err
				}
				useColor := mode == config.ColorOn || (mode == config.ColorAuto && isTerminal(os.Stdout))
				renderVersionPretty(cmd.OutOrStdout(), useColor, full)
				return nil
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	versionCmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&full, "full", false, "include commit and build date")
	return versionCmd
}

func renderVersionPretty(out io.Writer, useColor, full bool) {
	fmt.Fprintf(out, "tracereport %s\n", version.Colored(useColor))
	if full {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, full bool) error {
	payload := versionPayload{
		Tool:    "tracereport",
		Version: version.String(),
	}
	if full {
		payload.GitCommit = valueOrUnknown(version.GitCommit)
		payload.BuildDate = valueOrUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
