package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// BuildInfo carries the build-time version metadata set via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var buildInfo = BuildInfo{
	Version:   "dev",
	Commit:    "unknown",
	BuildDate: "unknown",
}

var rootCmd = &cobra.Command{
	Use:           "hookcatch",
	Short:         "Capture and inspect webhook requests",
	Long:          "hookcatch runs a webhook capture server: create a token, point webhooks at its URL, and inspect every request it receives.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hookcatch %s (commit %s, built %s)\n", buildInfo.Version, buildInfo.Commit, buildInfo.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	initServeCmd()
	initTokensCmd()
	initLogsCmd()
}

// Execute runs the CLI with the given build metadata.
func Execute(info BuildInfo) {
	if info.Version != "" {
		buildInfo = info
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
