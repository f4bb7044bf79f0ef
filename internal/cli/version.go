package cli

import (
	"fmt"

	"github.com/phonekit/phonekit/internal/cli/ui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print phonekit version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat(cmd) == "json" {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"version": buildVersion,
				"commit":  buildCommit,
				"date":    buildDate,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s phonekit %s (commit: %s, built: %s)\n", ui.BrandEmoji, buildVersion, buildCommit, buildDate)
		return nil
	},
}
