package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/phonekit/phonekit/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersion is called from main to inject build-time version info.
func SetVersion(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
}

var rootCmd = &cobra.Command{
	Use:   "phonekit",
	Short: "phonekit: parse, validate and format phone numbers",
	Long: `phonekit extracts a phone number from free text, splits it into dialing code,
area code and subscriber number, and renders it with named templates or %-patterns.

Get started:
  phonekit parse "+385 91 512 5486"
  phonekit format "blabla +1 (212) 555-1234 ext 123" us
  phonekit validate --country 44 "020 7946 0958"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// flagOverrides lists the command flags that override config values.
var flagOverrides = []string{"country", "area", "format", "port", "host", "log-level"}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to phonekit.toml config file")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format (shorthand for --output json)")
	rootCmd.PersistentFlags().String("output", "table", "Output format: table, json, or csv")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		parseCmd, formatCmd, validateCmd, batchCmd,
		countriesCmd, formatsCmd,
		serveCmd, mcpCmd,
		configCmd, versionCmd,
	)

	initHelp()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// outputFormat resolves --json and --output to table, json or csv.
func outputFormat(cmd *cobra.Command) string {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return "json"
	}
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		return out
	}
	return "table"
}

// addParseFlags registers the per-command parse overrides.
func addParseFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("country", "c", "", "Dialing code assumed for national numbers (e.g. 385)")
	cmd.Flags().StringP("area", "a", "", "Area code assumed for local numbers")
}

// loadConfig resolves the configuration for cmd: defaults, phonekit.toml,
// PHONEKIT_* env, then any override flag the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	flags := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if slices.Contains(flagOverrides, f.Name) {
			flags[f.Name] = f.Value.String()
		}
	})

	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the stderr logger for the given level and format.
func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseSlogLevel(level)}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCSV writes a header line followed by rows.
func writeCSV(w io.Writer, cols []string, rows [][]string) error {
	if err := csv.NewWriter(w).WriteAll(append([][]string{cols}, rows...)); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
