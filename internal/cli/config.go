package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/phonekit/phonekit/internal/cli/ui"
	"github.com/phonekit/phonekit/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print resolved configuration",
	Long: `Load and print the resolved phonekit configuration as TOML.
Shows the result of merging defaults, phonekit.toml, environment variables, and flags.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long: `Get a specific configuration value by dotted key path.
Examples: parse.default_country_code, format.default, server.port, format.templates.europe`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in phonekit.toml",
	Long: `Set a configuration value in the phonekit.toml config file.
Creates the file if it doesn't exist.
Examples:
  phonekit config set parse.default_country_code 385
  phonekit config set format.default europe
  phonekit config set format.templates.zagreb "%A / %f %l"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default phonekit.toml",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
}

func configPathFlag(cmd *cobra.Command) string {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath
	}
	return configPath
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return writeJSON(cmd.OutOrStdout(), cfg)
	}

	out, err := cfg.ToTOML()
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	value, err := config.GetValue(cfg, args[0])
	if err != nil {
		return ui.WithSuggestions(err, "valid keys: "+strings.Join(config.Keys(), ", "))
	}

	if outputFormat(cmd) == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"key": args[0], "value": value})
	}

	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	configPath := configPathFlag(cmd)

	key := args[0]
	value := args[1]

	if !config.IsValidKey(key) {
		return ui.WithSuggestions(fmt.Errorf("unknown configuration key: %s", key),
			"valid keys: "+strings.Join(config.Keys(), ", ")+", format.templates.<name>")
	}

	if err := config.SetValue(configPath, key, value); err != nil {
		return fmt.Errorf("setting config value: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s = %s\n", key, value)
	fmt.Fprintf(out, "Written to %s\n", configPath)

	// Values may be set incrementally, so a file that fails validation only warns.
	cfg, err := config.Load(configPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.StyleWarning.Render("Warning:"), err)
	} else if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.StyleWarning.Render("Note:"), err)
	}

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configPathFlag(cmd)
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(configPath); err == nil && !force {
		return ui.WithSuggestions(fmt.Errorf("%s already exists", configPath),
			"phonekit config init --force   # overwrite it")
	}
	if err := config.GenerateDefault(configPath); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", ui.StyleSuccess.Render(ui.SymbolCheck), configPath)
	return nil
}
