package cli

import (
	"fmt"
	"strings"

	"github.com/phonekit/phonekit/internal/cli/ui"
	"github.com/phonekit/phonekit/internal/country"
	"github.com/phonekit/phonekit/internal/phone"
	"github.com/spf13/cobra"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the countries phonekit knows",
	Long: `List every country in the built-in registry with its dialing code,
ISO codes and area-code rules. Use --search to filter by name or code.`,
	Args: cobra.NoArgs,
	RunE: runCountries,
}

var countriesShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Show one country by dialing code or ISO code",
	Example: `phonekit countries show 385
phonekit countries show HRV
phonekit countries show +1876`,
	Args: cobra.ExactArgs(1),
	RunE: runCountriesShow,
}

var countriesAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Cross-check the registry against libphonenumber metadata",
	Long: `Compare every country that carries an ISO2 code with the libphonenumber
metadata: calling code, and whether the region's example number parses back
to the same country. Exits non-zero when any finding is reported.`,
	Args: cobra.NoArgs,
	RunE: runCountriesAudit,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the named format templates",
	Args:  cobra.NoArgs,
	RunE:  runFormats,
}

func init() {
	countriesCmd.Flags().StringP("search", "s", "", "Filter by name, ISO code or dialing code prefix")

	countriesCmd.AddCommand(countriesShowCmd)
	countriesCmd.AddCommand(countriesAuditCmd)
}

var countryColumns = []string{"dialing_code", "name", "iso3_code", "iso2_code", "area_code_pattern", "max_national_length"}

func countryRow(c *country.Country) []string {
	return []string{c.DialingCode, c.Name, c.ISO3, c.ISO2, c.AreaCodePattern, fmt.Sprint(c.MaxNationalLength)}
}

// matchCountry reports whether c matches a --search query.
func matchCountry(c *country.Country, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.EqualFold(c.ISO3, q) || strings.EqualFold(c.ISO2, q) ||
		strings.HasPrefix(c.DialingCode, strings.TrimPrefix(q, "+"))
}

func runCountries(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")

	var list []*country.Country
	for _, c := range country.Default().All() {
		if matchCountry(c, search) {
			list = append(list, c)
		}
	}

	out := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case "json":
		return writeJSON(out, list)
	case "csv":
		rows := make([][]string, len(list))
		for i, c := range list {
			rows[i] = countryRow(c)
		}
		return writeCSV(out, countryColumns, rows)
	}

	if len(list) == 0 {
		fmt.Fprintf(out, "No countries match %q.\n", search)
		return nil
	}
	fmt.Fprintf(out, "%s\n", ui.StyleHeader.Render(fmt.Sprintf("%-8s %-5s %-4s %s", "CODE", "ISO3", "ISO2", "NAME")))
	for _, c := range list {
		fmt.Fprintf(out, "%-8s %-5s %-4s %s\n", "+"+c.DialingCode, c.ISO3, c.ISO2, c.Name)
	}
	fmt.Fprintf(out, "\n%s\n", ui.StyleDim.Render(fmt.Sprintf("%d countries", len(list))))
	return nil
}

func runCountriesShow(cmd *cobra.Command, args []string) error {
	c, ok := country.Default().Lookup(args[0])
	if !ok {
		return ui.WithSuggestions(fmt.Errorf("no country matches %q", args[0]),
			"phonekit countries --search "+strings.TrimPrefix(args[0], "+"))
	}
	regions := country.Regions(c)

	out := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case "json":
		return writeJSON(out, map[string]any{"country": c, "regions": regions})
	case "csv":
		return writeCSV(out, countryColumns, [][]string{countryRow(c)})
	}

	line := func(label, value string) {
		if value == "" {
			value = ui.StyleDim.Render("-")
		}
		fmt.Fprintf(out, "%s%s\n", ui.StyleLabel.Render(label), value)
	}
	line("Name", c.Name)
	line("Dialing code", "+"+c.DialingCode)
	line("ISO3", c.ISO3)
	line("ISO2", c.ISO2)
	line("Area pattern", c.AreaCodePattern)
	line("Max length", fmt.Sprint(c.MaxNationalLength))
	line("Regions", strings.Join(regions, ", "))
	return nil
}

func runCountriesAudit(cmd *cobra.Command, args []string) error {
	findings := country.Audit(country.Default())

	out := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case "json":
		type finding struct {
			DialingCode string `json:"dialing_code"`
			ISO3        string `json:"iso3_code"`
			Kind        string `json:"kind"`
			Detail      string `json:"detail"`
		}
		list := make([]finding, len(findings))
		for i, f := range findings {
			list[i] = finding{f.Country.DialingCode, f.Country.ISO3, string(f.Kind), f.Detail}
		}
		if err := writeJSON(out, list); err != nil {
			return err
		}
	default:
		if len(findings) == 0 {
			fmt.Fprintf(out, "%s registry agrees with libphonenumber\n", ui.StyleSuccess.Render(ui.SymbolCheck))
		}
		for _, f := range findings {
			fmt.Fprintf(out, "%s %s\n", ui.StyleWarning.Render(ui.SymbolWarning), f)
		}
	}

	if len(findings) > 0 {
		return fmt.Errorf("registry audit reported %d findings", len(findings))
	}
	return nil
}

func runFormats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f, err := cfg.Formatter()
	if err != nil {
		return err
	}
	templates := f.Templates()

	out := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case "json":
		return writeJSON(out, map[string]any{"default": cfg.Format.Default, "templates": templates})
	case "csv":
		rows := make([][]string, len(templates))
		for i, t := range templates {
			rows[i] = []string{t.Name, t.Pattern, fmt.Sprint(t.BuiltIn)}
		}
		return writeCSV(out, []string{"name", "pattern", "built_in"}, rows)
	}

	for _, t := range templates {
		marker := " "
		if t.Name == cfg.Format.Default {
			marker = ui.StyleSuccess.Render(ui.SymbolDot)
		}
		source := "built-in"
		if !t.BuiltIn {
			source = "config"
		}
		fmt.Fprintf(out, "%s %-24s %-24s %s\n", marker, t.Name, t.Pattern, ui.StyleDim.Render(source))
	}
	if !phone.IsTemplateName(cfg.Format.Default) {
		if _, ok := f.Lookup(cfg.Format.Default); !ok {
			fmt.Fprintf(out, "\n%s %s\n", ui.StyleDim.Render("default pattern:"), cfg.Format.Default)
		}
	}
	return nil
}
