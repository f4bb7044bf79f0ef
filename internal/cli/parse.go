package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phonekit/phonekit/internal/cli/ui"
	"github.com/phonekit/phonekit/internal/config"
	"github.com/phonekit/phonekit/internal/country"
	"github.com/phonekit/phonekit/internal/phone"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <number>...",
	Short: "Split phone numbers into their components",
	Long: `Extract the phone number from each argument and print its country,
dialing code, area code, subscriber number and extension.

National numbers need a country context from --country, [parse] in
phonekit.toml or PHONEKIT_DEFAULT_COUNTRY_CODE.`,
	Example: `phonekit parse "+385 91 512 5486"
phonekit parse --country 1 "(212) 555-1234 ext 9"
phonekit parse --json "blabla +1 (212) 555-1234"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

var formatCmd = &cobra.Command{
	Use:   "format <number> [name-or-pattern]",
	Short: "Render a phone number with a template or pattern",
	Long: `Parse a phone number and render it with a named template (see
"phonekit formats") or a pattern built from these tokens:

  %c  dialing code          %a  area code
  %A  area code with 0      %n  area code + number
  %f  first 3 digits        %l  remaining digits
  %x  extension

Without a template the configured format.default is used.`,
	Example: `phonekit format "+385915125486" europe
phonekit format "+385915125486" "%A/%f-%l"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFormat,
}

var validateCmd = &cobra.Command{
	Use:   "validate <number>...",
	Short: "Check whether phone numbers parse",
	Long: `Report a verdict for every argument. Exits non-zero when any number
is invalid.`,
	Example: `phonekit validate "+385915125486" "invalid number"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runValidate,
}

func init() {
	addParseFlags(parseCmd)
	parseCmd.Flags().StringP("format", "f", "", "Template name or pattern for the formatted column")

	addParseFlags(formatCmd)

	addParseFlags(validateCmd)
}

var phoneColumns = []string{
	"input", "country", "iso3_code", "dialing_code", "area_code",
	"subscriber_number", "extension", "e164", "formatted",
}

type phoneResult struct {
	phone.Components
	Formatted string `json:"formatted"`
}

type verdict struct {
	Input   string `json:"input"`
	Valid   bool   `json:"valid"`
	E164    string `json:"e164,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// toolkit bundles what a command needs to parse and render numbers.
type toolkit struct {
	cfg       *config.Config
	parser    *phone.Parser
	formatter *phone.Formatter
}

func newToolkit(cmd *cobra.Command) (*toolkit, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	formatter, err := cfg.Formatter()
	if err != nil {
		return nil, err
	}
	opts := cfg.ParserOptions()
	opts.Registry = country.Default()
	return &toolkit{cfg: cfg, parser: phone.NewParser(opts), formatter: formatter}, nil
}

func (tk *toolkit) result(p *phone.Phone) phoneResult {
	return phoneResult{Components: p.Components(), Formatted: tk.formatter.Format(p, tk.cfg.Format.Default)}
}

func (tk *toolkit) verdict(raw string) verdict {
	v := verdict{Input: raw}
	p, err := tk.parser.Parse(raw)
	if err != nil {
		v.Kind = phone.KindOf(err).String()
		v.Message = err.Error()
		return v
	}
	v.Valid = true
	v.E164 = p.E164()
	return v
}

func runParse(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit(cmd)
	if err != nil {
		return err
	}

	results := make([]phoneResult, 0, len(args))
	for _, raw := range args {
		p, err := tk.parser.Parse(raw)
		if err != nil {
			return explainParseError(err)
		}
		results = append(results, tk.result(p))
	}

	out := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case "json":
		if len(results) == 1 {
			return writeJSON(out, results[0])
		}
		return writeJSON(out, results)
	case "csv":
		rows := make([][]string, len(results))
		for i, r := range results {
			rows[i] = r.row()
		}
		return writeCSV(out, phoneColumns, rows)
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printPhone(out, r)
	}
	return nil
}

func (r phoneResult) row() []string {
	return []string{
		r.Input, r.Country, r.ISO3, r.DialingCode, r.AreaCode,
		r.Number, r.Extension, r.E164, r.Formatted,
	}
}

func printPhone(w io.Writer, r phoneResult) {
	line := func(label, value string) {
		if value == "" {
			value = ui.StyleDim.Render("-")
		}
		fmt.Fprintf(w, "%s%s\n", ui.StyleLabel.Render(label), value)
	}
	line("Input", r.Input)
	line("Country", fmt.Sprintf("%s (%s)", r.Country, r.ISO3))
	line("Dialing code", "+"+r.DialingCode)
	line("Area code", r.AreaCode)
	line("Number", r.Number)
	line("Extension", r.Extension)
	line("E.164", r.E164)
	line("Formatted", r.Formatted)
}

func runFormat(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit(cmd)
	if err != nil {
		return err
	}
	p, err := tk.parser.Parse(args[0])
	if err != nil {
		return explainParseError(err)
	}

	format := tk.cfg.Format.Default
	if len(args) == 2 {
		format = args[1]
	}
	formatted := tk.formatter.Format(p, format)

	if outputFormat(cmd) == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]string{
			"input":     args[0],
			"format":    format,
			"formatted": formatted,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatted)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit(cmd)
	if err != nil {
		return err
	}

	verdicts := make([]verdict, 0, len(args))
	invalid := 0
	for _, raw := range args {
		v := tk.verdict(raw)
		if !v.Valid {
			invalid++
		}
		verdicts = append(verdicts, v)
	}

	out := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case "json":
		if err := writeJSON(out, verdicts); err != nil {
			return err
		}
	case "csv":
		rows := make([][]string, len(verdicts))
		for i, v := range verdicts {
			rows[i] = []string{v.Input, fmt.Sprint(v.Valid), v.E164, v.Kind}
		}
		if err := writeCSV(out, []string{"input", "valid", "e164", "kind"}, rows); err != nil {
			return err
		}
	default:
		for _, v := range verdicts {
			if v.Valid {
				fmt.Fprintf(out, "%s %s  %s\n", ui.StyleSuccess.Render(ui.SymbolCheck), v.Input, ui.StyleDim.Render(v.E164))
			} else {
				fmt.Fprintf(out, "%s %s  %s\n", ui.StyleError.Render(ui.SymbolCross), v.Input, ui.StyleDim.Render(v.Kind))
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d numbers are invalid", invalid, len(args))
	}
	return nil
}

// explainParseError attaches follow-up commands for the failure kind.
func explainParseError(err error) error {
	var pe *phone.ParseError
	if !errors.As(err, &pe) {
		return err
	}
	quoted := fmt.Sprintf("%q", pe.Input)
	switch pe.Kind {
	case phone.KindMissingCountryContext:
		return ui.WithSuggestions(err,
			"phonekit parse --country 385 "+quoted,
			"phonekit config set parse.default_country_code 385",
		)
	case phone.KindUnknownCountry:
		return ui.WithSuggestions(err, "phonekit countries   # list known dialing codes")
	case phone.KindAreaCodeMismatch:
		return ui.WithSuggestions(err,
			"phonekit parse --area <code> "+quoted+"   # supply the local area code",
			"phonekit countries show <code>   # inspect the area code pattern",
		)
	case phone.KindNoNumberFound:
		if strings.TrimSpace(pe.Input) == "" {
			return ui.WithSuggestions(err, `phonekit parse "+385 91 512 5486"`)
		}
	}
	return err
}
