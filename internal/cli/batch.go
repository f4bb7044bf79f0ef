package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/phonekit/phonekit/internal/cli/ui"
	"github.com/phonekit/phonekit/internal/phone"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file|-]",
	Short: "Parse one phone number per line",
	Long: `Read phone numbers from a file (or stdin when the file is "-" or omitted),
one per line, and report the result for every line plus a summary.
Blank lines and lines starting with "#" are skipped.`,
	Example: `phonekit batch numbers.txt
cat numbers.txt | phonekit batch --country 385 --json
phonekit batch --strict numbers.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	addParseFlags(batchCmd)
	batchCmd.Flags().StringP("format", "f", "", "Template name or pattern for the formatted column")
	batchCmd.Flags().Bool("strict", false, "Exit non-zero when any line is invalid")
}

type batchLine struct {
	Line    int          `json:"line"`
	Input   string       `json:"input"`
	Valid   bool         `json:"valid"`
	Phone   *phoneResult `json:"phone,omitempty"`
	Kind    string       `json:"kind,omitempty"`
	Message string       `json:"message,omitempty"`
}

type batchReport struct {
	RunID   string      `json:"run_id"`
	Results []batchLine `json:"results"`
	Valid   int         `json:"valid"`
	Invalid int         `json:"invalid"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(tk.cfg.Logging.Level, tk.cfg.Logging.Format)

	in := cmd.InOrStdin()
	name := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return ui.WithSuggestions(fmt.Errorf("opening batch file: %w", err),
				"cat numbers.txt | phonekit batch   # read from stdin")
		}
		defer f.Close()
		in = f
		name = args[0]
	}

	var sp *ui.StepSpinner
	var progress func(string)
	if ui.ColorEnabled() {
		sp = ui.NewStepSpinner(os.Stderr, false)
		sp.Start("Parsing " + name)
		progress = sp.Update
	}

	report, err := tk.batch(in, logger, progress)
	if err != nil {
		if sp != nil {
			sp.Fail()
		}
		return err
	}
	if sp != nil {
		sp.Done(fmt.Sprintf("%d valid, %d invalid", report.Valid, report.Invalid))
	}

	logger.Info("batch complete",
		"run_id", report.RunID,
		"source", name,
		"valid", report.Valid,
		"invalid", report.Invalid,
	)

	if err := writeBatchReport(cmd, report); err != nil {
		return err
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict && report.Invalid > 0 {
		return fmt.Errorf("batch %s: %d of %d lines are invalid", report.RunID, report.Invalid, len(report.Results))
	}
	return nil
}

// batch parses every non-blank, non-comment line of r. progress is called
// every 100 lines with a short status.
func (tk *toolkit) batch(r io.Reader, logger *slog.Logger, progress func(string)) (*batchReport, error) {
	report := &batchReport{RunID: uuid.NewString(), Results: []batchLine{}}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		res := batchLine{Line: lineNo, Input: raw}
		p, err := tk.parser.Parse(raw)
		if err != nil {
			res.Kind = phone.KindOf(err).String()
			res.Message = err.Error()
			report.Invalid++
			logger.Debug("batch line rejected", "run_id", report.RunID, "line", lineNo, "kind", res.Kind)
		} else {
			pr := tk.result(p)
			res.Valid = true
			res.Phone = &pr
			report.Valid++
		}
		report.Results = append(report.Results, res)

		if progress != nil && len(report.Results)%100 == 0 {
			progress(fmt.Sprintf("%d lines", len(report.Results)))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading batch input at line %d: %w", lineNo+1, err)
	}
	return report, nil
}

func writeBatchReport(cmd *cobra.Command, report *batchReport) error {
	out := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case "json":
		return writeJSON(out, report)
	case "csv":
		rows := make([][]string, len(report.Results))
		for i, r := range report.Results {
			e164, formatted := "", ""
			if r.Phone != nil {
				e164, formatted = r.Phone.E164, r.Phone.Formatted
			}
			rows[i] = []string{fmt.Sprint(r.Line), r.Input, fmt.Sprint(r.Valid), e164, formatted, r.Kind}
		}
		return writeCSV(out, []string{"line", "input", "valid", "e164", "formatted", "kind"}, rows)
	}

	for _, r := range report.Results {
		if r.Valid {
			fmt.Fprintf(out, "%4d %s %s %s %s\n", r.Line, ui.StyleSuccess.Render(ui.SymbolCheck),
				r.Input, ui.StyleDim.Render(ui.SymbolArrow), r.Phone.Formatted)
		} else {
			fmt.Fprintf(out, "%4d %s %s %s\n", r.Line, ui.StyleError.Render(ui.SymbolCross),
				r.Input, ui.StyleDim.Render(r.Kind))
		}
	}
	fmt.Fprintf(out, "\n%d valid, %d invalid (run %s)\n", report.Valid, report.Invalid, report.RunID)
	return nil
}
