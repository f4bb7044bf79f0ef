package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// StepSpinner shows progress for a long-running step such as a batch run.
// In TTY mode it animates a braille spinner whose suffix can be updated;
// in non-TTY mode it prints the step name once so piped output stays clean.
type StepSpinner struct {
	w      io.Writer
	s      *spinner.Spinner
	msg    string
	active bool
	noSpin bool
}

// NewStepSpinner creates a spinner that writes to w.
// Set noSpin=true for non-interactive environments.
func NewStepSpinner(w io.Writer, noSpin bool) *StepSpinner {
	return &StepSpinner{w: w, noSpin: noSpin}
}

// Start begins a named step.
func (ss *StepSpinner) Start(msg string) {
	ss.msg = msg
	if ss.noSpin {
		fmt.Fprintf(ss.w, "  %s", msg)
		return
	}
	ss.s = spinner.New(
		spinner.CharSets[14], // ⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏
		80*time.Millisecond,
		spinner.WithWriter(ss.w),
	)
	ss.s.Prefix = "  "
	ss.s.Suffix = " " + msg
	ss.s.FinalMSG = ""
	ss.s.Start()
	ss.active = true
}

// Update replaces the progress text shown next to the step name.
// It is a no-op in noSpin mode.
func (ss *StepSpinner) Update(progress string) {
	if ss.noSpin || ss.s == nil || !ss.active {
		return
	}
	ss.s.Lock()
	ss.s.Suffix = " " + ss.msg + " " + StyleDim.Render(progress)
	ss.s.Unlock()
}

// Done completes the current step with a green checkmark and an optional
// summary.
func (ss *StepSpinner) Done(summary ...string) {
	ss.finish(StyleSuccess.Render(SymbolCheck), summary)
}

// Fail completes the current step with a red cross and an optional summary.
func (ss *StepSpinner) Fail(summary ...string) {
	ss.finish(StyleError.Render(SymbolCross), summary)
}

func (ss *StepSpinner) finish(symbol string, summary []string) {
	tail := ""
	if len(summary) > 0 && summary[0] != "" {
		tail = " " + StyleDim.Render(summary[0])
	}
	if ss.noSpin {
		fmt.Fprintf(ss.w, " %s%s\n", symbol, tail)
		return
	}
	ss.Stop()
	fmt.Fprintf(ss.w, "\r  %s %s%s\n", ss.msg, symbol, tail)
}

// Stop halts the spinner without printing a status (for cleanup on signals).
func (ss *StepSpinner) Stop() {
	if ss.s != nil && ss.active {
		ss.s.Stop()
		ss.active = false
	}
}
