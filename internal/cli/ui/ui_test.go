package ui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/phonekit/phonekit/internal/testutil"
)

func TestFormatError(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		out := FormatError("no phone number found")
		testutil.Contains(t, out, "Error:")
		testutil.Contains(t, out, "no phone number found")
		testutil.False(t, strings.Contains(out, "Try:"))
	})

	t.Run("suggestions listed in order", func(t *testing.T) {
		out := FormatError("missing country context",
			`phonekit parse --country 385 "091 512 5486"`,
			"phonekit config set parse.default_country_code 385",
		)
		testutil.Contains(t, out, "Try:")
		first := strings.Index(out, "--country 385")
		second := strings.Index(out, "config set")
		testutil.True(t, first > 0 && second > first, "suggestions out of order: %q", out)
		testutil.Equal(t, 2, strings.Count(out, SymbolArrow))
	})
}

func TestWithSuggestions(t *testing.T) {
	base := errors.New("unknown country")
	err := fmt.Errorf("parse: %w", WithSuggestions(base, "phonekit countries"))

	var se *SuggestedError
	testutil.True(t, errors.As(err, &se))
	testutil.SliceLen(t, se.Suggestions, 1)
	testutil.ErrorIs(t, err, base)
	testutil.Equal(t, "unknown country", se.Error())
	testutil.Nil(t, WithSuggestions(nil, "unused"))
}

func TestStepSpinnerPlain(t *testing.T) {
	tests := []struct {
		name   string
		run    func(*StepSpinner)
		want   []string
		absent []string
	}{
		{
			name: "done with summary",
			run: func(sp *StepSpinner) {
				sp.Start("Parsing numbers.txt")
				sp.Update("100 lines")
				sp.Done("240 valid, 3 invalid")
			},
			want:   []string{"Parsing numbers.txt", SymbolCheck, "240 valid, 3 invalid"},
			absent: []string{"100 lines"},
		},
		{
			name: "fail",
			run: func(sp *StepSpinner) {
				sp.Start("Parsing numbers.txt")
				sp.Fail()
			},
			want:   []string{"Parsing numbers.txt", SymbolCross},
			absent: []string{SymbolCheck},
		},
		{
			name: "two steps",
			run: func(sp *StepSpinner) {
				sp.Start("Loading countries")
				sp.Done()
				sp.Start("Parsing")
				sp.Done()
			},
			want: []string{"Loading countries", "Parsing"},
		},
		{
			name: "finish without start",
			run: func(sp *StepSpinner) {
				sp.Stop()
				sp.Done()
			},
			want: []string{SymbolCheck},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.run(NewStepSpinner(&buf, true))
			out := buf.String()
			for _, s := range tt.want {
				testutil.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				testutil.False(t, strings.Contains(out, s), "unexpected %q in %q", s, out)
			}
		})
	}
}

func TestStepSpinnerUpdateBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	sp := NewStepSpinner(&buf, false)
	sp.Update("1 lines")
	sp.Stop()
	testutil.Equal(t, "", buf.String())
}

func TestColorEnabledHonorsNoColor(t *testing.T) {
	for _, v := range []string{"1", ""} {
		t.Setenv("NO_COLOR", v)
		testutil.False(t, ColorEnabled(), "NO_COLOR=%q", v)
	}
}

func TestForcedRenderer(t *testing.T) {
	r := ForcedRenderer()
	testutil.True(t, r == ForcedRenderer(), "renderer is not shared")
	out := r.NewStyle().Foreground(ColorGreen).Render(SymbolCheck)
	testutil.Contains(t, out, SymbolCheck)
	testutil.Contains(t, out, "\x1b[")
}

func TestStylesKeepText(t *testing.T) {
	for _, render := range []func(...string) string{
		StyleDim.Render, StyleBoldCyan.Render, StyleBoldRed.Render,
		StyleSuccess.Render, StyleWarning.Render, StyleError.Render,
		StyleHeader.Render, StyleHint.Render, StyleCode.Render,
	} {
		testutil.Contains(t, render("+1 212 555 1234"), "+1 212 555 1234")
	}
}

func TestStyleLabelPadsToColumn(t *testing.T) {
	for _, label := range []string{"Dialing code", "Area pattern", "ISO"} {
		out := StyleLabel.Render(label)
		testutil.Contains(t, out, label)
		testutil.False(t, strings.Contains(out, "\n"), "label %q wrapped: %q", label, out)
		testutil.Equal(t, 14, lipgloss.Width(out))
	}
}
