package phone

import (
	"errors"
	"testing"

	"github.com/phonekit/phonekit/internal/country"
	"github.com/phonekit/phonekit/internal/testutil"
)

func TestParseInternational(t *testing.T) {
	p := NewParser(Options{})
	tests := []struct {
		name      string
		input     string
		code      string
		area      string
		number    string
		extension string
	}{
		{"compact", "+385915125486", "385", "91", "5125486", ""},
		{"spaced", "+385 91 512 5486", "385", "91", "5125486", ""},
		{"trunk marker", "+385 (0) 91 512 5486", "385", "91", "5125486", ""},
		{"double zero prefix", "00385 91 512 5486", "385", "91", "5125486", ""},
		{"trunk zero after code", "+385 091 512 5486", "385", "91", "5125486", ""},
		{"surrounding text", "blabla +1 (212) 555-1234 ext 123", "1", "212", "5551234", "123"},
		{"london", "+44 20 7946 0958", "44", "20", "79460958", ""},
		{"london with extension", "+44 20 7946 0958 Ext. 204", "44", "20", "79460958", "204"},
		{"hash extension", "+1 212 555 1234 #77#", "1", "212", "5551234", "77"},
		{"x extension", "+1-212-555-1234x9", "1", "212", "5551234", "9"},
		{"hash marker before the number", "Ticket #4521: call +1 212 555 1234", "1", "212", "5551234", "4521"},
		{"jamaica beats nanp", "+1 876 555 1234", "1876", "", "5551234", ""},
		{"berlin", "+49 30 12345678", "49", "30", "12345678", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ph, err := p.Parse(tt.input)
			testutil.NoError(t, err)
			testutil.Equal(t, tt.code, ph.DialingCode())
			testutil.Equal(t, tt.area, ph.AreaCode)
			testutil.Equal(t, tt.number, ph.Number)
			testutil.Equal(t, tt.extension, ph.Extension)
			testutil.Equal(t, tt.input, ph.Raw)
		})
	}
}

func TestParseNationalWithDefaultCountry(t *testing.T) {
	p := NewParser(Options{DefaultCountryCode: "1"})

	ph, err := p.Parse("2125551234")
	testutil.NoError(t, err)
	testutil.Equal(t, "+12125551234", ph.Format(FormatDefault))
	testutil.Equal(t, "United States", ph.Country.Name)

	hr := NewParser(Options{DefaultCountryCode: "+385"})
	ph, err = hr.Parse("blabla 091/512-5486 blabla")
	testutil.NoError(t, err)
	testutil.Equal(t, "91", ph.AreaCode)
	testutil.Equal(t, "5125486", ph.Number)
}

func TestParseDefaultAreaCode(t *testing.T) {
	p := NewParser(Options{DefaultCountryCode: "385", DefaultAreaCode: "47"})

	ph, err := p.Parse("451588")
	testutil.NoError(t, err)
	testutil.Equal(t, "47", ph.AreaCode)
	testutil.Equal(t, "451588", ph.Number)

	// A complete national number keeps its own area code.
	ph, err = p.Parse("091 512 5486")
	testutil.NoError(t, err)
	testutil.Equal(t, "91", ph.AreaCode)

	us := NewParser(Options{DefaultCountryCode: "1", DefaultAreaCode: "212"})
	ph, err = us.Parse("555-1234")
	testutil.NoError(t, err)
	testutil.Equal(t, "+12125551234", ph.String())
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		input string
		kind  Kind
		err   error
	}{
		{"empty", Options{}, "", KindNoNumberFound, ErrNoNumberFound},
		{"blank", Options{}, "   ", KindNoNumberFound, ErrNoNumberFound},
		{"words", Options{}, "invalid number", KindNoNumberFound, ErrNoNumberFound},
		{"unknown dialing code", Options{}, "+999 123 4567", KindUnknownCountry, ErrUnknownCountry},
		{"unregistered default", Options{DefaultCountryCode: "999"}, "2125551234", KindUnknownCountry, ErrUnknownCountry},
		{"no country context", Options{}, "2125551234", KindMissingCountryContext, ErrMissingCountryContext},
		{"bad us area code", Options{}, "+1 112 555 1234", KindAreaCodeMismatch, ErrAreaCodeMismatch},
		{"local without default area", Options{DefaultCountryCode: "385"}, "5125486", KindAreaCodeMismatch, ErrAreaCodeMismatch},
		{"too long", Options{}, "+385 91 512 5486 999", KindNumberTooLong, ErrNumberTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ph, err := NewParser(tt.opts).Parse(tt.input)
			testutil.Nil(t, ph)
			testutil.ErrorIs(t, err, tt.err)
			testutil.Equal(t, tt.kind, KindOf(err))

			var pe *ParseError
			testutil.True(t, errors.As(err, &pe))
			testutil.Equal(t, tt.input, pe.Input)
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := NewParser(Options{}).Parse("2125551234")
	testutil.ErrorContains(t, err, `parsing "2125551234": missing country context`)
	testutil.Equal(t, "missing_country_context", KindOf(err).String())

	testutil.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	testutil.Equal(t, "unknown", KindUnknown.String())
}

func TestParseLongestPrefix(t *testing.T) {
	reg, err := country.New([]byte(`
[[country]]
dialing_code = "1"
name = "Shortland"
iso3_code = "SHL"
area_code_pattern = '^(\d{3})'
max_national_length = 10

[[country]]
dialing_code = "12"
name = "Longland"
iso3_code = "LGL"
area_code_pattern = '^(\d{2})'
max_national_length = 9
`))
	testutil.NoError(t, err)

	ph, err := NewParser(Options{Registry: reg}).Parse("+12345678901")
	testutil.NoError(t, err)
	testutil.Equal(t, "12", ph.DialingCode())
	testutil.Equal(t, "Longland", ph.Country.Name)
	testutil.Equal(t, "34", ph.AreaCode)
	testutil.Equal(t, "5678901", ph.Number)
}

func TestParseCandidateSelection(t *testing.T) {
	p := NewParser(Options{DefaultCountryCode: "1"})

	// The longer run wins.
	ph, err := p.Parse("call 555 1234 or +1 212 555 1234")
	testutil.NoError(t, err)
	testutil.Equal(t, "212", ph.AreaCode)

	// Equal lengths go to the leftmost run.
	ph, err = p.Parse("2125551234 or 3125551234")
	testutil.NoError(t, err)
	testutil.Equal(t, "212", ph.AreaCode)

	// "box 12" is not an extension.
	ph, err = p.Parse("box 12, +1 212 555 1234")
	testutil.NoError(t, err)
	testutil.Equal(t, "", ph.Extension)
	testutil.Equal(t, "5551234", ph.Number)
}

func TestParseLengthInvariant(t *testing.T) {
	inputs := []string{
		"+385915125486",
		"+44 20 7946 0958",
		"+1 212 555 1234",
		"+49 30 12345678",
		"+33 1 23 45 67 89",
		"+31 6 12345678",
	}
	for _, in := range inputs {
		ph, err := Parse(in)
		testutil.NoError(t, err)
		testutil.True(t, len(ph.AreaCode)+len(ph.Number) <= ph.Country.MaxNationalLength,
			"%s: %d digits exceeds %d", in, len(ph.AreaCode)+len(ph.Number), ph.Country.MaxNationalLength)
	}
}

func TestDefaultFormatRoundTrip(t *testing.T) {
	inputs := []string{
		"+385 (0) 91 512-5486",
		"+1 (212) 555.1234",
		"0044 20 7946 0958",
		"+33 1 23 45 67 89",
		"+49 (0)30 1234 5678",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			ph, err := Parse(in)
			testutil.NoError(t, err)

			want := "+" + ph.DialingCode() + ph.AreaCode + ph.Number
			testutil.Equal(t, want, ph.Format(FormatDefault))

			for _, name := range []string{FormatDefault, FormatEurope, FormatInternational, FormatRFC3966} {
				again, err := Parse(ph.Format(name))
				testutil.NoError(t, err)
				testutil.Equal(t, ph.E164(), again.E164())
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	t.Cleanup(ResetDefaults)
	ResetDefaults()

	testutil.False(t, IsValid("invalid number"))
	testutil.False(t, IsValid(""))
	testutil.True(t, IsValid("+385915125486"))

	p := NewParser(Options{DefaultCountryCode: "44"})
	testutil.True(t, p.IsValid("020 7946 0958"))
	testutil.False(t, p.IsValid("+1 112 555 1234"))
}

func TestComponents(t *testing.T) {
	ph, err := Parse("+1 (212) 555-1234 ext 9")
	testutil.NoError(t, err)

	c := ph.Components()
	testutil.Equal(t, "+1 (212) 555-1234 ext 9", c.Input)
	testutil.Equal(t, "United States", c.Country)
	testutil.Equal(t, "USA", c.ISO3)
	testutil.Equal(t, "1", c.DialingCode)
	testutil.Equal(t, "212", c.AreaCode)
	testutil.Equal(t, "5551234", c.Number)
	testutil.Equal(t, "9", c.Extension)
	testutil.Equal(t, "+12125551234", c.E164)
	testutil.Equal(t, "2125551234", ph.NationalNumber())
}

func TestExtractExtension(t *testing.T) {
	tests := []struct {
		in, rest, ext string
	}{
		{"+1 212 555 1234 ext 123", "+1 212 555 1234", "123"},
		{"+1 212 555 1234 EXTENSION: 5", "+1 212 555 1234", "5"},
		{"+1 212 555 1234 xt 7", "+1 212 555 1234", "7"},
		{"+1 212 555 1234 ex.8", "+1 212 555 1234", "8"},
		{"fax 12", "fax 12", ""},
		{"+1 212 555 1234", "+1 212 555 1234", ""},
		{"ext 1 then x 2", "ext 1 then", "2"},
		// '#' needs no letter guard and may precede the number.
		{"Ticket #4521: call +1 212 555 1234", "Ticket: call +1 212 555 1234", "4521"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rest, ext := extractExtension(tt.in)
			testutil.Equal(t, tt.rest, rest)
			testutil.Equal(t, tt.ext, ext)
		})
	}
}
