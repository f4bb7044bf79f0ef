// Package phone parses free-form phone-number strings against the country
// registry and renders parsed numbers through format templates.
//
// The package-level Parse and IsValid read the process-wide defaults set by
// SetDefaultCountryCode and SetDefaultAreaCode. Code that needs different
// defaults per call (servers, tests) should build a Parser with explicit
// Options instead.
package phone

import (
	"github.com/phonekit/phonekit/internal/country"
)

// Phone is a successfully parsed number. Values are only produced by the
// parser and are never modified afterwards.
type Phone struct {
	// Raw is the input string exactly as given to Parse.
	Raw       string
	Country   *country.Country
	AreaCode  string
	Number    string
	Extension string
}

// DialingCode returns the country's dialing code without a '+'.
func (p *Phone) DialingCode() string {
	return p.Country.DialingCode
}

// NationalNumber returns the area code followed by the subscriber number.
func (p *Phone) NationalNumber() string {
	return p.AreaCode + p.Number
}

// E164 returns "+<dialing code><national number>".
func (p *Phone) E164() string {
	return "+" + p.Country.DialingCode + p.NationalNumber()
}

// String renders the phone with the "default" template.
func (p *Phone) String() string {
	return p.Format(FormatDefault)
}

// Format renders the phone with a built-in template name or, when the
// argument is not a template name, treats it as a token pattern. A doubled
// plus in the output collapses to one.
func (p *Phone) Format(nameOrPattern string) string {
	return builtinFormatter.Format(p, nameOrPattern)
}

// Components is the flat, serializable view of a Phone used by the CLI,
// the HTTP API and the MCP tools.
type Components struct {
	Input       string `json:"input"`
	Country     string `json:"country"`
	ISO3        string `json:"iso3_code"`
	DialingCode string `json:"dialing_code"`
	AreaCode    string `json:"area_code"`
	Number      string `json:"subscriber_number"`
	Extension   string `json:"extension,omitempty"`
	E164        string `json:"e164"`
}

// Components returns the flat view of p.
func (p *Phone) Components() Components {
	return Components{
		Input:       p.Raw,
		Country:     p.Country.Name,
		ISO3:        p.Country.ISO3,
		DialingCode: p.Country.DialingCode,
		AreaCode:    p.AreaCode,
		Number:      p.Number,
		Extension:   p.Extension,
		E164:        p.E164(),
	}
}
