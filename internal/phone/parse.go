package phone

import (
	"regexp"
	"strings"

	"github.com/phonekit/phonekit/internal/country"
)

// Options configures a Parser. Zero values mean: the embedded registry, no
// default dialing code, no default area code.
type Options struct {
	Registry *country.Registry
	// DefaultCountryCode is the dialing code assumed for numbers written
	// without a '+' or "00" prefix. A leading '+' is ignored.
	DefaultCountryCode string
	// DefaultAreaCode completes national numbers that are too short to
	// carry an area code of their own.
	DefaultAreaCode string
}

// Parser turns free-form strings into Phones. A Parser is immutable and
// safe for concurrent use.
type Parser struct {
	registry    *country.Registry
	countryCode string
	areaCode    string
}

// NewParser returns a parser for opts.
func NewParser(opts Options) *Parser {
	reg := opts.Registry
	if reg == nil {
		reg = country.Default()
	}
	return &Parser{
		registry:    reg,
		countryCode: normalizeCode(opts.DefaultCountryCode),
		areaCode:    strings.TrimSpace(opts.DefaultAreaCode),
	}
}

// Parse parses raw with the embedded registry and the process-wide defaults.
func Parse(raw string) (*Phone, error) {
	return NewParser(snapshotDefaults()).Parse(raw)
}

// IsValid reports whether Parse(raw) succeeds.
func IsValid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// IsValid reports whether p.Parse(raw) succeeds.
func (p *Parser) IsValid(raw string) bool {
	_, err := p.Parse(raw)
	return err == nil
}

// Parse extracts a phone number from raw. Every failure is a *ParseError.
//
// The steps run in order and never backtrack: the extension is cut off,
// the longest number-like run is picked, the dialing code is resolved from
// a '+' prefix or the default, the national digits are split by the
// country's area-code pattern, and the length is checked.
func (p *Parser) Parse(raw string) (*Phone, error) {
	rest, ext := extractExtension(raw)

	cand, ok := longestCandidate(rest)
	if !ok {
		return nil, newParseError(KindNoNumberFound, raw, "")
	}

	digits, international := normalizeCandidate(cand)

	c, national, err := p.resolveCountry(raw, digits, international)
	if err != nil {
		return nil, err
	}

	area, subscriber, ok := p.splitNational(c, national, international)
	if !ok {
		return nil, newParseError(KindAreaCodeMismatch, raw, "%s does not match the area codes of %s", national, c)
	}
	if n := len(area) + len(subscriber); n > c.MaxNationalLength {
		return nil, newParseError(KindNumberTooLong, raw, "%d national digits, %s allows at most %d", n, c, c.MaxNationalLength)
	}

	return &Phone{
		Raw:       raw,
		Country:   c,
		AreaCode:  area,
		Number:    subscriber,
		Extension: ext,
	}, nil
}

func (p *Parser) resolveCountry(raw, digits string, international bool) (*country.Country, string, error) {
	if international {
		c, ok := p.registry.FindByDialingCode(digits)
		if !ok {
			return nil, "", newParseError(KindUnknownCountry, raw, "no dialing code matches +%s", digits)
		}
		return c, digits[len(c.DialingCode):], nil
	}
	if p.countryCode == "" {
		return nil, "", newParseError(KindMissingCountryContext, raw, "no '+' prefix and no default country code")
	}
	c, ok := p.registry.FindByCode(p.countryCode)
	if !ok {
		return nil, "", newParseError(KindUnknownCountry, raw, "default country code %s is not registered", p.countryCode)
	}
	return c, digits, nil
}

// splitNational tries the digits as written, then without a single trunk
// '0', then (for national input only) behind the default area code.
func (p *Parser) splitNational(c *country.Country, national string, international bool) (string, string, bool) {
	if area, sub, ok := split(c, national); ok {
		return area, sub, true
	}
	if strings.HasPrefix(national, "0") && !strings.HasPrefix(national, "00") {
		if area, sub, ok := split(c, national[1:]); ok {
			return area, sub, true
		}
	}
	if international || p.areaCode == "" || len(national)+len(p.areaCode) > c.MaxNationalLength {
		return "", "", false
	}
	area, sub, ok := split(c, p.areaCode+national)
	if !ok || area != p.areaCode {
		return "", "", false
	}
	return area, sub, true
}

func split(c *country.Country, national string) (string, string, bool) {
	area, sub, ok := c.SplitNational(national)
	if !ok || sub == "" {
		return "", "", false
	}
	return area, sub, true
}

// extensionRE finds an extension marker followed by its digits. Alphabetic
// markers preceded by a letter are rejected in extractExtension, since RE2
// has no look-behind.
var extensionRE = regexp.MustCompile(`(?i)(extension|ext|ex|xt|x|#)[.:]?\s*(\d+)#?`)

// extractExtension returns s without its extension and the extension
// digits. When several markers qualify the last one wins.
func extractExtension(s string) (string, string) {
	var last []int
	for _, m := range extensionRE.FindAllStringSubmatchIndex(s, -1) {
		if s[m[2]] != '#' && m[2] > 0 && isLetter(s[m[2]-1]) {
			continue
		}
		last = m
	}
	if last == nil {
		return s, ""
	}
	start := last[0]
	for start > 0 && isSpace(s[start-1]) {
		start--
	}
	return s[:start] + s[last[1]:], s[last[4]:last[5]]
}

// longestCandidate returns the longest run of digits, separators and '+'
// that contains at least one digit. A '+' always starts a new run. Ties go
// to the leftmost run.
func longestCandidate(s string) (string, bool) {
	var best string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := trimRun(s[start:end])
		if strings.IndexFunc(run, isDigitRune) >= 0 && len(run) > len(best) {
			best = run
		}
		start = -1
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '+':
			flush(i)
			start = i
		case isDigit(ch) || isSeparator(ch):
			if start < 0 {
				start = i
			}
		default:
			flush(i)
		}
	}
	flush(len(s))
	return best, best != ""
}

// trimRun strips separators from both ends, keeping a leading '+'.
func trimRun(run string) string {
	plus := strings.HasPrefix(run, "+")
	if plus {
		run = run[1:]
	}
	run = strings.TrimFunc(run, func(r rune) bool { return r < 0x80 && isSeparator(byte(r)) })
	if plus {
		return "+" + run
	}
	return run
}

// normalizeCandidate reduces a candidate to bare digits and reports whether
// it carried an international prefix ('+' or "00").
func normalizeCandidate(cand string) (string, bool) {
	international := strings.HasPrefix(cand, "+")
	if international {
		cand = strings.ReplaceAll(cand, "(0)", "")
	}
	var b strings.Builder
	b.Grow(len(cand))
	for i := 0; i < len(cand); i++ {
		if isDigit(cand[i]) {
			b.WriteByte(cand[i])
		}
	}
	digits := b.String()
	if !international && strings.HasPrefix(digits, "00") {
		return digits[2:], true
	}
	return digits, international
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isDigitRune(r rune) bool { return r >= '0' && r <= '9' }

func isSpace(ch byte) bool { return ch == ' ' || ch == '\t' }

func isLetter(ch byte) bool { return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' }

func isSeparator(ch byte) bool {
	switch ch {
	case ' ', '\t', '-', '.', '(', ')', '/':
		return true
	}
	return false
}
