package country

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// FindingKind classifies a registry audit finding.
type FindingKind string

const (
	// FindingUnknownRegion means libphonenumber has no metadata for the ISO2 code.
	FindingUnknownRegion FindingKind = "unknown_region"
	// FindingDialingCode means libphonenumber assigns the region a calling
	// code that is not a prefix of the registry's dialing code.
	FindingDialingCode FindingKind = "dialing_code_mismatch"
	// FindingExampleCountry means libphonenumber's example number resolves to
	// a different registry entry.
	FindingExampleCountry FindingKind = "example_other_country"
	// FindingExampleRejected means the area-code pattern rejects
	// libphonenumber's example number.
	FindingExampleRejected FindingKind = "example_rejected"
	// FindingExampleTooLong means the example number exceeds max_national_length.
	FindingExampleTooLong FindingKind = "example_too_long"
)

// Finding is a single inconsistency between the registry and libphonenumber.
type Finding struct {
	Country *Country
	Kind    FindingKind
	Detail  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s: %s", f.Country.ISO3, f.Kind, f.Detail)
}

// Audit cross-checks every country that carries an ISO2 code against the
// libphonenumber metadata: the region's calling code must prefix the
// registry dialing code, and the region's example fixed-line number must
// resolve back to the same entry and satisfy its area-code pattern and
// length bound. Countries without an ISO2 code are skipped.
func Audit(r *Registry) []Finding {
	var findings []Finding
	for _, c := range r.countries {
		if c.ISO2 == "" {
			continue
		}
		findings = append(findings, auditCountry(r, c)...)
	}
	return findings
}

func auditCountry(r *Registry, c *Country) []Finding {
	cc := phonenumbers.GetCountryCodeForRegion(c.ISO2)
	if cc == 0 {
		return []Finding{{Country: c, Kind: FindingUnknownRegion,
			Detail: fmt.Sprintf("libphonenumber has no region %q", c.ISO2)}}
	}
	code := strconv.Itoa(cc)
	if !strings.HasPrefix(c.DialingCode, code) {
		return []Finding{{Country: c, Kind: FindingDialingCode,
			Detail: fmt.Sprintf("region %s uses +%s, registry has +%s", c.ISO2, code, c.DialingCode)}}
	}

	example := phonenumbers.GetExampleNumber(c.ISO2)
	if example == nil {
		return nil
	}
	digits := strings.TrimPrefix(phonenumbers.Format(example, phonenumbers.E164), "+")

	resolved, ok := r.FindByDialingCode(digits)
	if !ok || resolved.DialingCode != c.DialingCode {
		name := "nothing"
		if ok {
			name = resolved.String()
		}
		return []Finding{{Country: c, Kind: FindingExampleCountry,
			Detail: fmt.Sprintf("example +%s resolves to %s", digits, name)}}
	}

	national := digits[len(c.DialingCode):]
	area, subscriber, ok := c.SplitNational(national)
	if !ok || subscriber == "" {
		return []Finding{{Country: c, Kind: FindingExampleRejected,
			Detail: fmt.Sprintf("area_code_pattern %s rejects example national number %s", c.AreaCodePattern, national)}}
	}
	if n := len(area) + len(subscriber); n > c.MaxNationalLength {
		return []Finding{{Country: c, Kind: FindingExampleTooLong,
			Detail: fmt.Sprintf("example national number has %d digits, max_national_length is %d", n, c.MaxNationalLength)}}
	}
	return nil
}

// Regions returns the libphonenumber region codes that share the country's
// calling code, e.g. ["US", "AG", "AI", ...] for +1.
func Regions(c *Country) []string {
	for n := len(c.DialingCode); n > 0; n-- {
		cc, err := strconv.Atoi(c.DialingCode[:n])
		if err != nil {
			return nil
		}
		if regions := phonenumbers.GetRegionCodesForCountryCode(cc); len(regions) > 0 {
			return regions
		}
	}
	return nil
}
