// Package country holds the immutable country metadata table used to resolve
// dialing codes and area codes. The table is compiled into the binary and
// built once per process; every value it hands out is read-only.
package country

import (
	"fmt"
	"regexp"
	"strings"
)

// Country is a single registry entry.
type Country struct {
	DialingCode       string `json:"dialing_code"`
	Name              string `json:"name"`
	ISO3              string `json:"iso3_code"`
	ISO2              string `json:"iso2_code,omitempty"`
	AreaCodePattern   string `json:"area_code_pattern"`
	MaxNationalLength int    `json:"max_national_length"`

	areaCode *regexp.Regexp
}

// record is the on-disk shape of a country in the embedded data block.
type record struct {
	DialingCode       string `toml:"dialing_code"`
	Name              string `toml:"name"`
	ISO3              string `toml:"iso3_code"`
	ISO2              string `toml:"iso2_code"`
	AreaCodePattern   string `toml:"area_code_pattern"`
	MaxNationalLength int    `toml:"max_national_length"`
}

func newCountry(r record) (*Country, error) {
	if r.DialingCode == "" {
		return nil, fmt.Errorf("dialing_code is required")
	}
	if !isDigits(r.DialingCode) {
		return nil, fmt.Errorf("dialing_code must contain only digits, got %q", r.DialingCode)
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if len(r.ISO3) != 3 || !isLetters(r.ISO3) {
		return nil, fmt.Errorf("iso3_code must be 3 letters, got %q", r.ISO3)
	}
	if r.ISO2 != "" && (len(r.ISO2) != 2 || !isLetters(r.ISO2)) {
		return nil, fmt.Errorf("iso2_code must be 2 letters, got %q", r.ISO2)
	}
	if r.AreaCodePattern == "" {
		return nil, fmt.Errorf("area_code_pattern is required")
	}
	if r.MaxNationalLength < 1 {
		return nil, fmt.Errorf("max_national_length must be at least 1, got %d", r.MaxNationalLength)
	}

	re, err := regexp.Compile(r.AreaCodePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling area_code_pattern: %w", err)
	}

	return &Country{
		DialingCode:       r.DialingCode,
		Name:              r.Name,
		ISO3:              strings.ToUpper(r.ISO3),
		ISO2:              strings.ToUpper(r.ISO2),
		AreaCodePattern:   r.AreaCodePattern,
		MaxNationalLength: r.MaxNationalLength,
		areaCode:          re,
	}, nil
}

// SplitNational splits a national number into area code and subscriber
// number using the country's area-code pattern. The pattern must match at the
// start of national; its first capture group (or the whole match when it has
// none) is the area code. ok is false when the pattern does not match.
func (c *Country) SplitNational(national string) (area, subscriber string, ok bool) {
	loc := c.areaCode.FindStringSubmatchIndex(national)
	if loc == nil || loc[0] != 0 {
		return "", "", false
	}
	end := loc[1]
	if len(loc) >= 4 && loc[3] >= 0 {
		// Digits matched ahead of the group stay with the area code so that
		// area+subscriber always reproduces national.
		end = loc[3]
	}
	return national[:end], national[end:], true
}

func (c *Country) String() string {
	return fmt.Sprintf("%s (+%s)", c.Name, c.DialingCode)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
