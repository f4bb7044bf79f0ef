package phone

import (
	"strings"
	"sync"
)

// The process-wide defaults read by the package-level Parse and IsValid.
// Setting them affects every later call in the process.
var defaults struct {
	sync.RWMutex
	countryCode string
	areaCode    string
}

// SetDefaultCountryCode sets the dialing code used for numbers without a
// '+' prefix and returns the previous value. A leading '+' is ignored; an
// empty code unsets the default. The code is not checked against the
// registry: an unknown code makes later parses fail with ErrUnknownCountry.
func SetDefaultCountryCode(code string) string {
	code = normalizeCode(code)
	defaults.Lock()
	defer defaults.Unlock()
	prev := defaults.countryCode
	defaults.countryCode = code
	return prev
}

// DefaultCountryCode returns the default dialing code and whether one is set.
func DefaultCountryCode() (string, bool) {
	defaults.RLock()
	defer defaults.RUnlock()
	return defaults.countryCode, defaults.countryCode != ""
}

// SetDefaultAreaCode sets the area code assumed for national numbers too
// short to carry their own, and returns the previous value. An empty code
// unsets it.
func SetDefaultAreaCode(code string) string {
	code = strings.TrimSpace(code)
	defaults.Lock()
	defer defaults.Unlock()
	prev := defaults.areaCode
	defaults.areaCode = code
	return prev
}

// DefaultAreaCode returns the default area code and whether one is set.
func DefaultAreaCode() (string, bool) {
	defaults.RLock()
	defer defaults.RUnlock()
	return defaults.areaCode, defaults.areaCode != ""
}

// ResetDefaults unsets both defaults.
func ResetDefaults() {
	defaults.Lock()
	defaults.countryCode = ""
	defaults.areaCode = ""
	defaults.Unlock()
}

// snapshotDefaults reads both defaults under one lock so a parse never sees
// a country code and an area code from different writes.
func snapshotDefaults() Options {
	defaults.RLock()
	defer defaults.RUnlock()
	return Options{DefaultCountryCode: defaults.countryCode, DefaultAreaCode: defaults.areaCode}
}

func normalizeCode(code string) string {
	return strings.TrimPrefix(strings.TrimSpace(code), "+")
}
