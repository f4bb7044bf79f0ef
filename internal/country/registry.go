package country

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed countries.toml
var embeddedData []byte

// Registry indexes countries by dialing code and ISO code. It is read-only
// after construction and safe for concurrent use.
type Registry struct {
	countries []*Country
	byCode    map[string]*Country
	byISO     map[string]*Country
	maxCode   int
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the registry built from the embedded country table. The
// table is parsed on first use only. A malformed embedded table is a build
// defect, so Default panics rather than returning an error.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := New(embeddedData)
		if err != nil {
			panic(fmt.Sprintf("country: embedded registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// New builds a registry from a TOML data block of [[country]] tables.
// Construction is all-or-nothing: any invalid record fails the whole build.
func New(data []byte) (*Registry, error) {
	var doc struct {
		Countries []record `toml:"country"`
	}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding country data: %w", err)
	}
	if len(doc.Countries) == 0 {
		return nil, fmt.Errorf("country data has no [[country]] records")
	}

	r := &Registry{
		countries: make([]*Country, 0, len(doc.Countries)),
		byCode:    make(map[string]*Country, len(doc.Countries)),
		byISO:     make(map[string]*Country, 2*len(doc.Countries)),
	}
	for i, rec := range doc.Countries {
		c, err := newCountry(rec)
		if err != nil {
			return nil, fmt.Errorf("country record %d (%s): %w", i, rec.Name, err)
		}
		if _, dup := r.byISO[c.ISO3]; dup {
			return nil, fmt.Errorf("country record %d (%s): duplicate iso3_code %q", i, rec.Name, c.ISO3)
		}
		r.byISO[c.ISO3] = c
		if c.ISO2 != "" {
			if _, dup := r.byISO[c.ISO2]; dup {
				return nil, fmt.Errorf("country record %d (%s): duplicate iso2_code %q", i, rec.Name, c.ISO2)
			}
			r.byISO[c.ISO2] = c
		}
		// First record wins for shared dialing codes.
		if _, ok := r.byCode[c.DialingCode]; !ok {
			r.byCode[c.DialingCode] = c
		}
		if len(c.DialingCode) > r.maxCode {
			r.maxCode = len(c.DialingCode)
		}
		r.countries = append(r.countries, c)
	}
	return r, nil
}

// FindByDialingCode returns the country whose dialing code is the longest
// prefix of digits. Longer codes always win over shorter ones they extend.
func (r *Registry) FindByDialingCode(digits string) (*Country, bool) {
	n := min(r.maxCode, len(digits))
	for ; n > 0; n-- {
		if c, ok := r.byCode[digits[:n]]; ok {
			return c, true
		}
	}
	return nil, false
}

// FindByCode returns the primary country for an exact dialing code.
func (r *Registry) FindByCode(code string) (*Country, bool) {
	c, ok := r.byCode[strings.TrimPrefix(strings.TrimSpace(code), "+")]
	return c, ok
}

// FindByISOCode matches an ISO 3166 alpha-3 or alpha-2 code, ignoring case.
func (r *Registry) FindByISOCode(code string) (*Country, bool) {
	c, ok := r.byISO[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Lookup resolves either a dialing code ("385", "+385") or an ISO code.
func (r *Registry) Lookup(key string) (*Country, bool) {
	key = strings.TrimSpace(key)
	if isDigits(strings.TrimPrefix(key, "+")) {
		return r.FindByCode(key)
	}
	return r.FindByISOCode(key)
}

// All returns every country in data-block order.
func (r *Registry) All() []*Country {
	out := make([]*Country, len(r.countries))
	copy(out, r.countries)
	return out
}

// Len returns the number of countries in the registry.
func (r *Registry) Len() int {
	return len(r.countries)
}
