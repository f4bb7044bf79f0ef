package phone

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Built-in template names.
const (
	FormatDefault              = "default"
	FormatDefaultWithExtension = "default_with_extension"
	FormatEurope               = "europe"
	FormatUS                   = "us"
	FormatInternational        = "international"
	FormatNational             = "national"
	FormatRFC3966              = "rfc3966"
)

// groupWidth is the number of subscriber digits rendered by %f.
const groupWidth = 3

// Template is a named token pattern.
type Template struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	BuiltIn bool   `json:"built_in"`
}

var builtinTemplates = []Template{
	{Name: FormatDefault, Pattern: "+%c%n", BuiltIn: true},
	{Name: FormatDefaultWithExtension, Pattern: "+%c%n x%x", BuiltIn: true},
	{Name: FormatEurope, Pattern: "+%c (0) %a %f %l", BuiltIn: true},
	{Name: FormatUS, Pattern: "(%a) %f-%l", BuiltIn: true},
	{Name: FormatInternational, Pattern: "+%c %a %f %l", BuiltIn: true},
	{Name: FormatNational, Pattern: "%A %f %l", BuiltIn: true},
	{Name: FormatRFC3966, Pattern: "tel:+%c-%a-%f-%l", BuiltIn: true},
}

var builtinFormatter = mustFormatter(nil)

// doublePlus matches a leading "+" repeated by a template that adds its own
// "+" in front of a value that already had one.
var doublePlus = regexp.MustCompile(`^\+\s*\+`)

// Formatter renders phones through a fixed table of named templates. The
// zero value is not usable; build one with NewFormatter.
type Formatter struct {
	templates map[string]Template
	order     []string
}

// NewFormatter returns a formatter holding the built-in templates plus
// extra, keyed by name. Extra names may not shadow a built-in and patterns
// may not be empty.
func NewFormatter(extra map[string]string) (*Formatter, error) {
	f := &Formatter{templates: make(map[string]Template, len(builtinTemplates)+len(extra))}
	for _, t := range builtinTemplates {
		f.templates[t.Name] = t
		f.order = append(f.order, t.Name)
	}

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pattern := extra[name]
		switch {
		case strings.TrimSpace(name) == "":
			return nil, fmt.Errorf("template name must not be empty")
		case strings.Contains(name, "%"):
			return nil, fmt.Errorf("template name %q must not contain '%%'", name)
		case pattern == "":
			return nil, fmt.Errorf("template %q has an empty pattern", name)
		}
		if _, exists := f.templates[name]; exists {
			return nil, fmt.Errorf("template %q is built in and cannot be redefined", name)
		}
		f.templates[name] = Template{Name: name, Pattern: pattern}
		f.order = append(f.order, name)
	}
	return f, nil
}

func mustFormatter(extra map[string]string) *Formatter {
	f, err := NewFormatter(extra)
	if err != nil {
		panic(err)
	}
	return f
}

// Names returns the template names, built-ins first in their fixed order,
// then extra templates sorted by name.
func (f *Formatter) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Templates returns every template in Names order.
func (f *Formatter) Templates() []Template {
	out := make([]Template, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.templates[name])
	}
	return out
}

// Lookup returns the template registered under name.
func (f *Formatter) Lookup(name string) (Template, bool) {
	t, ok := f.templates[name]
	return t, ok
}

// Format renders p with the template called nameOrPattern, or with
// nameOrPattern itself when no template has that name. It never fails:
// unrecognized %-sequences are copied through unchanged. A doubled plus
// ("++" or "+ +") in the result collapses to one, for named templates and
// ad-hoc patterns alike.
func (f *Formatter) Format(p *Phone, nameOrPattern string) string {
	if p == nil {
		return ""
	}
	pattern := nameOrPattern
	if nameOrPattern == FormatDefaultWithExtension && p.Extension == "" {
		pattern = f.templates[FormatDefault].Pattern
	} else if t, ok := f.templates[nameOrPattern]; ok {
		pattern = t.Pattern
	}
	return doublePlus.ReplaceAllString(render(p, pattern), "+")
}

// Templates returns the built-in templates.
func Templates() []Template {
	return builtinFormatter.Templates()
}

// IsTemplateName reports whether name is a built-in template.
func IsTemplateName(name string) bool {
	_, ok := builtinFormatter.Lookup(name)
	return ok
}

func render(p *Phone, pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + len(p.Number) + len(p.AreaCode))
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch == '%' && i+1 < len(pattern) {
			if v, ok := tokenValue(p, pattern[i+1]); ok {
				b.WriteString(v)
				i++
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func tokenValue(p *Phone, token byte) (string, bool) {
	switch token {
	case 'c':
		return p.Country.DialingCode, true
	case 'a':
		return p.AreaCode, true
	case 'A':
		if p.AreaCode == "" {
			return "", true
		}
		return "0" + p.AreaCode, true
	case 'n':
		return p.AreaCode + p.Number, true
	case 'f':
		if len(p.Number) <= groupWidth {
			return p.Number, true
		}
		return p.Number[:groupWidth], true
	case 'l':
		if len(p.Number) <= groupWidth {
			return "", true
		}
		return p.Number[groupWidth:], true
	case 'x':
		return p.Extension, true
	}
	return "", false
}
