package languages

import "strings"

// Exempt is a set of language codes that may stay empty even when a field is required,
// typically languages served through a fallback.
type Exempt map[string]struct{}

// NewExempt builds an exempt set from codes, ignoring blanks.
func NewExempt(codes ...string) Exempt {
	e := make(Exempt, len(codes))
	e.Add(codes...)
	return e
}

// Add inserts codes into the set.
func (e Exempt) Add(codes ...string) {
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c != "" {
			e[c] = struct{}{}
		}
	}
}

// Has reports whether code is exempt. A nil set exempts nothing.
func (e Exempt) Has(code string) bool {
	_, ok := e[code]
	return ok
}

// Union returns a new set holding the codes of both sets.
func (e Exempt) Union(other Exempt) Exempt {
	out := make(Exempt, len(e)+len(other))
	for c := range e {
		out[c] = struct{}{}
	}
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// RequiredNames returns the display names of the languages that are not exempt, in list order.
func (l *List) RequiredNames(exempt Exempt) []string {
	names := make([]string, 0, len(l.langs))
	for _, lang := range l.langs {
		if !exempt.Has(lang.Code) {
			names = append(names, lang.Name)
		}
	}
	return names
}
