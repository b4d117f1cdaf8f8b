// Package languages holds the ordered, site-wide list of languages that every multilingual
// value is keyed by.
//
// A List is built once at startup and is read-only afterwards, so it can be shared freely
// between codecs, editors and goroutines. Its order is significant: it is the canonical order
// of records in an encoded document and of inputs in a composite editor.
package languages

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	// ErrNoLanguages is returned when a list is built without any language.
	ErrNoLanguages = errors.New("languages: at least one language must be configured")
	// ErrUnknownLanguage is matched by every UnknownLanguageError.
	ErrUnknownLanguage = errors.New("languages: unknown language code")
	// ErrInvalidLanguage is returned for blank, duplicate or malformed codes.
	ErrInvalidLanguage = errors.New("languages: invalid language")
)

// UnknownLanguageError reports a code that is not part of the configured list.
type UnknownLanguageError struct {
	Code string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf(
		"languages: language code %q is not configured, add it to the language list or change the requested language",
		e.Code,
	)
}

// Is lets errors.Is match ErrUnknownLanguage.
func (e *UnknownLanguageError) Is(target error) bool {
	return target == ErrUnknownLanguage
}

// Language is one configured language.
type Language struct {
	Code string `toml:"code" yaml:"code"`
	Name string `toml:"name" yaml:"name"`
}

func (l Language) String() string {
	return l.Code
}

// Tag returns the BCP 47 tag of the language code.
func (l Language) Tag() language.Tag {
	return language.Make(l.Code)
}

// List is an immutable ordered list of languages.
type List struct {
	langs []Language
	index map[string]int
}

// New validates langs and builds a List keeping their order.
func New(langs ...Language) (*List, error) {
	if len(langs) == 0 {
		return nil, ErrNoLanguages
	}

	l := &List{
		langs: make([]Language, 0, len(langs)),
		index: make(map[string]int, len(langs)),
	}

	for _, lang := range langs {
		code := strings.TrimSpace(lang.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: blank language code", ErrInvalidLanguage)
		}

		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidLanguage, code, err)
		}

		if _, ok := l.index[code]; ok {
			return nil, fmt.Errorf("%w: duplicate language code %q", ErrInvalidLanguage, code)
		}

		name := strings.TrimSpace(lang.Name)
		if name == "" {
			name = displayName(tag, code)
		}

		l.index[code] = len(l.langs)
		l.langs = append(l.langs, Language{Code: code, Name: name})
	}

	return l, nil
}

// MustNew is like New but panics on error. It is intended for tests and package level lists.
func MustNew(langs ...Language) *List {
	l, err := New(langs...)
	if err != nil {
		panic(err)
	}
	return l
}

func displayName(tag language.Tag, fallback string) string {
	name := display.Languages(language.English).Name(tag)
	if name == "" {
		return fallback
	}
	return name
}

// Len is the number of configured languages.
func (l *List) Len() int {
	return len(l.langs)
}

// At returns the language at position i.
func (l *List) At(i int) Language {
	return l.langs[i]
}

// All returns a copy of the languages in order.
func (l *List) All() []Language {
	out := make([]Language, len(l.langs))
	copy(out, l.langs)
	return out
}

// Codes returns the language codes in order.
func (l *List) Codes() []string {
	out := make([]string, len(l.langs))
	for i, lang := range l.langs {
		out[i] = lang.Code
	}
	return out
}

// Names returns the display names in order.
func (l *List) Names() []string {
	out := make([]string, len(l.langs))
	for i, lang := range l.langs {
		out[i] = lang.Name
	}
	return out
}

// Index returns the canonical position of code, or -1.
func (l *List) Index(code string) int {
	i, ok := l.index[code]
	if !ok {
		return -1
	}
	return i
}

// Contains reports whether code is configured.
func (l *List) Contains(code string) bool {
	_, ok := l.index[code]
	return ok
}

// Lookup returns the language configured for code.
func (l *List) Lookup(code string) (Language, error) {
	i, ok := l.index[code]
	if !ok {
		return Language{}, &UnknownLanguageError{Code: code}
	}
	return l.langs[i], nil
}

// Name returns the display name for code, or the code itself when it is not configured.
func (l *List) Name(code string) string {
	lang, err := l.Lookup(code)
	if err != nil {
		return code
	}
	return lang.Name
}

// Default is the first configured language.
func (l *List) Default() Language {
	return l.langs[0]
}

// Resolve maps request language preferences, most preferred first, onto the list.
//
// Every preference is tried as an exact code first and then by its base language. No
// preferences resolve to the default language. Preferences that match nothing are a
// configuration mismatch and yield an UnknownLanguageError for the first of them.
func (l *List) Resolve(preferences []string) (Language, error) {
	var first string
	for _, pref := range preferences {
		pref = cleanPreference(pref)
		if pref == "" {
			continue
		}
		if first == "" {
			first = pref
		}

		if lang, ok := l.match(pref); ok {
			return lang, nil
		}
	}

	if first == "" {
		return l.Default(), nil
	}

	return Language{}, &UnknownLanguageError{Code: first}
}

func (l *List) match(pref string) (Language, bool) {
	if i, ok := l.index[pref]; ok {
		return l.langs[i], true
	}

	tag, err := language.Parse(pref)
	if err != nil {
		return Language{}, false
	}
	base, _ := tag.Base()

	for _, lang := range l.langs {
		if strings.EqualFold(lang.Code, tag.String()) {
			return lang, true
		}
	}
	for _, lang := range l.langs {
		b, _ := lang.Tag().Base()
		if b == base {
			return lang, true
		}
	}
	return Language{}, false
}

// cleanPreference strips quality values and whitespace from an Accept-Language entry.
func cleanPreference(pref string) string {
	if i := strings.IndexByte(pref, ';'); i >= 0 {
		pref = pref[:i]
	}
	pref = strings.TrimSpace(pref)
	if pref == "*" {
		return ""
	}
	return pref
}
