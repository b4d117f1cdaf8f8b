// Package editor adapts multilingual aggregates to composite form editors: one input per
// configured language, split from a stored value and joined back into a validated document.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pitabwire/multilingual"
	"github.com/pitabwire/multilingual/config"
	"github.com/pitabwire/multilingual/languages"
	"github.com/pitabwire/multilingual/localization"
)

var (
	// ErrTooManyValues is returned when an editor submits more inputs than configured languages.
	ErrTooManyValues = errors.New("editor: more values than configured languages")
	// ErrValueTooLong is returned when an input exceeds the configured maximum length.
	ErrValueTooLong = errors.New("editor: value is too long")
	// ErrContradiction is returned when a file input is both uploaded and cleared.
	ErrContradiction = errors.New("editor: either submit a file or check the clear checkbox, not both")
)

// Policy decides which empty languages fail the required check.
type Policy int

const (
	// PolicyEveryLanguage requires content in every language that is not exempt.
	PolicyEveryLanguage Policy = iota
	// PolicyFirstLanguage only requires content in the first configured language.
	PolicyFirstLanguage
)

// ParsePolicy reads the REQUIRED_POLICY setting: "every" (or "") and "first".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "every", "":
		return PolicyEveryLanguage, nil
	case "first":
		return PolicyFirstLanguage, nil
	default:
		return 0, fmt.Errorf("editor: unknown required policy %q", s)
	}
}

// Requirement describes the field being joined.
type Requirement struct {
	// Field names the field in errors.
	Field string
	// Required makes empty languages an error.
	Required bool
	// Exempt lists extra codes that may stay empty for this field.
	Exempt []string
}

// Adapter splits aggregates into per-language inputs and joins inputs back into documents.
type Adapter struct {
	codec        *multilingual.Codec
	exempt       languages.Exempt
	policy       Policy
	maxLength    int
	widget       Widget
	uploadPrefix string
	localizer    localization.Manager
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithExempt adds codes that may stay empty on every required field.
func WithExempt(codes ...string) Option {
	return func(a *Adapter) {
		a.exempt.Add(codes...)
	}
}

// WithConfig applies the exempt languages and required policy of cfg, and its upload prefix
// when cfg also configures storage. An unknown policy keeps the default.
func WithConfig(cfg config.ConfigurationLanguages) Option {
	return func(a *Adapter) {
		a.exempt.Add(cfg.GetLanguagesReplacement()...)
		if p, err := ParsePolicy(cfg.GetRequiredPolicy()); err == nil {
			a.policy = p
		}
		if sc, ok := cfg.(config.ConfigurationStorage); ok {
			WithUploadPrefix(sc.GetStorageUploadPrefix())(a)
		}
	}
}

// WithPolicy selects the required check policy.
func WithPolicy(p Policy) Option {
	return func(a *Adapter) {
		a.policy = p
	}
}

// WithMaxLength limits every input to n characters, 0 meaning no limit.
func WithMaxLength(n int) Option {
	return func(a *Adapter) {
		a.maxLength = n
	}
}

// WithWidget selects the per-language input rendered by Render.
func WithWidget(w Widget) Option {
	return func(a *Adapter) {
		a.widget = w
	}
}

// WithUploadPrefix stores uploaded files under prefix.
func WithUploadPrefix(prefix string) Option {
	return func(a *Adapter) {
		a.uploadPrefix = strings.Trim(prefix, "/")
	}
}

// WithLocalizer localizes the messages returned by Message.
func WithLocalizer(m localization.Manager) Option {
	return func(a *Adapter) {
		a.localizer = m
	}
}

// NewAdapter creates an adapter editing values of codec's language list.
func NewAdapter(codec *multilingual.Codec, opts ...Option) *Adapter {
	a := &Adapter{
		codec:  codec,
		exempt: languages.NewExempt(),
		widget: WidgetTextarea,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Languages is the list inputs are ordered by.
func (a *Adapter) Languages() *languages.List {
	return a.codec.Languages()
}

// Split returns one value per configured language, in list order. value may be a *Text, a
// Text, a raw document as string or []byte, or nil.
func (a *Adapter) Split(value any) ([]string, error) {
	langs := a.Languages()

	switch v := value.(type) {
	case nil:
		return make([]string, langs.Len()), nil
	case *multilingual.Text:
		if v == nil {
			return make([]string, langs.Len()), nil
		}
		return a.splitText(v), nil
	case multilingual.Text:
		return a.splitText(&v), nil
	case string:
		return a.splitDocument(v)
	case []byte:
		return a.splitDocument(string(v))
	default:
		return nil, fmt.Errorf("editor: cannot split a %T", value)
	}
}

func (a *Adapter) splitText(t *multilingual.Text) []string {
	codes := a.Languages().Codes()
	out := make([]string, len(codes))
	for i, code := range codes {
		out[i] = t.ForLanguage(code)
	}
	return out
}

func (a *Adapter) splitDocument(doc string) ([]string, error) {
	values, err := a.codec.Decode(doc)
	if err != nil {
		return nil, err
	}

	codes := a.Languages().Codes()
	out := make([]string, len(codes))
	for i, code := range codes {
		out[i] = values[code]
	}
	return out, nil
}

// SplitFiles returns one handle per configured language, nil where there is no file.
func (a *Adapter) SplitFiles(f *multilingual.File) []*multilingual.FieldFile {
	codes := a.Languages().Codes()
	out := make([]*multilingual.FieldFile, len(codes))
	if f == nil || f.Languages() == nil {
		return out
	}
	for i, code := range codes {
		out[i] = f.ForLanguage(code)
	}
	return out
}

// Join validates values, given in list order, and returns the canonical document.
func (a *Adapter) Join(values []string, req Requirement) (string, error) {
	t, err := a.JoinText(values, req)
	if err != nil {
		return "", err
	}
	return a.codec.EncodeText(t)
}

// JoinText is Join returning the aggregate instead of its document.
//
// Values are trimmed and a short list is padded with empty values.
func (a *Adapter) JoinText(values []string, req Requirement) (*multilingual.Text, error) {
	langs := a.Languages()
	if len(values) > langs.Len() {
		return nil, fmt.Errorf("%w: got %d for %d", ErrTooManyValues, len(values), langs.Len())
	}

	cleaned := make([]string, langs.Len())
	for i, v := range values {
		cleaned[i] = strings.TrimSpace(v)
		if err := multilingual.CheckValue(langs.At(i).Code, cleaned[i]); err != nil {
			return nil, err
		}
		if a.maxLength > 0 && utf8.RuneCountInString(cleaned[i]) > a.maxLength {
			return nil, fmt.Errorf("%w: %s has %d characters, at most %d are allowed",
				ErrValueTooLong, langs.At(i).Name, utf8.RuneCountInString(cleaned[i]), a.maxLength)
		}
	}

	err := a.checkRequired(req, func(i int) bool { return cleaned[i] == "" })
	if err != nil {
		return nil, err
	}

	return multilingual.TextFromValues(langs, cleaned)
}

// checkRequired reports the first language that must have content but is empty.
func (a *Adapter) checkRequired(req Requirement, empty func(i int) bool) error {
	if !req.Required {
		return nil
	}

	langs := a.Languages()
	exempt := a.exempt.Union(languages.NewExempt(req.Exempt...))

	allEmpty := true
	for i := range langs.Len() {
		if !empty(i) {
			allEmpty = false
			break
		}
	}

	if allEmpty {
		names := langs.RequiredNames(exempt)
		if len(names) == 0 {
			names = langs.Names()
		}
		return &multilingual.RequiredFieldError{Field: req.Field, Languages: names}
	}

	last := langs.Len()
	if a.policy == PolicyFirstLanguage {
		last = 1
	}

	for i := range last {
		lang := langs.At(i)
		if empty(i) && !exempt.Has(lang.Code) {
			return &multilingual.RequiredFieldError{Field: req.Field, Language: lang}
		}
	}
	return nil
}
