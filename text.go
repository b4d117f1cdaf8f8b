package multilingual

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/pitabwire/multilingual/languages"
	"github.com/pitabwire/multilingual/localization"
)

// Text aggregates manually written translations of the same piece of text, one per configured
// language. Values are kept in the canonical order of the language list and a language without
// a translation holds "".
type Text struct {
	langs  *languages.List
	values []string
}

// NewText returns a Text with every language empty.
func NewText(langs *languages.List) *Text {
	return &Text{langs: langs, values: make([]string, langs.Len())}
}

// TextFromMap builds a Text from code keyed values. Codes that are not configured are rejected.
func TextFromMap(langs *languages.List, values map[string]string) (*Text, error) {
	t := NewText(langs)
	for code, v := range values {
		if err := t.Set(code, v); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// TextFromValues builds a Text from values given in list order.
func TextFromValues(langs *languages.List, values []string) (*Text, error) {
	if len(values) != langs.Len() {
		return nil, fmt.Errorf("multilingual: got %d values for %d languages", len(values), langs.Len())
	}
	return &Text{langs: langs, values: slices.Clone(values)}, nil
}

// Languages is the list the Text is bound to, nil for a zero Text.
func (t *Text) Languages() *languages.List {
	return t.langs
}

// Get returns the translation for code.
func (t *Text) Get(code string) (string, error) {
	if t.langs == nil {
		return "", ErrUnboundText
	}
	i := t.langs.Index(code)
	if i < 0 {
		return "", &UnknownLanguageError{Code: code}
	}
	return t.values[i], nil
}

// Set replaces the translation for code.
func (t *Text) Set(code, value string) error {
	if t.langs == nil {
		return ErrUnboundText
	}
	i := t.langs.Index(code)
	if i < 0 {
		return &UnknownLanguageError{Code: code}
	}
	t.values[i] = value
	return nil
}

// ForLanguage is the display lookup: unknown codes and unbound values give "".
func (t *Text) ForLanguage(code string) string {
	v, err := t.Get(code)
	if err != nil {
		return ""
	}
	return v
}

// ForContext returns the translation for the request language carried by ctx, or for the
// default language when ctx carries none. A request language that is not configured is a
// configuration mismatch and is reported as an UnknownLanguageError.
func (t *Text) ForContext(ctx context.Context) (string, error) {
	if t.langs == nil {
		return "", ErrUnboundText
	}
	lang, err := t.langs.Resolve(localization.FromContext(ctx))
	if err != nil {
		return "", err
	}
	return t.Get(lang.Code)
}

// Values returns the translations in list order.
func (t *Text) Values() []string {
	return slices.Clone(t.values)
}

// Map returns the translations keyed by code.
func (t *Text) Map() map[string]string {
	m := make(map[string]string, len(t.values))
	for i, v := range t.values {
		m[t.langs.At(i).Code] = v
	}
	return m
}

// Missing returns the codes without a translation, in list order.
func (t *Text) Missing() []string {
	var codes []string
	for i, v := range t.values {
		if v == "" {
			codes = append(codes, t.langs.At(i).Code)
		}
	}
	return codes
}

// IsEmpty reports whether no language has a translation.
func (t *Text) IsEmpty() bool {
	return len(t.Missing()) == len(t.values)
}

// Equal reports whether both texts hold the same translations for the same codes.
func (t *Text) Equal(other *Text) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.langs == nil || other.langs == nil {
		return t.langs == other.langs && len(t.values) == len(other.values)
	}
	return slices.Equal(t.langs.Codes(), other.langs.Codes()) && slices.Equal(t.values, other.values)
}

// String is the translation in the default language.
func (t Text) String() string {
	if t.langs == nil {
		return ""
	}
	return t.values[0]
}

// Value implements driver.Valuer with the canonical document.
func (t Text) Value() (driver.Value, error) {
	if t.langs == nil {
		return nil, nil //nolint:nilnil //an unbound value is stored as NULL
	}
	return NewCodec(t.langs).encode(t.values)
}

// Scan implements sql.Scanner for a Text already bound with NewText.
func (t *Text) Scan(value any) error {
	if t.langs == nil {
		return ErrUnboundText
	}

	doc, err := documentFromDB(value)
	if err != nil {
		return err
	}

	values, err := decodeAttribute(doc)
	if err != nil {
		return err
	}
	t.values = orderedValues(t.langs, values)
	return nil
}

// MarshalJSON encodes the translations as a code keyed object.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.langs == nil {
		return []byte("null"), nil
	}
	return json.Marshal(t.Map())
}

// UnmarshalJSON decodes a code keyed object into a bound Text. Unknown codes are ignored and
// absent ones become "".
func (t *Text) UnmarshalJSON(data []byte) error {
	if t.langs == nil {
		return ErrUnboundText
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	t.values = orderedValues(t.langs, m)
	return nil
}

func orderedValues(langs *languages.List, values map[string]string) []string {
	out := make([]string, langs.Len())
	for i := range out {
		out[i] = values[langs.At(i).Code]
	}
	return out
}

func documentFromDB(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("multilingual: unsupported Scan type: %T", value)
	}
}
