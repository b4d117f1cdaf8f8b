package multilingual

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pitabwire/multilingual/languages"
)

var (
	// ErrMalformedDocument is matched by every MalformedDocumentError.
	ErrMalformedDocument = errors.New("multilingual: malformed document")
	// ErrRequiredField is matched by every RequiredFieldError.
	ErrRequiredField = errors.New("multilingual: required field")
	// ErrUnknownLanguage is matched by every UnknownLanguageError.
	ErrUnknownLanguage = languages.ErrUnknownLanguage
	// ErrUnboundText is returned when a zero Text, not bound to a language list, is used.
	ErrUnboundText = errors.New("multilingual: value is not bound to a language list")
	// ErrNoStorage is returned when files are decoded by a codec without storage.
	ErrNoStorage = errors.New("multilingual: file documents need a storage")
	// ErrInvalidValue is matched by every InvalidValueError.
	ErrInvalidValue = errors.New("multilingual: value cannot be stored in a document")
)

// UnknownLanguageError reports a language code absent from the configured list.
type UnknownLanguageError = languages.UnknownLanguageError

// MalformedDocumentError reports a document that is not well-formed XML.
type MalformedDocumentError struct {
	Document string
	Err      error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("multilingual: invalid XML document %q: %v", truncate(e.Document, 64), e.Err)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrMalformedDocument.
func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// InvalidValueError reports a language value that is not valid UTF-8 or holds a character XML
// 1.0 cannot carry. Such values would not survive a document round trip.
type InvalidValueError struct {
	Code   string
	Offset int
	Rune   rune
}

func (e *InvalidValueError) Error() string {
	if e.Rune == utf8.RuneError {
		return fmt.Sprintf("multilingual: value for %q is not valid UTF-8 at byte %d", e.Code, e.Offset)
	}
	return fmt.Sprintf("multilingual: value for %q holds character %U at byte %d not allowed in XML",
		e.Code, e.Rune, e.Offset)
}

// Is lets errors.Is match ErrInvalidValue.
func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// CheckValue reports an InvalidValueError when value cannot be stored for code.
func CheckValue(code, value string) error {
	for i, r := range value {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(value[i:]); size <= 1 {
				return &InvalidValueError{Code: code, Offset: i, Rune: utf8.RuneError}
			}
		}
		if !isXMLChar(r) {
			return &InvalidValueError{Code: code, Offset: i, Rune: r}
		}
	}
	return nil
}

// isXMLChar is the Char production of XML 1.0.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// RequiredFieldError reports a mandatory language left empty.
//
// When the whole field was empty Language is blank and Languages lists the display names of
// every language that needed content.
type RequiredFieldError struct {
	Field     string
	Language  languages.Language
	Languages []string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("multilingual: %sthis multi-lingual field is required therefore you must provide content in %s",
		fieldPrefix(e.Field), e.Missing())
}

// Missing is the human readable part naming what must be filled in.
func (e *RequiredFieldError) Missing() string {
	if e.Language.Code != "" {
		return e.Language.Name
	}
	return "(" + strings.Join(e.Languages, ", ") + ")"
}

// Generic reports whether the error is about the whole field rather than one language.
func (e *RequiredFieldError) Generic() bool {
	return e.Language.Code == ""
}

// Is lets errors.Is match ErrRequiredField.
func (e *RequiredFieldError) Is(target error) bool {
	return target == ErrRequiredField
}

func fieldPrefix(field string) string {
	if field == "" {
		return ""
	}
	return field + ": "
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
