package multilingual

import (
	"context"
)

// FuncMap returns template helpers for multilingual values, usable with both text/template
// and html/template:
//
//	{{ trans_by_code .Title "es" }}
//	{{ trans_for_language .Title .LanguageCode }}
//	{{ trans_for_context .Title .Ctx }}
//
// Helpers never fail: nil values and unknown codes render as "".
func FuncMap() map[string]any {
	return map[string]any{
		"trans_by_code":      TransByCode,
		"trans_for_language": TransForLanguage,
		"trans_for_context":  TransForContext,
	}
}

// TransByCode returns the translation, or stored file name, of value for code.
func TransByCode(value any, code string) string {
	switch v := value.(type) {
	case *Text:
		if v == nil {
			return ""
		}
		return v.ForLanguage(code)
	case Text:
		return v.ForLanguage(code)
	case *File:
		if v == nil {
			return ""
		}
		return v.ForLanguage(code).String()
	case File:
		return v.ForLanguage(code).String()
	default:
		return ""
	}
}

// TransForLanguage is TransByCode falling back to the default language when code is "".
func TransForLanguage(value any, code string) string {
	if code == "" {
		code = defaultCode(value)
	}
	return TransByCode(value, code)
}

// TransForContext renders value in the request language carried by ctx.
func TransForContext(value any, ctx context.Context) string { //nolint:revive //argument order reads naturally in templates
	if ctx == nil {
		return TransForLanguage(value, "")
	}

	switch v := value.(type) {
	case *Text:
		if v == nil {
			return ""
		}
		s, err := v.ForContext(ctx)
		if err != nil {
			return ""
		}
		return s
	case Text:
		return TransForContext(&v, ctx)
	case *File:
		if v == nil {
			return ""
		}
		f, err := v.ForContext(ctx)
		if err != nil {
			return ""
		}
		return f.String()
	case File:
		return TransForContext(&v, ctx)
	default:
		return ""
	}
}

func defaultCode(value any) string {
	switch v := value.(type) {
	case *Text:
		if v != nil && v.langs != nil {
			return v.langs.Default().Code
		}
	case Text:
		if v.langs != nil {
			return v.langs.Default().Code
		}
	case *File:
		if v != nil && v.langs != nil {
			return v.langs.Default().Code
		}
	case File:
		if v.langs != nil {
			return v.langs.Default().Code
		}
	}
	return ""
}
