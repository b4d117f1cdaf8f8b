// Package localization carries the request language through a context and localizes the
// user facing messages of multilingual fields with go-i18n.
package localization

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"
	"golang.org/x/text/language"
	"google.golang.org/grpc/metadata"

	"github.com/pitabwire/multilingual/config"
	"github.com/pitabwire/multilingual/languages"
)

type contextKey string

func (c contextKey) String() string {
	return "multilingual/localization/" + string(c)
}

const ctxKeyLanguage = contextKey("languageKey")

// ToContext adds language to the current supplied context.
func ToContext(ctx context.Context, lang []string) context.Context {
	return context.WithValue(ctx, ctxKeyLanguage, lang)
}

// FromContext extracts language from the supplied context if any exist.
func FromContext(ctx context.Context) []string {
	languages, ok := ctx.Value(ctxKeyLanguage).([]string)
	if !ok {
		return nil
	}

	return languages
}

// Manager localizes messages against the languages of a request.
type Manager interface {
	Localize(ctx context.Context, request any, cfg *i18n.LocalizeConfig) string
}

type managerImpl struct {
	bundle *i18n.Bundle
}

// NewManager loads messages.<lang>.toml for each language from translationsFolder.
func NewManager(translationsFolder string, languages ...string) (Manager, error) {
	if translationsFolder == "" {
		translationsFolder = "localization"
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, lang := range languages {
		_, err := bundle.LoadMessageFile(fmt.Sprintf("%s/messages.%v.toml", translationsFolder, lang))
		if err != nil {
			return nil, fmt.Errorf("localization: load %s messages: %w", lang, err)
		}
	}

	return &managerImpl{bundle: bundle}, nil
}

// NewManagerFromConfig loads TRANSLATIONS_LANGUAGES from TRANSLATIONS_FOLDER.
func NewManagerFromConfig(cfg config.ConfigurationLocalization) (Manager, error) {
	return NewManager(cfg.GetTranslationsFolder(), cfg.GetTranslationsLanguages()...)
}

// Localize runs cfg against the languages found in request. A DefaultMessage in cfg is used
// when no loaded language carries the message.
func (s *managerImpl) Localize(ctx context.Context, request any, cfg *i18n.LocalizeConfig) string {
	var languageSlice []string

	switch v := request.(type) {
	case *http.Request:
		languageSlice = ExtractLanguageFromHTTPRequest(v)

	case context.Context:
		languageSlice = FromContext(v)
		if len(languageSlice) == 0 {
			languageSlice = ExtractLanguageFromGrpcRequest(v)
		}

	case string:
		languageSlice = []string{v}

	case []string:
		languageSlice = v

	default:
		logger := util.Log(ctx).WithField("messageID", cfg.MessageID).WithField("variables", cfg.TemplateData)
		logger.Warn("Localize -- no valid request object found, use string, []string, context or http.Request")
		return cfg.MessageID
	}

	localizer := i18n.NewLocalizer(s.bundle, languageSlice...)

	transVersion, err := localizer.Localize(cfg)
	if err != nil {
		logger := util.Log(ctx).WithError(err)
		logger.Error(" Localize -- could not perform translation")
	}

	return transVersion
}

func ExtractLanguageFromHTTPRequest(req *http.Request) []string {
	lang := req.FormValue("lang")

	acceptedLang := ExtractLanguageFromHTTPHeader(req.Header)

	var lanugages []string
	if lang != "" {
		lanugages = append(lanugages, lang)
	}

	return append(lanugages, acceptedLang...)
}

func ExtractLanguageFromHTTPHeader(req http.Header) []string {
	acceptLanguageHeader := req.Get("Accept-Language")
	if acceptLanguageHeader == "" {
		return nil
	}
	return splitAcceptLanguage(acceptLanguageHeader)
}

func ExtractLanguageFromGrpcRequest(ctx context.Context) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return []string{}
	}

	header, ok := md["accept-language"]
	if !ok || len(header) == 0 {
		return []string{}
	}
	acceptLangHeader := header[0]
	return splitAcceptLanguage(acceptLangHeader)
}

// splitAcceptLanguage keeps the order of the header and drops quality values.
func splitAcceptLanguage(header string) []string {
	parts := strings.Split(header, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if i := strings.IndexByte(p, ';'); i >= 0 {
			p = p[:i]
		}
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Negotiate puts the configured language that best matches preferences in front of them, so
// lookups and message localization downstream agree on one language. Preferences that match
// nothing configured are returned unchanged.
func Negotiate(list *languages.List, preferences []string) []string {
	if list == nil || len(preferences) == 0 {
		return preferences
	}

	lang, err := list.Resolve(preferences)
	if err != nil {
		return preferences
	}

	out := make([]string, 0, len(preferences)+1)
	out = append(out, lang.Code)
	for _, p := range preferences {
		if p != lang.Code {
			out = append(out, p)
		}
	}
	return out
}
