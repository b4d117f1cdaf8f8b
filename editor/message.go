package editor

import (
	"context"
	"errors"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/pitabwire/multilingual"
)

// RequiredLanguageMessage is the message ID localizing a RequiredFieldError. Its template
// receives .Field and .Languages.
const RequiredLanguageMessage = "RequiredLanguage"

// Message returns the user facing text for err, localized for the request language in ctx
// when the adapter has a localizer.
func (a *Adapter) Message(ctx context.Context, err error) string {
	if err == nil {
		return ""
	}

	var required *multilingual.RequiredFieldError
	if a.localizer == nil || !errors.As(err, &required) {
		return err.Error()
	}

	msg := a.localizer.Localize(ctx, ctx, &i18n.LocalizeConfig{
		MessageID: RequiredLanguageMessage,
		TemplateData: map[string]any{
			"Field":     required.Field,
			"Languages": required.Missing(),
		},
	})
	if msg == "" {
		return err.Error()
	}
	return msg
}
