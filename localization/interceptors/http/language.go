package http

import (
	"net/http"

	"github.com/pitabwire/multilingual/languages"
	"github.com/pitabwire/multilingual/localization"
)

// LanguageHTTPMiddleware puts the languages requested through the lang form value and the
// Accept-Language header into the request context, the configured match first.
// The negotiated language is echoed in the Content-Language response header.
func LanguageHTTPMiddleware(list *languages.List, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := localization.Negotiate(list, localization.ExtractLanguageFromHTTPRequest(r))

		if list != nil && len(l) > 0 && list.Contains(l[0]) {
			w.Header().Set("Content-Language", l[0])
		}

		ctx := localization.ToContext(r.Context(), l)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}
