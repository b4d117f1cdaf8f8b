package connect

import (
	"context"

	"connectrpc.com/connect"

	"github.com/pitabwire/multilingual/languages"
	"github.com/pitabwire/multilingual/localization"
)

// LanguageInterceptor puts the Accept-Language header of connect requests into the context,
// the configured match first.
type LanguageInterceptor struct {
	list *languages.List
}

// NewLanguageInterceptor creates an interceptor negotiating against list. A nil list keeps the
// header order untouched.
func NewLanguageInterceptor(list *languages.List) *LanguageInterceptor {
	return &LanguageInterceptor{list: list}
}

func (l *LanguageInterceptor) languageContext(ctx context.Context, prefs []string) context.Context {
	if len(prefs) == 0 {
		return ctx
	}
	return localization.ToContext(ctx, localization.Negotiate(l.list, prefs))
}

// WrapUnary implements connect.Interceptor.
func (l *LanguageInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		ctx = l.languageContext(ctx, localization.ExtractLanguageFromHTTPHeader(req.Header()))
		return next(ctx, req)
	}
}

// WrapStreamingClient implements connect.Interceptor; clients are passed through.
func (l *LanguageInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (l *LanguageInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx = l.languageContext(ctx, localization.ExtractLanguageFromHTTPHeader(conn.RequestHeader()))
		return next(ctx, conn)
	}
}
