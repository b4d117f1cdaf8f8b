package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/pitabwire/multilingual/languages"
	"github.com/pitabwire/multilingual/localization"
)

// LanguageUnaryInterceptor puts the accept-language metadata into the context, the configured match first.
func LanguageUnaryInterceptor(list *languages.List) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		_ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		l := localization.ExtractLanguageFromGrpcRequest(ctx)
		if len(l) > 0 {
			ctx = localization.ToContext(ctx, localization.Negotiate(list, l))
		}

		return handler(ctx, req)
	}
}

// LanguageStreamInterceptor is the streaming form of LanguageUnaryInterceptor.
func LanguageStreamInterceptor(list *languages.List) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := ss.Context()
		l := localization.ExtractLanguageFromGrpcRequest(ctx)
		if len(l) == 0 {
			return handler(srv, ss)
		}

		ctx = localization.ToContext(ctx, localization.Negotiate(list, l))

		return handler(srv, &serverStreamWrapper{ctx, ss})
	}
}

type serverStreamWrapper struct {
	ctx context.Context
	grpc.ServerStream
}

func (s *serverStreamWrapper) Context() context.Context {
	return s.ctx
}
