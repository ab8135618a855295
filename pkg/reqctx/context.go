// Package reqctx carries request-scoped metadata from HTTP middleware down to services.
//
// RequestMeta is set once per request by the client context middleware; services read it
// back for logging and for the audit fields they persist.
package reqctx

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey int

const keyRequestMeta ctxKey = iota

// RequestMeta holds per-request metadata set by HTTP middleware.
type RequestMeta struct {
	RequestID string

	// ClientIP is the resolved client address, proxy headers taken into account.
	ClientIP  string
	UserAgent string
	Referrer  string

	RequestedAt time.Time
}

func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, keyRequestMeta, meta)
}

// RequestMetaFromContext returns nil, false if not set.
func RequestMetaFromContext(ctx context.Context) (*RequestMeta, bool) {
	meta, ok := ctx.Value(keyRequestMeta).(*RequestMeta)
	return meta, ok && meta != nil
}

// LogAttrs returns request id and client ip as slog attributes, or nothing.
func LogAttrs(ctx context.Context) []any {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok {
		return nil
	}
	return []any{
		slog.String("request_id", meta.RequestID),
		slog.String("ip", meta.ClientIP),
	}
}
