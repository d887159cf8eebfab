package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CartSessionHeader carries the browser's cart session id. Clients without
// one are issued a fresh id in the response header.
const CartSessionHeader = "X-Cart-Session"

const maxCartSessionLen = 64

type contextKey string

const ctxCartSession contextKey = "cart_session"

func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if session == "" || len(session) > maxCartSessionLen {
				session = uuid.NewString()
			}
			w.Header().Set(CartSessionHeader, session)

			ctx := WithCartSession(r.Context(), session)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, session)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CartSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartSession).(string); ok {
		return v
	}
	return ""
}

func WithCartSession(ctx context.Context, session string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartSession, session)
}
