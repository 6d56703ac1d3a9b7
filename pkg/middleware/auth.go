package middleware

import (
	"context"
	"net/http"
	"qota/pkg/logger"
	"qota/pkg/model"
)

const (
	memberContextKey contextKey = "member"

	HeaderMemberID   = "X-Member-Id"
	HeaderMemberName = "X-Member-Name"
)

// MemberFromContext returns the authenticated member, or false when the
// request carried no identity.
func MemberFromContext(ctx context.Context) (model.Member, bool) {
	member, ok := ctx.Value(memberContextKey).(model.Member)
	return member, ok
}

// WithMember injects an identity into a context. Test helper.
func WithMember(ctx context.Context, member model.Member) context.Context {
	return context.WithValue(ctx, memberContextKey, member)
}

// AuthIdentity rejects requests without a member identity with 401 and makes
// the identity available downstream via MemberFromContext.
func AuthIdentity(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			memberID := r.Header.Get(HeaderMemberID)
			if memberID == "" {
				log.Warn("Request without member identity",
					"request_id", requestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"method", r.Method,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Member is not authenticated."}`))
				return
			}

			member := model.Member{
				ID:          memberID,
				DisplayName: r.Header.Get(HeaderMemberName),
			}

			ctx := WithMember(r.Context(), member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
