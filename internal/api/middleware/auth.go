package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	// RoleAdmin роль сотрудника мастерской, видит и меняет все
	RoleAdmin = "admin"

	msgMissingUserID = "отсутствует заголовок X-User-ID"
)

type contextKey string

const (
	userIDKey     contextKey = "user_id"
	privilegedKey contextKey = "privileged"
)

// Identity читает X-User-ID и X-User-Role и кладет их в контекст.
// Запрос без заголовков пропускается как анонимный.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if userID := strings.TrimSpace(r.Header.Get(HeaderUserID)); userID != "" {
			ctx = context.WithValue(ctx, userIDKey, userID)
		}
		if strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderUserRole)), RoleAdmin) {
			ctx = context.WithValue(ctx, privilegedKey, true)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Auth требует X-User-ID, иначе 401
func Auth(next http.Handler) http.Handler {
	return Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); !ok {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// IsPrivileged true для сотрудника мастерской
func IsPrivileged(ctx context.Context) bool {
	privileged, _ := ctx.Value(privilegedKey).(bool)
	return privileged
}

// WithIdentity кладет пользователя в контекст (используется в тестах handlers)
func WithIdentity(ctx context.Context, userID string, privileged bool) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, userIDKey, userID)
	}
	if privileged {
		ctx = context.WithValue(ctx, privilegedKey, true)
	}
	return ctx
}
