package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bookline/booking-service/internal/api/handlers"
)

type contextKey string

const tenantIDKey contextKey = "tenantID"

// TenantIDHeader заголовок, в котором вышестоящий gateway передаёт тенанта
const TenantIDHeader = "X-Tenant-ID"

// Auth проверяет наличие корректного X-Tenant-ID и кладет его в контекст.
// Сама аутентификация выполняется выше по стеку, сервис доверяет заголовку
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(TenantIDHeader)
		if raw == "" {
			handlers.RespondUnauthorized(w, "отсутствует заголовок "+TenantIDHeader)
			return
		}

		tenantID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tenantID <= 0 {
			handlers.RespondUnauthorized(w, "некорректный заголовок "+TenantIDHeader)
			return
		}

		ctx := context.WithValue(r.Context(), tenantIDKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTenantID извлекает ID тенанта из контекста запроса
func GetTenantID(ctx context.Context) (int64, bool) {
	tenantID, ok := ctx.Value(tenantIDKey).(int64)
	return tenantID, ok
}
