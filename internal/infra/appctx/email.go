package appctx

import (
	"context"
)

type ctxKey string

const emailKey ctxKey = "email"

// WithEmail добавляет email пользователя из токена в контекст
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// Email извлекает email из контекста
func Email(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}
