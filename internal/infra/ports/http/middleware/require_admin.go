package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/infra/appctx"
	"github.com/qrave1/RoomBook/internal/usecase"
)

// RequireAdmin пропускает только профили с role = admin. Ставится после JWTAuthMiddleware.
func RequireAdmin(identity usecase.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, ok := appctx.Email(c.Request().Context())
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
			}

			profile, err := identity.Resolve(c.Request().Context(), email)
			switch {
			case errors.Is(err, errs.ErrNotFound):
				return c.JSON(http.StatusForbidden, map[string]string{"error": "admin role required"})
			case errors.Is(err, errs.ErrTransient):
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "identity service unavailable"})
			case err != nil:
				slog.Error("resolve admin", slog.Any(constant.Error, err), slog.String(constant.Email, email))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to resolve user"})
			}

			if !profile.IsAdmin() {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "admin role required"})
			}

			return next(c)
		}
	}
}
