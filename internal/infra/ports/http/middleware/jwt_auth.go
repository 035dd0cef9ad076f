package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomBook/internal/infra/appctx"
)

const cookieName = "jwt"

// Claims - токен управляемого auth-сервиса, нужен только email
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTAuthMiddleware принимает токен из заголовка Authorization: Bearer или из cookie jwt
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				cookie, err := c.Cookie(cookieName)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or malformed jwt"})
				}
				raw = cookie.Value
			}

			claims := &Claims{}

			token, err := jwt.ParseWithClaims(
				raw,
				claims,
				func(token *jwt.Token) (any, error) {
					return []byte(secret), nil
				},
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			)
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired jwt"})
			}

			email := strings.TrimSpace(claims.Email)
			if email == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token has no email"})
			}

			c.SetRequest(
				c.Request().WithContext(
					appctx.WithEmail(c.Request().Context(), email),
				),
			)

			return next(c)
		}
	}
}

// NewToken выпускает токен того же формата, что и auth-сервис. Нужен для CLI и тестов.
func NewToken(secret, email string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)

	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}

	return ""
}
