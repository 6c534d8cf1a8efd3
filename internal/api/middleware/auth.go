package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/docqa/internal/api"
)

type contextKey string

const ClientKey contextKey = "client"

// ErrInvalidAPIKey is returned by validators for unknown tokens.
var ErrInvalidAPIKey = errors.New("invalid api key")

// AuthValidator resolves a bearer token to the name of the calling client.
type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

// StaticKeyValidator accepts exactly one configured token.
type StaticKeyValidator struct {
	key    []byte
	client string
}

func NewStaticKeyValidator(key string) *StaticKeyValidator {
	return &StaticKeyValidator{key: []byte(key), client: "api-key"}
}

func (v *StaticKeyValidator) ValidateAPIKey(_ context.Context, token string) (string, error) {
	if len(v.key) == 0 || subtle.ConstantTimeCompare(v.key, []byte(token)) != 1 {
		return "", ErrInvalidAPIKey
	}
	return v.client, nil
}

// APIKeyAuth rejects requests without a valid "Authorization: Bearer" token.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			client, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), ClientKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClient returns the authenticated client name, or "" for anonymous requests.
func GetClient(ctx context.Context) string {
	client, _ := ctx.Value(ClientKey).(string)
	return client
}
