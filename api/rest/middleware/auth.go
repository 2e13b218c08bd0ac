package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const requesterKey ctxKey = "requester"

// Requester identifies the authenticated caller
type Requester struct {
	ID    string
	Email string
}

// RequesterFromContext returns the authenticated caller set by RequireAuth
func RequesterFromContext(ctx context.Context) (Requester, bool) {
	v, ok := ctx.Value(requesterKey).(Requester)
	return v, ok
}

// RequireAuth validates the bearer token and stores the requester in the
// request context
func RequireAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			requester, err := verify(strings.TrimPrefix(h, "Bearer "), key)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), requesterKey, requester)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verify(tokenStr string, key []byte) (Requester, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil || !t.Valid {
		return Requester{}, errors.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Requester{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Requester{}, errors.New("missing sub")
	}

	requester := Requester{ID: sub}
	if email, ok := claims["email"].(string); ok {
		requester.Email = email
	}
	return requester, nil
}

// SignToken issues a token for the given requester. Exposed for tooling and
// tests; token issuance normally lives with the account service.
func SignToken(secret, userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
