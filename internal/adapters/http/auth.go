package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid bearer token")
)

type userIDContextKey struct{}

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey{}).(string)
	return userID
}

type userClaims struct {
	ID any `json:"id,omitempty"`
	jwt.RegisteredClaims
}

func (c userClaims) userID() string {
	switch v := c.ID.(type) {
	case string:
		if id := strings.TrimSpace(v); id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.TrimSpace(c.Subject)
}

// Authenticator resolves HS256 bearer tokens to user ids. With an empty
// secret every caller is anonymous.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(strings.TrimSpace(secret))}
}

func (a *Authenticator) Enabled() bool {
	return a != nil && len(a.secret) > 0
}

// UserID returns the user bound to an Authorization header value.
func (a *Authenticator) UserID(headerValue string) (string, error) {
	token, ok := bearerToken(headerValue)
	if !ok {
		return "", errMissingToken
	}
	if !a.Enabled() {
		return "", errInvalidToken
	}

	var claims userClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidToken, err)
	}

	userID := claims.userID()
	if userID == "" {
		return "", fmt.Errorf("%w: token carries no user id", errInvalidToken)
	}
	return userID, nil
}

func bearerToken(headerValue string) (string, bool) {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" {
		return "", false
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
	return token, token != ""
}

// optionalAuth lets anonymous callers through but rejects bad tokens.
func (rt *Router) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.TrimSpace(header) == "" || !rt.auth.Enabled() {
			next(w, r)
			return
		}
		userID, err := rt.auth.UserID(header)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDContextKey{}, userID)))
	}
}

// requireAuth answers 401 for anonymous callers, which is every caller
// when no secret is configured, and 403 for tokens that fail verification.
func (rt *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := rt.auth.UserID(r.Header.Get("Authorization"))
		switch {
		case errors.Is(err, errMissingToken) || !rt.auth.Enabled():
			writeError(w, http.StatusUnauthorized, "access token is required")
			return
		case err != nil:
			writeError(w, http.StatusForbidden, "invalid or expired token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDContextKey{}, userID)))
	}
}
