package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	languageKey
)

// signingMethod is the only algorithm RequireAuth accepts.
var signingMethod = jwt.SigningMethodHS256

type AuthMiddleware struct {
	jwtSecret []byte
}

func NewAuthMiddleware(secret []byte) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: secret}
}

// UserID returns the authenticated account id set by RequireAuth.
func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

// WithUserID stores an account id in ctx the way RequireAuth does.
func WithUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// IssueToken signs a token for userID that RequireAuth accepts until ttl
// has passed. Each token carries a fresh id.
func IssueToken(secret []byte, userID int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(signingMethod, claims).SignedString(secret)
}

// RequireAuth rejects requests without a valid bearer token. Tokens must be
// HS256, carry an expiry and an id, and name a numeric account as subject.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")

		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
			return m.jwtSecret, nil
		}, jwt.WithValidMethods([]string{signingMethod.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if claims.ID == "" {
			http.Error(w, "invalid claims", http.StatusUnauthorized)
			return
		}
		id, err := strconv.Atoi(claims.Subject)
		if err != nil || id <= 0 {
			http.Error(w, "invalid subject", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}
