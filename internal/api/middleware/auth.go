package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danushadhitya/file-manager/internal/registry"
	"github.com/danushadhitya/file-manager/internal/utils"
)

// APIKeyHeader carries the shared secret on every protected request.
const APIKeyHeader = "X-API-KEY"

// Authorizer decides whether a request may reach the registry. Stateless; a
// non-nil error means reject. Implementations must not distinguish a missing
// credential from a wrong one.
type Authorizer interface {
	Authorize(r *http.Request) error
}

// StaticKeyAuthorizer accepts requests whose X-API-KEY header matches the
// configured shared secret.
type StaticKeyAuthorizer struct {
	key []byte
}

func NewStaticKeyAuthorizer(key string) *StaticKeyAuthorizer {
	return &StaticKeyAuthorizer{key: []byte(key)}
}

func (a *StaticKeyAuthorizer) Authorize(r *http.Request) error {
	got := []byte(r.Header.Get(APIKeyHeader))
	if subtle.ConstantTimeCompare(got, a.key) != 1 {
		return registry.ErrUnauthorized
	}
	return nil
}

// JWTAuthorizer accepts requests carrying a valid HMAC-signed bearer token in
// the X-API-KEY header. It is the drop-in stronger scheme for deployments
// that rotate per-client tokens instead of sharing one static key.
type JWTAuthorizer struct {
	secret []byte
}

func NewJWTAuthorizer(secret string) *JWTAuthorizer {
	return &JWTAuthorizer{secret: []byte(secret)}
}

func (a *JWTAuthorizer) Authorize(r *http.Request) error {
	tokenStr := r.Header.Get(APIKeyHeader)
	if tokenStr == "" {
		return registry.ErrUnauthorized
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return registry.ErrUnauthorized
	}
	return nil
}

// RequireAuth wraps a handler with the access gate. Rejected requests get a
// uniform 401 before any registry or backend call runs. OPTIONS passes
// through for CORS preflight.
func RequireAuth(a Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if err := a.Authorize(r); err != nil {
				utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
					Success: false,
					Error:   "Unauthorized",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
