package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/naturalis/museumapp-api/internal/auth"
	"github.com/naturalis/museumapp-api/internal/logger"
)

// TokenParser verifies a presented token.
type TokenParser interface {
	Parse(token string) (auth.Claims, error)
}

// TokenIssuer signs a token for a verified principal.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
}

// CredentialVerifier checks a username and password.
type CredentialVerifier interface {
	Verify(username, password string) (auth.Principal, bool)
	Identity(c auth.Claims) map[string]string
}

// LoginRequest is the body of POST /auth.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful POST /auth.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type identityKey struct{}

// IdentityFromContext returns the identity stored by JWTMiddleware, nil if none.
func IdentityFromContext(ctx context.Context) map[string]string {
	id, _ := ctx.Value(identityKey{}).(map[string]string)
	return id
}

// tokenSchemes are the accepted Authorization header schemes.
var tokenSchemes = []string{"Bearer ", "JWT "}

// JWTMiddleware returns a middleware that requires a valid token.
// If enabled is false, authentication is disabled (pass-through).
func JWTMiddleware(tokens TokenParser, ids CredentialVerifier, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, ok := stripScheme(header)
			if !ok {
				writeError(w, http.StatusUnauthorized, "authorization header must use Bearer or JWT scheme")
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				logger.FromContext(r.Context()).Debug("token rejected", zap.Error(err))
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			identity := ids.Identity(claims)
			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			ctx = logger.ContextWithFields(ctx, zap.String("user_id", identity["user_id"]))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func stripScheme(header string) (string, bool) {
	for _, scheme := range tokenSchemes {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			return strings.TrimSpace(header[len(scheme):]), true
		}
	}
	return "", false
}

// LoginHandler exchanges a username and password for a token.
func LoginHandler(creds CredentialVerifier, tokens TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		p, ok := creds.Verify(req.Username, req.Password)
		if !ok {
			logger.FromContext(r.Context()).Info("login rejected", zap.String("username", req.Username))
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := tokens.Issue(p)
		if err != nil {
			logger.FromContext(r.Context()).Error("token issue failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{AccessToken: token})
	}
}
