package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/raterudder/ptxhub/pkg/log"
)

// authMiddleware requires a valid OIDC bearer token on every API request
// unless auth is bypassed.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("reqPath", r.URL.Path)))

		if s.bypassAuth {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Ctx(ctx).WarnContext(ctx, "no auth header found")
			writeJSONError(w, "missing auth token", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Ctx(ctx).WarnContext(ctx, "invalid auth header")
			writeJSONError(w, "invalid auth header", http.StatusBadRequest)
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		id, err := s.authenticateToken(ctx, token)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "auth token validation failed", slog.Any("error", err))
			writeJSONError(w, "invalid auth token", http.StatusUnauthorized)
			return
		}
		if !s.emailAllowed(id.Email) {
			log.Ctx(ctx).WarnContext(ctx, "email not allowed", slog.String("email", id.Email))
			writeJSONError(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("userID", id.Subject)))
		ctx = context.WithValue(ctx, emailContextKey, id.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) emailAllowed(email string) bool {
	if len(s.allowedEmails) == 0 {
		return true
	}
	for _, allowed := range s.allowedEmails {
		if subtle.ConstantTimeCompare([]byte(email), []byte(allowed)) == 1 {
			return true
		}
	}
	return false
}

// identity is what a verified ID token tells about its bearer.
type identity struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Subject       string `json:"-"`
	Expiry        time.Time
}

// oidcVerifier adapts an OIDC verifier to a tokenVerifier.
func oidcVerifier(v *oidc.IDTokenVerifier) tokenVerifier {
	return func(ctx context.Context, raw string) (identity, error) {
		idToken, err := v.Verify(ctx, raw)
		if err != nil {
			return identity{}, err
		}
		var id identity
		if err := idToken.Claims(&id); err != nil {
			return identity{}, fmt.Errorf("failed to decode claims: %w", err)
		}
		id.Subject = idToken.Subject
		id.Expiry = idToken.Expiry
		return id, nil
	}
}

// authenticateToken validates the token against each configured verifier
// and returns the identity from the first that accepts it.
func (s *Server) authenticateToken(ctx context.Context, token string) (identity, error) {
	var errs []error

	for providerName, verifier := range s.oidcVerifiers {
		id, err := verifier(ctx, token)
		if err == nil && !id.EmailVerified {
			err = errors.New("email not verified")
		}
		if err == nil {
			return id, nil
		}
		errs = append(errs, fmt.Errorf("%s verifier failed: %v", providerName, err))
	}

	if len(errs) > 1 {
		return identity{}, errors.Join(errs...)
	}
	if len(errs) == 1 {
		return identity{}, errs[0]
	}
	return identity{}, errors.New("no valid audiences configured or token invalid")
}
