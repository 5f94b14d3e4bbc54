package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	verifier := func(ctx context.Context, token string) (identity, error) {
		switch token {
		case "valid-token":
			return identity{
				Email:         "planner@example.com",
				EmailVerified: true,
				Subject:       "planner",
				Expiry:        time.Now().Add(time.Hour),
			}, nil
		case "other-token":
			return identity{
				Email:         "other@example.com",
				EmailVerified: true,
				Subject:       "other",
			}, nil
		case "unverified-token":
			return identity{Email: "planner@example.com", Subject: "planner"}, nil
		}
		return identity{}, assert.AnError
	}

	server := &Server{
		allowedEmails: []string{"planner@example.com"},
		oidcVerifiers: map[string]tokenVerifier{"google": verifier},
	}

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if email, ok := r.Context().Value(emailContextKey).(string); ok {
			w.Header().Set("X-Email", email)
		}
		w.WriteHeader(http.StatusOK)
	})

	call := func(srv *Server, authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/api/scenarios", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()
		srv.authMiddleware(testHandler).ServeHTTP(w, req)
		return w
	}

	t.Run("Missing Header", func(t *testing.T) {
		w := call(server, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "missing auth token")
	})

	t.Run("Not A Bearer Token", func(t *testing.T) {
		w := call(server, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		w := call(server, "Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid auth token")
	})

	t.Run("Unverified Email", func(t *testing.T) {
		w := call(server, "Bearer unverified-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Email Not Allowed", func(t *testing.T) {
		w := call(server, "Bearer other-token")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		w := call(server, "Bearer valid-token")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "planner@example.com", w.Header().Get("X-Email"))
	})

	t.Run("Any Email When Unrestricted", func(t *testing.T) {
		open := &Server{oidcVerifiers: server.oidcVerifiers}
		w := call(open, "Bearer other-token")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "other@example.com", w.Header().Get("X-Email"))
	})

	t.Run("Bypass", func(t *testing.T) {
		w := call(&Server{bypassAuth: true}, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Email"))
	})

	t.Run("Second Verifier Accepts", func(t *testing.T) {
		srv := &Server{
			oidcVerifiers: map[string]tokenVerifier{
				"first": func(ctx context.Context, token string) (identity, error) {
					return identity{}, assert.AnError
				},
				"second": verifier,
			},
		}
		w := call(srv, "Bearer valid-token")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("No Verifiers", func(t *testing.T) {
		w := call(&Server{}, "Bearer valid-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestEmailAllowed(t *testing.T) {
	srv := &Server{allowedEmails: []string{"a@example.com", "b@example.com"}}
	assert.True(t, srv.emailAllowed("a@example.com"))
	assert.True(t, srv.emailAllowed("b@example.com"))
	assert.False(t, srv.emailAllowed("c@example.com"))
	assert.False(t, srv.emailAllowed(""))
	assert.True(t, (&Server{}).emailAllowed("anyone@example.com"))
}
