package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/levenlabs/go-lflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raterudder/ptxhub/pkg/common"
	"github.com/raterudder/ptxhub/pkg/hub"
	"github.com/raterudder/ptxhub/pkg/log"
	"github.com/raterudder/ptxhub/pkg/lp"
	"github.com/raterudder/ptxhub/pkg/storage"
)

// maxBodyBytes bounds request bodies. A scenario with a full year of four
// profiles is about 1MB of JSON.
const maxBodyBytes = 8 << 20

type contextKey string

const emailContextKey contextKey = "email"

// tokenVerifier is a function that validates an OIDC ID Token.
type tokenVerifier func(ctx context.Context, rawIDToken string) (identity, error)

// Server handles the HTTP API: scenario and assumption management and
// optimization runs.
type Server struct {
	storage   storage.Database
	optimizer *hub.Optimizer

	listenAddr   string
	httpServer   *http.Server
	solveTimeout time.Duration

	allowedEmails []string
	oidcVerifiers map[string]tokenVerifier
	bypassAuth    bool
	serverName    string
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(s storage.Database, solver lp.Solver) *Server {
	srv := &Server{
		storage:    s,
		serverName: "ptxhub/" + common.Version(),
	}
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	oidcAudience := lflag.String("oidc-audience", "", "Google client ID to validate bearer ID tokens against, empty disables auth")
	allowedEmails := lflag.String("allowed-emails", "", "comma-delimited list of email addresses allowed to use the API (default: any verified token)")
	solveTimeout := lflag.Duration("solve-timeout", 30*time.Minute, "Maximum duration of a single optimization")

	lflag.Do(func() {
		srv.optimizer = hub.NewOptimizer(solver)
		srv.listenAddr = *listenAddr
		srv.solveTimeout = *solveTimeout
		if *allowedEmails != "" {
			srv.allowedEmails = strings.Split(*allowedEmails, ",")
			for i, email := range srv.allowedEmails {
				srv.allowedEmails[i] = strings.TrimSpace(email)
			}
		}
		if *oidcAudience == "" {
			srv.bypassAuth = true
			return
		}
		provider, err := oidc.NewProvider(context.Background(), "https://accounts.google.com")
		if err != nil {
			log.Ctx(context.Background()).Error("failed to initialize Google OIDC provider", slog.Any("error", err))
			os.Exit(1)
		}
		srv.oidcVerifiers = map[string]tokenVerifier{
			"google": oidcVerifier(provider.Verifier(&oidc.Config{ClientID: *oidcAudience})),
		}
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/optimize", s.handleOptimize)
	apiMux.HandleFunc("GET /api/scenarios", s.handleListScenarios)
	apiMux.HandleFunc("POST /api/scenarios", s.handleSaveScenario)
	apiMux.HandleFunc("GET /api/scenarios/{id}", s.handleGetScenario)
	apiMux.HandleFunc("GET /api/scenarios/{id}/runs", s.handleListRuns)
	apiMux.HandleFunc("POST /api/scenarios/{id}/runs", s.handleCreateRun)
	apiMux.HandleFunc("GET /api/runs/{scenarioID}/{runID}", s.handleGetRun)
	apiMux.HandleFunc("GET /api/assumptions/{name}", s.handleGetAssumptions)
	apiMux.HandleFunc("POST /api/assumptions/{name}", s.handleSetAssumptions)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.authMiddleware(apiMux))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.revisionMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(mux)))
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:        s.listenAddr,
		Handler:     s.setupHandler(),
		ReadTimeout: 60 * time.Second,
		// optimizations answer synchronously
		WriteTimeout: s.solveTimeout + time.Minute,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capturing server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Context canceled, shut down gracefully
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

// decodeBody decodes a size-limited JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}
