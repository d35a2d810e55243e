package report

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
)

// Server handles HTTP requests for the report wizard and viewer.
type Server struct {
	wizard    *Wizard
	store     *Store
	router    *Router
	basicAuth BasicAuth
	mux       *http.ServeMux
}

// BasicAuth holds basic authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with a default mux.
func NewServer(wizard *Wizard, store *Store, router *Router, basicAuth BasicAuth) *Server {
	return NewServerWithMux(wizard, store, router, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing.
func NewServerWithMux(wizard *Wizard, store *Store, router *Router, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		wizard:    wizard,
		store:     store,
		router:    router,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials.
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers to responses.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// requireAuth middleware.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="AmanahReports"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all routes on the server's mux.
// Routes are registered from most specific to least specific.
func (s *Server) registerRoutes() {
	// Static assets
	s.mux.HandleFunc("GET /static/app.css", s.requireAuth(s.handleStaticCSS))
	s.mux.HandleFunc("GET /static/app.js", s.requireAuth(s.handleStaticJS))

	// Application state and navigation
	s.mux.HandleFunc("GET /api/state", s.requireAuth(s.handleState))
	s.mux.HandleFunc("POST /api/view", s.requireAuth(s.handleNavigate))
	s.mux.HandleFunc("GET /api/languages", s.requireAuth(s.handleLanguages))
	s.mux.HandleFunc("GET /api/currencies", s.requireAuth(s.handleCurrencies))
	s.mux.HandleFunc("GET /api/stats", s.requireAuth(s.handleStats))

	// Wizard operations
	s.mux.HandleFunc("POST /api/wizard/receipts", s.requireAuth(s.handleAddReceipt))
	s.mux.HandleFunc("POST /api/wizard/photos", s.requireAuth(s.handleAddPhoto))
	s.mux.HandleFunc("POST /api/wizard/voice", s.requireAuth(s.handleVoiceNote))
	s.mux.HandleFunc("POST /api/wizard/location", s.requireAuth(s.handleLocation))
	s.mux.HandleFunc("PUT /api/wizard/details", s.requireAuth(s.handleDetails))
	s.mux.HandleFunc("POST /api/wizard/advance", s.requireAuth(s.handleAdvance))
	s.mux.HandleFunc("POST /api/wizard/back", s.requireAuth(s.handleBack))
	s.mux.HandleFunc("POST /api/wizard/reset", s.requireAuth(s.handleReset))
	s.mux.HandleFunc("POST /api/wizard/finalize", s.requireAuth(s.handleFinalize))

	// Reports (most specific paths first)
	s.mux.HandleFunc("POST /api/reports/{id}/translate", s.requireAuth(s.handleTranslate))
	s.mux.HandleFunc("POST /api/reports/{id}/publish", s.requireAuth(s.handlePublish))
	s.mux.HandleFunc("GET /api/reports/{id}", s.requireAuth(s.handleGetReport))
	s.mux.HandleFunc("GET /api/reports", s.requireAuth(s.handleListReports))

	// SPA shell (register last as it's the catch-all)
	s.mux.HandleFunc("GET /index.html", s.requireAuth(s.handleIndex))
	s.mux.HandleFunc("GET /", s.requireAuth(s.handleIndex))
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
