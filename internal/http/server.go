package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"wahtabla/admin-gateway/internal/config"
	"wahtabla/admin-gateway/internal/session"
	"wahtabla/admin-gateway/internal/upstream"
)

type Server struct {
	cfg      config.Config
	upstream *upstream.Client
	cookies  *session.CookieStore
	resolver *session.Resolver
	cache    *session.IdentityCache
}

func NewServer(cfg config.Config, client *upstream.Client, redisClient *redis.Client) *Server {
	cookies := session.NewCookieStore(cfg.Production(), cfg.AccessCookieTTL, cfg.RefreshCookieTTL)
	return &Server{
		cfg:      cfg,
		upstream: client,
		cookies:  cookies,
		resolver: session.NewResolver(cookies, client, cfg.JWTSecret),
		cache:    session.NewIdentityCache(redisClient, cfg.IdentityCacheTTL),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.handleIndex)

	r.Group(func(r chi.Router) {
		r.Use(s.publicOnly)
		r.Get("/login", s.handleLoginPage)
		r.Get("/signup", s.handleSignupPage)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requirePageCookies)
		r.Get("/dashboard", s.handleDashboardPage)
		r.Get("/dashboard/*", s.handleDashboardPage)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/me", s.handleMe)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAPICookies)
			r.Get("/admins", s.handleListAdmins)
			r.Patch("/admins/role", s.handleUpdateAdminRole)
			r.Get("/students", s.handleListStudents)
			r.Get("/exam-attempts", s.handleListExamAttempts)
			r.Put("/exam-attempts", s.handleGradeExamAttempt)
		})
	})

	return r
}

// requirePageCookies is the cookie-presence fast path in front of page
// loads. It only checks that the pair exists; the per-request resolution
// behind each data endpoint remains the actual security boundary.
func (s *Server) requirePageCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cookies.Tokens(r) == nil {
			http.Redirect(w, r, "/login?redirect="+url.QueryEscape(r.URL.Path), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// publicOnly keeps authenticated admins away from the login/signup views.
func (s *Server) publicOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cookies.Tokens(r) != nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPICookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cookies.Tokens(r) == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.cookies.Tokens(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

type requestIDKey struct{}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}

// writeUpstreamError maps an upstream failure to the local surface. A
// StatusError already carries a human-readable, status-specific message;
// anything else is a transport failure and gets the generic wording.
func writeUpstreamError(w http.ResponseWriter, err error) {
	if status := upstream.StatusOf(err); status != 0 {
		writeError(w, status, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, "Network error occurred. Please check your connection and try again.")
}
