package transport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes holds the handlers mounted by NewServer. Metrics may be nil.
type Routes struct {
	MCP     http.Handler
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewServer creates the HTTP router: the MCP endpoint, a health check and,
// when configured, the Prometheus scrape endpoint.
func NewServer(routes Routes) *chi.Mux {
	logger := routes.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	r.Handle("/mcp", routes.MCP)
	r.Get("/health", handleHealth)
	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
