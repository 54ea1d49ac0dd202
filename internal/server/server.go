package server

import (
	"log"
	"net/http"
	"time"

	"github.com/sirsapient/slang-bang-react-sub000/internal/httpmw"
)

// NewHandler assembles the full HTTP surface: API routes, health
// check, websocket endpoint, and the middleware chain.
func NewHandler(app *App, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	mux := http.NewServeMux()
	rr := &RouteRegistry{}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "slangbang",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	RegisterAPIRoutes(mux, rr, app)

	return httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(logger),
		httpmw.WithAccessLog(logger),
	)
}
