package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	catalogmodel "github.com/PandeyAnukrati/Carti/internal/catalog"
	assistantHandler "github.com/PandeyAnukrati/Carti/internal/handler/assistant"
	catalogHandler "github.com/PandeyAnukrati/Carti/internal/handler/catalog"
	widgetHandler "github.com/PandeyAnukrati/Carti/internal/handler/widget"
	"github.com/PandeyAnukrati/Carti/internal/identity"
	middlewarePkg "github.com/PandeyAnukrati/Carti/internal/middleware"
	"github.com/PandeyAnukrati/Carti/internal/service/ai"
	"github.com/PandeyAnukrati/Carti/internal/session"
)

// NewRouter wires HTTP routes to core services. generator may be nil when no
// model is configured; verifier may be nil to treat every request as
// anonymous.
func NewRouter(cat *catalogmodel.Catalog, registry *session.Registry, generator ai.Generator, verifier identity.Verifier, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		catalogHandler.New(cat).RegisterRoutes(api)
		assistantHandler.New(generator, log).RegisterRoutes(api)
		widgetHandler.New(registry, verifier, log).RegisterRoutes(api)
	})

	return r
}
