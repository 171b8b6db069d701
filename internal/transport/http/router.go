package httptransport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	appseason "pocketpoker/internal/app/season"
	"pocketpoker/internal/config"
	"pocketpoker/internal/events"
)

type Deps struct {
	Config  config.ServerConfig
	Seasons *appseason.Service
	Store   Pinger
	Hub     *events.Hub
	// WS serves /api/season/ws. Nil disables the route.
	WS http.HandlerFunc
	// MCP serves /mcp. Nil disables the route.
	MCP http.Handler
}

func NewRouter(d Deps) *chi.Mux {
	seasonHandlers := NewSeasonHandlers(d.Seasons)
	adminHandlers := NewAdminHandlers(d.Store, d.Seasons)
	defaultSeasonID := d.Config.DefaultSeasonID

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(MetricsMiddleware)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	r.Handle("/metrics", promhttp.Handler())

	if d.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", d.MCP)
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", d.MCP)
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", d.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/ping", Ping())
		r.Post("/settle", SettleHandler())
		r.Post("/prize", PrizeHandler())

		r.Route("/season", func(r chi.Router) {
			r.Get("/", seasonHandlers.Get())
			r.Get("/export.csv", seasonHandlers.ExportCSV())
			r.Get("/events", EventsSSEHandler(d.Hub, defaultSeasonID))
			if d.WS != nil {
				r.Get("/ws", d.WS)
			}

			r.Group(func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Post("/games", seasonHandlers.AppendGame())
				r.Delete("/games/{gameId}", seasonHandlers.DeleteGame())
				r.Post("/draft", seasonHandlers.SaveDraft())
				r.Post("/lock", seasonHandlers.Lock())
				r.Post("/payments", seasonHandlers.MarkPayment())
				r.Post("/profiles", seasonHandlers.UpsertProfile())
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.Config.AdminAPIKey))
			r.Get("/admin/ledger", adminHandlers.Ledger())
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
