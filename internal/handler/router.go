package handler

import (
	"time"

	"github.com/foodordering/system/internal/application/ordersaga"
	"github.com/foodordering/system/internal/infrastructure/config"
	"github.com/foodordering/system/internal/infrastructure/observability"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Pool        *pgxpool.Pool
	CreateOrder *ordersaga.CreateOrderHandler
	TrackOrder  *ordersaga.TrackOrderHandler
	Metrics     *observability.Metrics
	CORSConfig  config.CORSConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(MetricsMiddleware(deps.Metrics))

	healthH := NewHealthHandler(deps.Pool)
	orderH := NewOrderHandler(deps.CreateOrder, deps.TrackOrder)

	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders", orderH.Create)
		r.Get("/orders/{trackingID}", orderH.Track)
	})

	return r
}
