package api

import (
	"net/http"

	_ "nbprates/docs"
	"nbprates/internal/rate/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swagger "github.com/swaggo/http-swagger"
	"github.com/ulule/limiter/v3"
)

type RouterOptions struct {
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	// Limiter is optional.
	Limiter  *limiter.Limiter
	Gatherer prometheus.Gatherer
}

func NewRouter(rateHandler *handler.Handler, opts RouterOptions) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(cors.Handler(corsOptions(opts.AllowedOrigins)))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(RateLimit(opts.Limiter))
		}

		r.Get("/rates", rateHandler.GetRates)
		r.Post("/rates", rateHandler.AddRate)
		r.Put("/rates", rateHandler.UpdateRate)
		r.Post("/rates/batch", rateHandler.AddRates)
		r.Put("/rates/batch", rateHandler.UpdateRates)
		r.Get("/rates/{code}", rateHandler.GetRate)
		r.Delete("/rates/{code}", rateHandler.DeleteRate)
		r.Get("/rates/{code}/chart", rateHandler.Chart)

		r.Get("/convert", rateHandler.Convert)
		r.Get("/codes", rateHandler.GetSupportedCodes)
		r.Get("/exchange-rates", rateHandler.GetExchangeRates)
		r.Post("/refresh", rateHandler.Refresh)
	})
	return router
}

func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 {
		// echo the caller's origin; "*" is not allowed together with credentials
		opts.AllowOriginFunc = func(_ *http.Request, _ string) bool { return true }
		return opts
	}
	opts.AllowedOrigins = origins
	return opts
}
