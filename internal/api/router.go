package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"sdg7-dashboard/internal/api/handler"
	_ "sdg7-dashboard/internal/docs" // registers the swagger document
	"sdg7-dashboard/internal/metrics"
	"sdg7-dashboard/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.GET("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Catalog
	r.GET("/api/v1/countries", h.Countries)
	r.GET("/api/v1/indicators", h.Indicators)

	// Views
	r.GET("/api/v1/observations", h.Observations)
	r.GET("/api/v1/series", h.Series)
	r.GET("/api/v1/comparison", h.Comparison)
	r.GET("/api/v1/growth", h.Growth)
	r.GET("/api/v1/correlation", h.Correlation)
	r.GET("/api/v1/growth-correlation", h.GrowthCorrelation)
	r.GET("/api/v1/correlation-matrix", h.CorrelationMatrix)
	r.GET("/api/v1/quartiles", h.Quartiles)
	r.GET("/api/v1/distribution", h.Distribution)
	r.GET("/api/v1/map", h.Map)
	r.GET("/api/v1/difference", h.Difference)
	r.GET("/api/v1/countries/{country}/summary", h.CountrySummary)

	// Export jobs
	r.POST("/api/v1/exports", h.CreateExport)
	r.GET("/api/v1/exports", h.ListExports)
	r.GET("/api/v1/exports/{id}", h.GetExport)
	r.GET("/api/v1/exports/{id}/download", h.DownloadExport)
}
