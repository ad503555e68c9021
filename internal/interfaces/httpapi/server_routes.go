package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerProjectionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/dates", handler.ListDates)
	mux.HandleFunc("GET /v1/projections", handler.ListSlateProjections)
	mux.HandleFunc("GET /v1/projections/season", handler.GetSeasonReport)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/projection", handler.GetPlayerProjection)
	mux.HandleFunc("GET /v1/players/history", handler.ListPlayerHistory)
	mux.HandleFunc("GET /v1/players/season-stats", handler.GetPlayerSeasonStats)
}
