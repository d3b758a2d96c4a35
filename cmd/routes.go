package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("admin"))

	mux := pat.New()

	// Map locations
	mux.Get("/api/map/locations", adminAuthMiddleware.ThenFunc(app.mapHandler.GetMapLocations))
	mux.Get("/api/map/locations/nearby", adminAuthMiddleware.ThenFunc(app.mapHandler.GetNearbyLocations))

	// Live map
	mux.Get("/ws/map", http.HandlerFunc(app.MapWebSocketHandler))

	return mux
}
