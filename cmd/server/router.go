package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/taskboard-api/internal/api"
	apimiddleware "github.com/phrazzld/taskboard-api/internal/api/middleware"
)

// routerDeps bundles everything setupRouter needs to assemble the HTTP
// surface.
type routerDeps struct {
	authMiddleware *apimiddleware.AuthMiddleware
	ruleHandler    *api.RuleHandler
	taskHandler    *api.TaskHandler
}

// setupRouter builds the chi router: common middleware, the health and
// metrics endpoints, and the authenticated API routes.
func setupRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.authMiddleware.Authenticate)

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Post("/automations", deps.ruleHandler.Create)
			r.Get("/automations", deps.ruleHandler.List)

			r.Post("/tasks", deps.taskHandler.Create)
		})

		r.Route("/automations/{id}", func(r chi.Router) {
			r.Get("/", deps.ruleHandler.Get)
			r.Put("/", deps.ruleHandler.Update)
			r.Delete("/", deps.ruleHandler.Delete)
		})

		r.Route("/tasks/{id}", func(r chi.Router) {
			r.Get("/", deps.taskHandler.Get)
			r.Put("/status", deps.taskHandler.UpdateStatus)
			r.Put("/assignee", deps.taskHandler.Assign)
		})
	})

	return r
}
