package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/borncrazy123/CamLink/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// The stream authenticates with a query parameter.
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/devices", func(r chi.Router) {
				r.With(s.require(auth.PermDeviceRead)).Get("/", s.handleListDevices)
				r.With(s.require(auth.PermDeviceConfigure)).Post("/", s.handleRegisterDevice)
				r.With(s.require(auth.PermDeviceRead)).Get("/status", s.handleListStatus)

				r.Route("/{id}", func(r chi.Router) {
					r.With(s.require(auth.PermDeviceOperate)).Post("/commands", s.handleIssueCommand)

					r.Group(func(r chi.Router) {
						r.Use(s.require(auth.PermDeviceRead))
						r.Get("/status", s.handleGetStatus)
						r.Get("/responses", s.handleListDeviceResponses)
						r.Get("/videos", s.handleGetLatestVideos)
						r.Get("/uploads", s.handleGetUploads)
						r.Get("/uploads/{file}", s.handleGetFileUpload)
					})
					r.With(s.require(auth.PermDeviceOperate)).Delete("/uploads/completed", s.handleClearCompletedUploads)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(s.require(auth.PermDeviceRead))
				r.Get("/responses/{requestID}", s.handleGetResponse)
				r.Get("/videos/{requestID}", s.handleGetVideos)
				r.Get("/tasks", s.handleListTasks)
				r.Get("/tasks/pending", s.handlePendingTasks)
				r.Get("/tasks/{requestID}", s.handleGetTask)
			})
			r.With(s.require(auth.PermDeviceOperate)).Delete("/responses/{requestID}", s.handleDeleteResponse)
		})
	})

	return r
}
