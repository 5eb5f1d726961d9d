package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/certs-api/internal/api"
	apiMiddleware "github.com/phrazzld/certs-api/internal/api/middleware"
)

// setupRouter registers every route on a chi router.
func (app *application) setupRouter() http.Handler {
	return newRouter(
		app.logger,
		apiMiddleware.NewAuthMiddleware(app.jwtService),
		api.NewCertificateHandler(app.certificateService, app.logger),
		api.NewFlagHandler(app.flagService, app.logger),
	)
}

func newRouter(
	logger *slog.Logger,
	authMiddleware *apiMiddleware.AuthMiddleware,
	certHandler *api.CertificateHandler,
	flagHandler *api.FlagHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/courses/{"+api.CourseKeyParam+"}/certificate", certHandler.GetCertificate)
		r.Post("/courses/{"+api.CourseKeyParam+"}/grade-check", certHandler.CheckGrade)
		r.Post("/certificates/generate", certHandler.GenerateCertificate)

		r.Get("/flags", flagHandler.ListFlags)
		r.Get("/learner-profile/settings", flagHandler.LearnerProfileSettings)
	})

	return r
}
