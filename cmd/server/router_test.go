package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/certs-api/internal/api"
	apiMiddleware "github.com/phrazzld/certs-api/internal/api/middleware"
	"github.com/phrazzld/certs-api/internal/flags"
	"github.com/phrazzld/certs-api/internal/platform/logger"
	"github.com/phrazzld/certs-api/internal/service/auth"
)

type staticFlags struct{}

func (staticFlags) Snapshot(context.Context) (flags.Set, error) {
	return flags.NewSet(nil), nil
}

func (staticFlags) States(context.Context) ([]flags.State, error) {
	return nil, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	_, log := logger.NewBufferLogger()
	return newRouter(
		log,
		apiMiddleware.NewAuthMiddleware(auth.RequireTestJWTService(t)),
		api.NewCertificateHandler(nil, log),
		api.NewFlagHandler(staticFlags{}, log),
	)
}

func TestRouter(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		auth       bool
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "flags without token", method: http.MethodGet, path: "/api/flags", wantStatus: http.StatusUnauthorized},
		{name: "flags with token", method: http.MethodGet, path: "/api/flags", auth: true, wantStatus: http.StatusOK},
		{
			name:       "certificate without token",
			method:     http.MethodGet,
			path:       "/api/courses/course-v1:edX+DemoX+Demo_Course/certificate",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "generate without token",
			method:     http.MethodPost,
			path:       "/api/certificates/generate",
			wantStatus: http.StatusUnauthorized,
		},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.auth {
				req.Header.Set("Authorization", auth.GenerateAuthHeaderForTestingT(t, uuid.New()))
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestHealthBody(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "OK", w.Body.String())
}
