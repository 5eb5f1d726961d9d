package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/certs-api/internal/api"
	"github.com/phrazzld/certs-api/internal/api/middleware"
	"github.com/phrazzld/certs-api/internal/certificates"
	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/flags"
	"github.com/phrazzld/certs-api/internal/learnerprofile"
	"github.com/phrazzld/certs-api/internal/platform/logger"
	"github.com/phrazzld/certs-api/internal/service"
	"github.com/phrazzld/certs-api/internal/service/auth"
	"github.com/phrazzld/certs-api/internal/store"
	"github.com/phrazzld/certs-api/internal/task"
)

const demoCourse = "course-v1:edX+DemoX+Demo_Course"

type fakeCertificateService struct {
	visibilityFn   func(ctx context.Context, userID uuid.UUID, key domain.CourseKey) (*service.VisibilityView, error)
	coursePassedFn func(ctx context.Context, key domain.CourseKey, percent float64) (bool, bool, error)
	generationFn   func(ctx context.Context, kwargs map[string]any) (string, error)
}

func (f *fakeCertificateService) Visibility(
	ctx context.Context,
	userID uuid.UUID,
	key domain.CourseKey,
) (*service.VisibilityView, error) {
	return f.visibilityFn(ctx, userID, key)
}

func (f *fakeCertificateService) CoursePassed(
	ctx context.Context,
	key domain.CourseKey,
	percent float64,
) (bool, bool, error) {
	return f.coursePassedFn(ctx, key, percent)
}

func (f *fakeCertificateService) RequestGeneration(ctx context.Context, kwargs map[string]any) (string, error) {
	return f.generationFn(ctx, kwargs)
}

type fakeFlagService struct {
	snapshot flags.Set
	err      error
}

func (f *fakeFlagService) Snapshot(ctx context.Context) (flags.Set, error) {
	return f.snapshot, f.err
}

func (f *fakeFlagService) States(ctx context.Context) ([]flags.State, error) {
	if f.err != nil {
		return nil, f.err
	}
	return flags.Evaluate(f.snapshot, flags.All()), nil
}

func newTestRouter(t *testing.T, certs api.CertificateService, flagService api.FlagService) http.Handler {
	t.Helper()
	_, log := logger.NewBufferLogger()

	certHandler := api.NewCertificateHandler(certs, log)
	flagHandler := api.NewFlagHandler(flagService, log)
	authMiddleware := middleware.NewAuthMiddleware(auth.RequireTestJWTService(t))

	r := chi.NewRouter()
	r.Use(middleware.Trace(log))
	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/courses/{courseKey}/certificate", certHandler.GetCertificate)
		r.Post("/courses/{courseKey}/grade-check", certHandler.CheckGrade)
		r.Post("/certificates/generate", certHandler.GenerateCertificate)
		r.Get("/flags", flagHandler.ListFlags)
		r.Get("/learner-profile/settings", flagHandler.LearnerProfileSettings)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	r.Header.Set("Authorization", auth.GenerateAuthHeaderForTestingT(t, userID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestGetCertificate(t *testing.T) {
	userID := uuid.New()
	displayDate := time.Date(2017, 2, 1, 0, 0, 0, 0, time.UTC)

	var gotUser uuid.UUID
	var gotKey domain.CourseKey
	certs := &fakeCertificateService{
		visibilityFn: func(ctx context.Context, id uuid.UUID, key domain.CourseKey) (*service.VisibilityView, error) {
			gotUser, gotKey = id, key
			if key.Course == "Missing" {
				return nil, store.ErrCourseNotFound
			}
			return &service.VisibilityView{
				CourseKey:                    key.String(),
				CertificatesViewable:         true,
				CanShowViewCertificateButton: true,
				CertificateStatus:            string(domain.CertificateDownloadable),
				DisplayDate:                  &displayDate,
			}, nil
		},
	}
	router := newTestRouter(t, certs, &fakeFlagService{})

	t.Run("returns visibility for caller", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/courses/"+demoCourse+"/certificate", "", userID)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, userID, gotUser)
		assert.Equal(t, demoCourse, gotKey.String())

		var view map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Equal(t, demoCourse, view["course_key"])
		assert.Equal(t, true, view["can_show_view_certificate_button"])
		assert.Equal(t, "downloadable", view["certificate_status"])
		assert.Equal(t, "2017-02-01T00:00:00Z", view["display_date"])
	})

	t.Run("legacy key with encoded slashes", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/courses/edX%2FDemoX%2FDemo/certificate", "", userID)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "edX/DemoX/Demo", gotKey.String())
	})

	t.Run("malformed key", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/courses/not-a-key/certificate", "", userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Malformed course key")
	})

	t.Run("unknown course", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/courses/course-v1:edX+Missing+2020/certificate", "", userID)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Course not found")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/courses/"+demoCourse+"/certificate", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCheckGrade(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		body       string
		passed     bool
		determined bool
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "passed",
			body:       `{"percent": 0.8}`,
			passed:     true,
			determined: true,
			wantStatus: http.StatusOK,
			wantBody:   `{"passed":true}`,
		},
		{
			name:       "failed",
			body:       `{"percent": 0.1}`,
			determined: true,
			wantStatus: http.StatusOK,
			wantBody:   `{"passed":false}`,
		},
		{
			name:       "undetermined",
			body:       `{"percent": 0.9}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"passed":null}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			certs := &fakeCertificateService{
				coursePassedFn: func(ctx context.Context, key domain.CourseKey, percent float64) (bool, bool, error) {
					return tc.passed, tc.determined, tc.err
				},
			}
			router := newTestRouter(t, certs, &fakeFlagService{})

			w := doRequest(t, router, http.MethodPost, "/api/courses/"+demoCourse+"/grade-check", tc.body, userID)
			require.Equal(t, tc.wantStatus, w.Code)
			assert.JSONEq(t, tc.wantBody, w.Body.String())
		})
	}

	t.Run("invalid bodies", func(t *testing.T) {
		certs := &fakeCertificateService{
			coursePassedFn: func(ctx context.Context, key domain.CourseKey, percent float64) (bool, bool, error) {
				t.Fatal("service must not be called")
				return false, false, nil
			},
		}
		router := newTestRouter(t, certs, &fakeFlagService{})

		for _, body := range []string{`{}`, `{"percent": 1.5}`, `{"percent": -1}`, `{"percent":`} {
			w := doRequest(t, router, http.MethodPost, "/api/courses/"+demoCourse+"/grade-check", body, userID)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})
}

func TestGenerateCertificate(t *testing.T) {
	userID := uuid.New()

	t.Run("accepted", func(t *testing.T) {
		var got map[string]any
		certs := &fakeCertificateService{
			generationFn: func(ctx context.Context, kwargs map[string]any) (string, error) {
				got = kwargs
				return "task-42", nil
			},
		}
		router := newTestRouter(t, certs, &fakeFlagService{})

		body := `{"student": "` + userID.String() + `", "course_key": "` + demoCourse + `", "forced": true}`
		w := doRequest(t, router, http.MethodPost, "/api/certificates/generate", body, userID)

		require.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"task_id":"task-42"}`, w.Body.String())
		assert.Equal(t, demoCourse, got["course_key"])
		assert.Equal(t, true, got["forced"])
	})

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing argument",
			err:        &certificates.MissingArgumentError{Name: certificates.ArgCourseKey},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing required argument: course_key",
		},
		{
			name:       "queue full",
			err:        task.ErrQueueFull,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "temporarily unavailable",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Failed to queue certificate generation",
		},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			certs := &fakeCertificateService{
				generationFn: func(ctx context.Context, kwargs map[string]any) (string, error) {
					return "", tc.err
				},
			}
			router := newTestRouter(t, certs, &fakeFlagService{})

			body := `{"student": "` + userID.String() + `"}`
			w := doRequest(t, router, http.MethodPost, "/api/certificates/generate", body, userID)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}

	t.Run("empty body", func(t *testing.T) {
		router := newTestRouter(t, &fakeCertificateService{}, &fakeFlagService{})
		w := doRequest(t, router, http.MethodPost, "/api/certificates/generate", "", userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	studentCases := []struct {
		name       string
		student    string
		wantStatus int
	}{
		{name: "another learner", student: `"` + uuid.NewString() + `"`, wantStatus: http.StatusForbidden},
		{name: "non uuid student", student: `"x"`, wantStatus: http.StatusBadRequest},
		{name: "numeric student", student: `12345`, wantStatus: http.StatusBadRequest},
	}
	for _, tc := range studentCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			certs := &fakeCertificateService{
				generationFn: func(ctx context.Context, kwargs map[string]any) (string, error) {
					called = true
					return "task-1", nil
				},
			}
			router := newTestRouter(t, certs, &fakeFlagService{})

			body := `{"student": ` + tc.student + `, "course_key": "` + demoCourse + `"}`
			w := doRequest(t, router, http.MethodPost, "/api/certificates/generate", body, userID)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.False(t, called, "generation must not be requested")
		})
	}
}

func TestFlagEndpoints(t *testing.T) {
	userID := uuid.New()
	snapshot := flags.NewSet(nil).
		With(certificates.AutoCertificateGeneration, true).
		With(learnerprofile.ShowAchievements, true)

	t.Run("list flags", func(t *testing.T) {
		router := newTestRouter(t, &fakeCertificateService{}, &fakeFlagService{snapshot: snapshot})

		w := doRequest(t, router, http.MethodGet, "/api/flags", "", userID)
		require.Equal(t, http.StatusOK, w.Code)

		var got []api.FlagResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, len(flags.All()))

		enabled := make(map[string]bool)
		for _, flag := range got {
			enabled[flag.Key] = flag.Enabled
		}
		assert.True(t, enabled["certificates.auto_certificate_generation"])
		assert.True(t, enabled["learner_profile.show_achievements"])
		assert.False(t, enabled["learner_profile.boost_visibility"])
	})

	t.Run("learner profile settings", func(t *testing.T) {
		router := newTestRouter(t, &fakeCertificateService{}, &fakeFlagService{snapshot: snapshot})

		w := doRequest(t, router, http.MethodGet, "/api/learner-profile/settings", "", userID)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"show_achievements":true,"boost_visibility":false}`, w.Body.String())
	})

	t.Run("flag store failure", func(t *testing.T) {
		router := newTestRouter(t, &fakeCertificateService{}, &fakeFlagService{err: errors.New("db down")})

		w := doRequest(t, router, http.MethodGet, "/api/flags", "", userID)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})
}
