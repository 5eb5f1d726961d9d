package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/certs-api/internal/api/shared"
	"github.com/phrazzld/certs-api/internal/flags"
	"github.com/phrazzld/certs-api/internal/learnerprofile"
	"github.com/phrazzld/certs-api/internal/platform/logger"
)

// FlagService is the part of service.FlagService the flag handler uses.
type FlagService interface {
	Snapshot(ctx context.Context) (flags.Set, error)
	States(ctx context.Context) ([]flags.State, error)
}

// FlagHandler serves the feature flag endpoints.
type FlagHandler struct {
	flags  FlagService
	logger *slog.Logger
}

// NewFlagHandler creates a FlagHandler.
func NewFlagHandler(flagService FlagService, logger *slog.Logger) *FlagHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FlagHandler")
	}
	return &FlagHandler{
		flags:  flagService,
		logger: logger.With(slog.String("component", "flag_handler")),
	}
}

// ListFlags handles GET /api/flags.
func (h *FlagHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	states, err := h.flags.States(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load feature flags")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("listed feature flags", slog.Int("count", len(states)))
	shared.RespondWithJSON(w, r, http.StatusOK, flagStatesToResponse(states))
}

// LearnerProfileSettings handles GET /api/learner-profile/settings.
func (h *FlagHandler) LearnerProfileSettings(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.flags.Snapshot(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load learner profile settings")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, learnerprofile.SettingsFrom(snapshot))
}
