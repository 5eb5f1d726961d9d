package api

import "github.com/phrazzld/certs-api/internal/flags"

// GradeCheckRequest is the body of POST /api/courses/{courseKey}/grade-check.
type GradeCheckRequest struct {
	Percent *float64 `json:"percent" validate:"required,gte=0,lte=1"`
}

// GradeCheckResponse reports the pass check. Passed is null when the course
// configures no passing grade.
type GradeCheckResponse struct {
	Passed *bool `json:"passed"`
}

// GenerateResponse is the body of an accepted generation request.
type GenerateResponse struct {
	TaskID string `json:"task_id"`
}

// FlagResponse describes one registered flag.
type FlagResponse struct {
	Key         string `json:"key"`
	Namespace   string `json:"namespace"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

func flagStatesToResponse(states []flags.State) []FlagResponse {
	out := make([]FlagResponse, 0, len(states))
	for _, state := range states {
		out = append(out, FlagResponse{
			Key:         state.Flag.Key(),
			Namespace:   state.Flag.Namespace(),
			Name:        state.Flag.Name(),
			Description: state.Flag.Description(),
			Enabled:     state.Enabled,
		})
	}
	return out
}
