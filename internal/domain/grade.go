package domain

// GradeSummary is the part of a learner's course grade the pass check reads.
type GradeSummary struct {
	// Percent is the overall grade as a fraction in [0, 1].
	Percent float64 `json:"percent" validate:"gte=0,lte=1"`
}
