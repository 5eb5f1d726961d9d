package domain

import (
	"fmt"
	"time"
)

// DisplayBehavior controls when certificates are shown by default.
type DisplayBehavior string

// Known certificate display behaviors
const (
	DisplayEarlyWithInfo DisplayBehavior = "early_with_info"
	DisplayEarlyNoInfo   DisplayBehavior = "early_no_info"
	DisplayEnd           DisplayBehavior = "end"
)

// IsEarly reports whether the behavior releases certificates before the course ends.
func (b DisplayBehavior) IsEarly() bool {
	return b == DisplayEarlyWithInfo || b == DisplayEarlyNoInfo
}

// Course is the read-only course configuration the certificate rules consume.
type Course struct {
	Key                       CourseKey          `json:"id"`
	SelfPaced                 bool               `json:"self_paced"`
	CertificatesDisplay       DisplayBehavior    `json:"certificates_display_behavior"`
	CertificatesShowBeforeEnd bool               `json:"certificates_show_before_end"`
	CertificateAvailableDate  *time.Time         `json:"certificate_available_date,omitempty"`
	Start                     *time.Time         `json:"start,omitempty"`
	End                       *time.Time         `json:"end,omitempty"`
	GradeCutoffs              map[string]float64 `json:"grade_cutoffs"`
	CreatedAt                 time.Time          `json:"created_at"`
	UpdatedAt                 time.Time          `json:"updated_at"`
}

// HasEnded reports whether the course end date lies before now.
// A course without an end date never ends.
func (c *Course) HasEnded(now time.Time) bool {
	return c.End != nil && now.After(*c.End)
}

// Validate checks if the Course has valid data.
func (c *Course) Validate() error {
	if c.Key.IsZero() {
		return fmt.Errorf("%w: course key cannot be empty", ErrValidation)
	}
	for grade, cutoff := range c.GradeCutoffs {
		if cutoff < 0 || cutoff > 1 {
			return fmt.Errorf("%w: grade cutoff %q must be within [0, 1]", ErrValidation, grade)
		}
	}
	return nil
}
