package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const courseKeyPrefix = "course-v1:"

var (
	keyPartRegex = regexp.MustCompile(`^[\w\-~.]+$`)
	runPartRegex = regexp.MustCompile(`^[\w\-~.:]+$`)
)

// CourseKey identifies a course run.
type CourseKey struct {
	Org    string
	Course string
	Run    string

	legacy bool
}

// ParseCourseKey parses "course-v1:ORG+COURSE+RUN" or the legacy
// "ORG/COURSE/RUN" form. Any other input returns ErrMalformedCourseKey.
func ParseCourseKey(s string) (CourseKey, error) {
	var parts []string
	legacy := false

	switch {
	case strings.HasPrefix(s, courseKeyPrefix):
		parts = strings.Split(strings.TrimPrefix(s, courseKeyPrefix), "+")
	case strings.Count(s, "/") == 2:
		parts = strings.Split(s, "/")
		legacy = true
	default:
		return CourseKey{}, fmt.Errorf("%w: %q", ErrMalformedCourseKey, s)
	}

	if len(parts) != 3 ||
		!keyPartRegex.MatchString(parts[0]) ||
		!keyPartRegex.MatchString(parts[1]) ||
		!runPartRegex.MatchString(parts[2]) {
		return CourseKey{}, fmt.Errorf("%w: %q", ErrMalformedCourseKey, s)
	}

	return CourseKey{Org: parts[0], Course: parts[1], Run: parts[2], legacy: legacy}, nil
}

// MustParseCourseKey is ParseCourseKey for literals known to be valid.
func MustParseCourseKey(s string) CourseKey {
	key, err := ParseCourseKey(s)
	if err != nil {
		// ALLOW-PANIC: only used with compile-time literals
		panic(err)
	}
	return key
}

// String renders the key in the form it was parsed from.
func (k CourseKey) String() string {
	if k.IsZero() {
		return ""
	}
	if k.legacy {
		return k.Org + "/" + k.Course + "/" + k.Run
	}
	return courseKeyPrefix + k.Org + "+" + k.Course + "+" + k.Run
}

// IsZero reports whether the key is unset.
func (k CourseKey) IsZero() bool {
	return k.Org == "" && k.Course == "" && k.Run == ""
}

// MarshalText implements encoding.TextMarshaler.
func (k CourseKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CourseKey) UnmarshalText(text []byte) error {
	parsed, err := ParseCourseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
