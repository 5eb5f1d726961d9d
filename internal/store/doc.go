// Package store defines the persistence interfaces for the records the
// certificate rules read: learners, courses, enrollments, certificates,
// identity verifications and feature flag states. Implementations live in
// internal/platform/postgres.
package store
