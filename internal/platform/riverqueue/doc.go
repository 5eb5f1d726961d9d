// Package riverqueue schedules certificate generation on River, a
// Postgres-backed durable job queue.
//
// Jobs carry the raw generation arguments. The worker runs one attempt per
// River attempt: a retryable outcome returns its reason so River reschedules
// the job after the configured delay, and a failed outcome cancels the job.
package riverqueue
