// Package task manages background job queuing, processing, and lifecycle.
// Tasks report an explicit Result; the runner persists every transition,
// reschedules retryable results after a delay up to a bounded number of
// retries, and rebuilds unfinished tasks from the store after a restart.
package task
