// Package api translates HTTP requests into certificate and flag service
// calls. Handlers read the authenticated learner from the request context,
// validate input and map service errors to status codes with sanitized
// messages.
package api
