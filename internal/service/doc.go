// Package service contains the application use cases of the certificate
// service. It assembles per-request feature flag snapshots, loads the records
// the certificate rules read, evaluates them with certificates.Policy and
// queues certificate generation.
//
// Services receive their stores and collaborators through constructor
// injection and depend only on the interfaces in internal/store, never on a
// specific database implementation.
package service
