// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Every key can be set through a CERTS_ prefixed environment variable with
// dots replaced by underscores, e.g. CERTS_SERVER_PORT or
// CERTS_FLAGS_CERTIFICATES_AUTO_CERTIFICATE_GENERATION.
package config
