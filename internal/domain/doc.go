// Package domain contains the core records the certificate policy reads:
// courses and their keys, enrollments, certificates, learners and identity
// verifications. It has no knowledge of storage or delivery.
package domain
