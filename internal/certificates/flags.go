package certificates

import "github.com/phrazzld/certs-api/internal/flags"

// Namespace holds the certificate feature flags.
var Namespace = flags.NewNamespace("certificates")

// AutoCertificateGeneration enables automatic certificate generation for
// instructor-paced courses and gates certificates behind course visibility.
var AutoCertificateGeneration = Namespace.Flag("auto_certificate_generation",
	"Generate certificates automatically and release them on the course available date.")
