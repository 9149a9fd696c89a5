package upload

import "strings"

// Defaults for job-application uploads. Overridable via server config.
const (
	DefaultMaxFiles       = 5
	DefaultMaxSize        = 5 << 20 // 5 MB
	DefaultMaxSizeDisplay = "5MB"

	// AllowedExtensions is the accept list offered to file pickers.
	AllowedExtensions = ".pdf,.doc,.docx"
)

// AllowedMIMETypes are the declared types the intake accepts.
var AllowedMIMETypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// DefaultAccept returns the accept list covering the allowed MIME types
// and file-picker extensions.
func DefaultAccept() string {
	return strings.Join(AllowedMIMETypes, ",") + "," + AllowedExtensions
}

// DefaultConstraints returns the production validation policy: max 5 files,
// 5 MB each, PDF/DOC/DOCX only, signatures verified.
func DefaultConstraints() Constraints {
	return Constraints{
		Accept:         DefaultAccept(),
		MaxFiles:       DefaultMaxFiles,
		MaxSize:        DefaultMaxSize,
		MaxSizeDisplay: DefaultMaxSizeDisplay,
	}
}
