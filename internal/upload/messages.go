package upload

import "fmt"

// User-facing validation messages. The site is Swedish, so these are too.
const (
	MsgNoFiles           = "Minst en fil krävs"
	MsgUnsupportedType   = "Filtypen stöds inte"
	MsgSignatureMismatch = "Filens innehåll matchar inte dess filtyp"

	// AllowedTypesDescription names the accepted formats in error details.
	AllowedTypesDescription = "PDF, DOC och DOCX"
)

// MsgTooManyFiles returns the count-exceeded message for the given limit.
func MsgTooManyFiles(maxFiles int) string {
	suffix := ""
	if maxFiles > 1 {
		suffix = "er"
	}
	return fmt.Sprintf("Du kan maximalt ladda upp %d fil%s", maxFiles, suffix)
}

// MsgFileTooLarge returns the size-exceeded message with the display limit.
func MsgFileTooLarge(display string) string {
	return fmt.Sprintf("Filen får max vara %s", display)
}

// MsgUploadFailed names the file whose storage write failed.
func MsgUploadFailed(fileName string) string {
	return fmt.Sprintf("Misslyckades med att ladda upp filen %s.", fileName)
}
