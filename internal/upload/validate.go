// Package upload implements validation of untrusted file uploads: count,
// size, declared MIME type, and binary-signature verification. The same
// rules run in the API handler and in the client widget; the server-side
// signature check is the authoritative one.
package upload

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// FileRef is a lightweight reference to an already-accepted file, used for
// the running count when validating additional batches.
type FileRef struct {
	Name string
	Type string
	Size int64
}

// CandidateFile is one attachment under evaluation. DeclaredType is the
// client-supplied MIME type and is not trusted; the signature check reads
// Content directly.
type CandidateFile struct {
	Name         string
	DeclaredType string
	Size         int64
	Content      io.Reader
}

// Ref returns the FileRef for an accepted candidate.
func (c CandidateFile) Ref() FileRef {
	return FileRef{Name: c.Name, Type: c.DeclaredType, Size: c.Size}
}

// FileError attributes one validation message to one rejected file.
type FileError struct {
	File    FileRef
	Message string
}

// Result of validating a batch. ValidFiles preserves the relative order of
// the input; a file appears in at most one of the two slices.
type Result struct {
	ValidFiles []CandidateFile
	Errors     []FileError
}

// Constraints bound a validation run. Zero values disable the respective
// check (no Accept list means every declared type passes, and so on).
type Constraints struct {
	// Accept is a comma-separated list of extensions (".pdf"), wildcard
	// MIME prefixes ("image/*"), or exact MIME types.
	Accept string
	// MaxFiles caps current+new accepted files; exceeding it is terminal
	// for the batch.
	MaxFiles int
	// MaxSize caps a single file's size in bytes.
	MaxSize int64
	// MaxSizeDisplay is the human-readable size limit for error messages
	// ("5MB"). Derived from MaxSize when empty.
	MaxSizeDisplay string
	// SkipSignature disables the magic-number check. Only the client
	// widget sets this; the server always verifies signatures.
	SkipSignature bool
}

func (c Constraints) sizeDisplay() string {
	if c.MaxSizeDisplay != "" {
		return c.MaxSizeDisplay
	}
	return FormatSize(c.MaxSize)
}

// FormatSize renders a byte count the way the UI shows limits: whole
// megabytes as "5MB", smaller values in kB or bytes.
func FormatSize(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
	)
	switch {
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n >= kb:
		return fmt.Sprintf("%dkB", n/kb)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// Validate classifies newFiles against the constraints, given the files
// already accepted earlier (current). Checks run per file, in input order:
//
//  1. count (rejecting is terminal: remaining files are not evaluated)
//  2. size
//  3. declared type (extension or MIME against Accept)
//  4. binary signature (unless SkipSignature)
//
// The function is pure apart from reading leading bytes from each
// candidate's Content.
func Validate(current []FileRef, newFiles []CandidateFile, c Constraints) Result {
	res := Result{}

	for _, f := range newFiles {
		if c.MaxFiles > 0 && len(current)+len(res.ValidFiles) >= c.MaxFiles {
			res.Errors = append(res.Errors, FileError{File: f.Ref(), Message: MsgTooManyFiles(c.MaxFiles)})
			break
		}

		if c.MaxSize > 0 && f.Size > c.MaxSize {
			res.Errors = append(res.Errors, FileError{File: f.Ref(), Message: MsgFileTooLarge(c.sizeDisplay())})
			continue
		}

		if c.Accept != "" && !typeAccepted(f, c.Accept) {
			res.Errors = append(res.Errors, FileError{File: f.Ref(), Message: MsgUnsupportedType})
			continue
		}

		if !c.SkipSignature && !checkSignature(f.Content) {
			res.Errors = append(res.Errors, FileError{File: f.Ref(), Message: MsgSignatureMismatch})
			continue
		}

		res.ValidFiles = append(res.ValidFiles, f)
	}

	return res
}

// typeAccepted reports whether the candidate's extension or declared MIME
// type matches any entry of the accept list.
func typeAccepted(f CandidateFile, accept string) bool {
	ext := strings.ToLower(filepath.Ext(f.Name))
	mimeType := f.DeclaredType

	for _, entry := range strings.Split(accept, ",") {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
			continue
		case strings.HasPrefix(entry, "."):
			if strings.ToLower(entry) == ext {
				return true
			}
		case strings.HasSuffix(entry, "/*"):
			if strings.HasPrefix(mimeType, strings.TrimSuffix(entry, "/*")) {
				return true
			}
		default:
			if entry == mimeType {
				return true
			}
		}
	}
	return false
}
