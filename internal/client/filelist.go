package client

import (
	"github.com/johnie/joina/internal/upload"
)

// RejectFunc is notified for each file the list refuses, with the
// user-facing message.
type RejectFunc func(file upload.FileRef, message string)

// FileList is the attachment list behind the upload widget. Add validates
// incoming files against the running total and appends only the accepted
// ones; rejected files are reported through the callback and never enter
// the list.
type FileList struct {
	constraints upload.Constraints
	onReject    RejectFunc
	files       []upload.CandidateFile
}

// NewFileList creates a list enforcing the given constraints. onReject may
// be nil.
func NewFileList(c upload.Constraints, onReject RejectFunc) *FileList {
	return &FileList{constraints: c, onReject: onReject}
}

// Add validates newFiles given everything already accepted and appends the
// valid ones. It returns the number of files accepted in this batch.
func (l *FileList) Add(newFiles ...upload.CandidateFile) int {
	current := make([]upload.FileRef, 0, len(l.files))
	for _, f := range l.files {
		current = append(current, f.Ref())
	}

	res := upload.Validate(current, newFiles, l.constraints)

	for _, fe := range res.Errors {
		if l.onReject != nil {
			l.onReject(fe.File, fe.Message)
		}
	}

	l.files = append(l.files, res.ValidFiles...)
	return len(res.ValidFiles)
}

// Remove drops the first file with the given name. Removing frees room for
// a subsequent Add.
func (l *FileList) Remove(name string) bool {
	for i, f := range l.files {
		if f.Name == name {
			l.files = append(l.files[:i], l.files[i+1:]...)
			return true
		}
	}
	return false
}

// Files returns the accepted files in insertion order.
func (l *FileList) Files() []upload.CandidateFile {
	return l.files
}

// Len reports the number of accepted files.
func (l *FileList) Len() int {
	return len(l.files)
}

// Clear empties the list.
func (l *FileList) Clear() {
	l.files = nil
}
