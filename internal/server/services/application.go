// Package services contains the server-side business logic for job
// application intake.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/johnie/joina/internal/common"
	"github.com/johnie/joina/internal/logging"
	"github.com/johnie/joina/internal/mail"
	sc "github.com/johnie/joina/internal/server/config"
	"github.com/johnie/joina/internal/slugx"
	"github.com/johnie/joina/internal/storage"
)

const metadataFileName = "application.json"

// SubmissionFile is one validated upload ready to be persisted.
type SubmissionFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}

// Submission is a validated job application.
type Submission struct {
	Name  string
	Email string
	Phone string
	Files []SubmissionFile
}

// Receipt describes a stored application.
type Receipt struct {
	FolderID    string
	SubmittedAt time.Time
	FileCount   int
}

// FileUploadError reports which file failed to reach the object store.
// Earlier writes are not rolled back.
type FileUploadError struct {
	FileName string
	Err      error
}

func (e *FileUploadError) Error() string {
	return fmt.Sprintf("uploading %s: %v", e.FileName, e.Err)
}

func (e *FileUploadError) Unwrap() error { return e.Err }

// Is lets callers classify the failure with errors.Is.
func (e *FileUploadError) Is(target error) bool { return target == common.ErrorStorage }

// applicationMetadata is the JSON document stored alongside the files.
type applicationMetadata struct {
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	SubmittedAt string         `json:"submittedAt"`
	Files       []metadataFile `json:"files"`
}

type metadataFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// ApplicationService persists applications to the object store and sends
// the notification email.
type ApplicationService struct {
	store  storage.ObjectStore
	sender mail.Sender
	config *sc.Config
	log    logging.Logger

	// now is a seam for tests.
	now func() time.Time
}

func NewApplicationService(store storage.ObjectStore, sender mail.Sender, config *sc.Config, log logging.Logger) *ApplicationService {
	return &ApplicationService{
		store:  store,
		sender: sender,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Submit stores the application under a fresh folder and notifies the
// hiring inbox. The metadata document is written before any file so a
// partially uploaded folder is still attributable. Storage failures abort
// the submission; a failed email does not, the application is already
// persisted at that point.
func (s *ApplicationService) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	submittedAt := s.now().UTC()
	folderID := slugx.FolderID(sub.Email, submittedAt)

	meta := applicationMetadata{
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		SubmittedAt: submittedAt.Format(time.RFC3339),
		Files:       make([]metadataFile, 0, len(sub.Files)),
	}
	for _, f := range sub.Files {
		meta.Files = append(meta.Files, metadataFile{Name: f.Name, Type: f.ContentType, Size: f.Size})
	}

	body, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}

	jsonKey := folderID + "/" + metadataFileName
	if err := s.store.Put(ctx, jsonKey, "application/json", bytes.NewReader(body)); err != nil {
		return nil, fmt.Errorf("%w: storing metadata: %v", common.ErrorStorage, err)
	}

	for _, f := range sub.Files {
		key := folderID + "/" + f.Name
		if err := s.store.Put(ctx, key, f.ContentType, bytes.NewReader(f.Content)); err != nil {
			s.log.Error(ctx, "file upload failed", "file", f.Name, "folder", folderID, "error", err)
			return nil, &FileUploadError{FileName: f.Name, Err: err}
		}
	}

	s.notify(ctx, sub, folderID, submittedAt)

	return &Receipt{FolderID: folderID, SubmittedAt: submittedAt, FileCount: len(sub.Files)}, nil
}

// notify sends the notification email on a best-effort basis.
func (s *ApplicationService) notify(ctx context.Context, sub Submission, folderID string, submittedAt time.Time) {
	msg := mail.Compose(mail.ApplicationData{
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		FileCount:   len(sub.Files),
		SubmittedAt: submittedAt,
		FolderID:    folderID,
	}, mail.Addresses{
		From:     s.config.EmailFrom,
		FromName: s.config.EmailFromName,
		To:       s.config.EmailTo,
	})

	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error(ctx, "sending notification email failed", "error", err)
	}
}
