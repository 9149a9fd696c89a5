package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/johnie/joina/internal/common"
	"github.com/johnie/joina/internal/jsonapi"
)

const uploadPath = "/api/upload"

// Attachment is one file to submit.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Application is a filled-in form ready for submission. Resume and
// CoverLetter are both required.
type Application struct {
	Name        string
	Email       string
	Phone       string
	Resume      *Attachment
	CoverLetter *Attachment
}

// SubmissionReceipt is the parsed success response.
type SubmissionReceipt struct {
	ID          string
	SubmittedAt string
	FileCount   int
	Message     string
}

// SubmissionError carries the server's user-facing error details.
type SubmissionError struct {
	StatusCode int
	Details    []string
}

func (e *SubmissionError) Error() string {
	if len(e.Details) > 0 {
		return e.Details[0]
	}
	return fmt.Sprintf("%s (HTTP %d)", MsgSubmitFailed, e.StatusCode)
}

// Is classifies the rejection by status code so callers can branch with
// errors.Is on the shared sentinels.
func (e *SubmissionError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return target == common.ErrorValidation
	case http.StatusTooManyRequests:
		return target == common.ErrorRateLimited
	case http.StatusServiceUnavailable:
		return target == common.ErrorApplicationsClosed
	default:
		return target == common.ErrorInternal
	}
}

// Client submits applications to the intake API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SubmitApplication validates the form locally, posts it as
// multipart/form-data and parses the JSON:API response. Server-side
// rejections come back as *SubmissionError.
func (c *Client) SubmitApplication(ctx context.Context, app Application) (*SubmissionReceipt, error) {
	if errs := ValidateForm(app.Name, app.Email, app.Phone); len(errs) > 0 {
		return nil, &errs[0]
	}
	if app.Resume == nil {
		return nil, errors.New(MsgResumeMissing)
	}
	if app.CoverLetter == nil {
		return nil, errors.New(MsgCoverMissing)
	}

	body, contentType, err := encodeForm(app)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MsgSubmitFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, parseError(resp.StatusCode, raw)
	}

	return parseReceipt(raw)
}

func encodeForm(app Application) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{"name": app.Name, "email": app.Email, "phone": app.Phone}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	for _, a := range []*Attachment{app.Resume, app.CoverLetter} {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, a.Name))
		hdr.Set("Content-Type", a.ContentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(a.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func parseError(status int, raw []byte) error {
	var doc jsonapi.ErrorDocument
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc.Errors) == 0 {
		return &SubmissionError{StatusCode: status}
	}
	details := make([]string, 0, len(doc.Errors))
	for _, e := range doc.Errors {
		details = append(details, e.Detail)
	}
	return &SubmissionError{StatusCode: status, Details: details}
}

func parseReceipt(raw []byte) (*SubmissionReceipt, error) {
	var doc struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				SubmittedAt string `json:"submittedAt"`
				FileCount   int    `json:"fileCount"`
			} `json:"attributes"`
		} `json:"data"`
		Meta struct {
			Message string `json:"message"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &SubmissionReceipt{
		ID:          doc.Data.ID,
		SubmittedAt: doc.Data.Attributes.SubmittedAt,
		FileCount:   doc.Data.Attributes.FileCount,
		Message:     doc.Meta.Message,
	}, nil
}
