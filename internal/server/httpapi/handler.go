// Package httpapi exposes the public HTTP surface: the upload endpoint,
// health check, crawler artifacts and Prometheus metrics.
package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/johnie/joina/internal/formx"
	"github.com/johnie/joina/internal/jsonapi"
	"github.com/johnie/joina/internal/logging"
	"github.com/johnie/joina/internal/ratelimit"
	"github.com/johnie/joina/internal/seo"
	sc "github.com/johnie/joina/internal/server/config"
	"github.com/johnie/joina/internal/server/services"
	"github.com/johnie/joina/internal/upload"
)

// Swedish messages owned by the HTTP layer.
const (
	MsgNameRequired    = "Namn krävs"
	MsgEmailRequired   = "Giltig e-postadress krävs"
	MsgPhoneRequired   = "Telefonnummer krävs"
	MsgPhoneInvalid    = "Ogiltigt telefonnummerformat"
	MsgRequestTooLarge = "Förfrågan är för stor"
	MsgInternalError   = "Internt serverfel"

	MsgApplicationsPaused = "Ansökningar är pausade just nu. Försök igen senare."
	MsgApplicationsClosed = "Ansökningar är stängda."

	MsgApplicationUploaded = "Ansökan har laddats upp"
)

// multipartMaxMemory bounds the in-memory part of multipart parsing;
// larger bodies spill to temporary files.
const multipartMaxMemory = 32 << 20

// bodySlack covers the form fields and multipart framing on top of the
// file budget when capping the request body.
const bodySlack = 64 << 10

// Submitter persists a validated application.
type Submitter interface {
	Submit(ctx context.Context, sub services.Submission) (*services.Receipt, error)
}

// Handler serves the application intake API.
type Handler struct {
	cfg *sc.Config
	svc Submitter
	log logging.Logger
}

func NewHandler(cfg *sc.Config, svc Submitter, log logging.Logger) *Handler {
	return &Handler{cfg: cfg, svc: svc, log: log}
}

// NewRouter assembles the chi router: logging, CORS and metrics on the API
// routes, rate limiting on the upload endpoint only.
func NewRouter(cfg *sc.Config, svc Submitter, store ratelimit.Store, log logging.Logger) *chi.Mux {
	h := NewHandler(cfg, svc, log)
	policy := ratelimit.Policy{Limit: cfg.RateLimitLimit, Window: cfg.RateLimitWindow}

	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Use(RequestLogger(log))
		r.Use(CORS(cfg))
		r.Use(Metrics())

		r.Get("/health", h.Health)
		r.With(ratelimit.Middleware(store, policy, log)).Post("/upload", h.Upload)
	})

	r.Get("/sitemap.xml", h.Sitemap)
	r.Get("/robots.txt", h.Robots)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
}

// Sitemap serves sitemap.xml over the configured page slugs.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", "public, max-age=3600, s-maxage=86400")
	_, _ = w.Write([]byte(seo.Sitemap(h.cfg.SiteURL, h.cfg.PageSlugs, h.cfg.BuildTimestamp)))
}

// Robots serves robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(seo.Robots(h.cfg.SiteURL)))
}

// uploadAttributes is the resource attributes member of the 201 response.
type uploadAttributes struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SubmittedAt string `json:"submittedAt"`
	FileCount   int    `json:"fileCount"`
}

// Upload accepts a multipart job application: form fields name, email and
// phone plus one or more files. Field and file validation errors are
// aggregated into a single 400; a storage failure mid-upload yields a 500
// naming the file.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Status != sc.StatusOpen {
		detail := MsgApplicationsClosed
		if h.cfg.Status == sc.StatusPaused {
			detail = MsgApplicationsPaused
		}
		jsonapi.WriteError(w, http.StatusServiceUnavailable,
			jsonapi.NewError(http.StatusServiceUnavailable, "Service Unavailable", detail))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(h.cfg.MaxFiles)*h.cfg.MaxFileSize+bodySlack)

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonapi.WriteError(w, http.StatusRequestEntityTooLarge,
				jsonapi.NewError(http.StatusRequestEntityTooLarge, "Request Entity Too Large", MsgRequestTooLarge))
			return
		}
		jsonapi.WriteError(w, http.StatusBadRequest, jsonapi.ValidationError("multipart/form-data krävs", ""))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	phone := strings.TrimSpace(r.FormValue("phone"))

	var errs []jsonapi.Error
	if name == "" {
		errs = append(errs, jsonapi.ValidationError(MsgNameRequired, "/data/attributes/name"))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, jsonapi.ValidationError(MsgEmailRequired, "/data/attributes/email"))
	}
	switch {
	case phone == "":
		errs = append(errs, jsonapi.ValidationError(MsgPhoneRequired, "/data/attributes/phone"))
	case !formx.ValidPhone(phone):
		errs = append(errs, jsonapi.ValidationError(MsgPhoneInvalid, "/data/attributes/phone"))
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		errs = append(errs, jsonapi.ValidationError(upload.MsgNoFiles, "/data/attributes/files"))
	}

	if len(errs) > 0 {
		submissionsTotal.WithLabelValues("rejected").Inc()
		jsonapi.WriteError(w, http.StatusBadRequest, errs...)
		return
	}

	candidates := make([]upload.CandidateFile, 0, len(headers))
	contents := make([][]byte, 0, len(headers))
	for _, fh := range headers {
		// an over-limit part is rejected on its size alone, without
		// buffering its content
		if h.cfg.MaxFileSize > 0 && fh.Size > h.cfg.MaxFileSize {
			candidates = append(candidates, upload.CandidateFile{
				Name:         fh.Filename,
				DeclaredType: fh.Header.Get("Content-Type"),
				Size:         fh.Size,
			})
			contents = append(contents, nil)
			continue
		}
		f, err := fh.Open()
		if err != nil {
			h.internalError(w, r, err)
			return
		}
		b, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			h.internalError(w, r, err)
			return
		}
		candidates = append(candidates, upload.CandidateFile{
			Name:         fh.Filename,
			DeclaredType: fh.Header.Get("Content-Type"),
			Size:         int64(len(b)),
			Content:      bytes.NewReader(b),
		})
		contents = append(contents, b)
	}

	constraints := upload.Constraints{
		Accept:   h.cfg.UploadAccept,
		MaxFiles: h.cfg.MaxFiles,
		MaxSize:  h.cfg.MaxFileSize,
	}

	res := upload.Validate(nil, candidates, constraints)
	if len(res.Errors) > 0 {
		for _, fe := range res.Errors {
			errs = append(errs, jsonapi.ValidationError(fe.Message, "/data/attributes/files"))
		}
		submissionsTotal.WithLabelValues("rejected").Inc()
		jsonapi.WriteError(w, http.StatusBadRequest, errs...)
		return
	}

	sub := services.Submission{Name: name, Email: email, Phone: phone}
	for i, c := range candidates {
		sub.Files = append(sub.Files, services.SubmissionFile{
			Name:        c.Name,
			ContentType: c.DeclaredType,
			Size:        c.Size,
			Content:     contents[i],
		})
	}

	receipt, err := h.svc.Submit(r.Context(), sub)
	if err != nil {
		submissionsTotal.WithLabelValues("failed").Inc()

		var upErr *services.FileUploadError
		if errors.As(err, &upErr) {
			jsonapi.WriteError(w, http.StatusInternalServerError,
				jsonapi.InternalError(upload.MsgUploadFailed(upErr.FileName), map[string]any{
					"fileName": upErr.FileName,
					"error":    upErr.Err.Error(),
				}))
			return
		}

		h.log.Error(r.Context(), "submission failed", "error", err)
		jsonapi.WriteError(w, http.StatusInternalServerError,
			jsonapi.InternalError(MsgInternalError, map[string]any{"message": err.Error()}))
		return
	}

	submissionsTotal.WithLabelValues("accepted").Inc()
	h.log.Info(r.Context(), "application stored", "folder", receipt.FolderID, "files", receipt.FileCount)

	jsonapi.WriteSuccess(w, http.StatusCreated, jsonapi.Resource{
		Type: "application",
		ID:   receipt.FolderID,
		Attributes: uploadAttributes{
			Name:        name,
			Email:       email,
			Phone:       phone,
			SubmittedAt: receipt.SubmittedAt.Format(time.RFC3339),
			FileCount:   receipt.FileCount,
		},
	}, map[string]any{"message": MsgApplicationUploaded})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	submissionsTotal.WithLabelValues("failed").Inc()
	h.log.Error(r.Context(), "reading upload failed", "error", err)
	jsonapi.WriteError(w, http.StatusInternalServerError,
		jsonapi.InternalError(MsgInternalError, map[string]any{"message": err.Error()}))
}
