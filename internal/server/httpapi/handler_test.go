package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnie/joina/internal/logging"
	"github.com/johnie/joina/internal/mail"
	"github.com/johnie/joina/internal/ratelimit"
	sc "github.com/johnie/joina/internal/server/config"
	"github.com/johnie/joina/internal/server/services"
	"github.com/johnie/joina/internal/upload"
)

type fakeSubmitter struct {
	subs []services.Submission
	err  error
}

func (f *fakeSubmitter) Submit(ctx context.Context, sub services.Submission) (*services.Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subs = append(f.subs, sub)
	return &services.Receipt{
		FolderID:    "anna-example-com-1767340800000",
		SubmittedAt: time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC),
		FileCount:   len(sub.Files),
	}, nil
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	return cfg
}

type filePart struct {
	name        string
	contentType string
	content     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files []filePart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		hdr.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"name":  "Anna Andersson",
		"email": "anna@example.com",
		"phone": "+46 70 123 45 67",
	}
}

func validPDF() filePart {
	return filePart{name: "cv.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4 test content")}
}

func doUpload(t *testing.T, h *Handler, fields map[string]string, files []filePart) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.Upload(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	return doc
}

func errorDetails(t *testing.T, rr *httptest.ResponseRecorder) []string {
	t.Helper()
	doc := decodeBody(t, rr)
	raw, ok := doc["errors"].([]any)
	require.True(t, ok, "response must carry an errors array")
	var details []string
	for _, e := range raw {
		details = append(details, e.(map[string]any)["detail"].(string))
	}
	return details
}

func TestUpload_Success(t *testing.T) {
	svc := &fakeSubmitter{}
	h := NewHandler(testConfig(), svc, discardLogger())

	rr := doUpload(t, h, validFields(), []filePart{validPDF()})

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	doc := decodeBody(t, rr)
	data := doc["data"].(map[string]any)
	assert.Equal(t, "application", data["type"])
	assert.Equal(t, "anna-example-com-1767340800000", data["id"])

	attrs := data["attributes"].(map[string]any)
	assert.Equal(t, "Anna Andersson", attrs["name"])
	assert.Equal(t, "anna@example.com", attrs["email"])
	assert.Equal(t, float64(1), attrs["fileCount"])
	assert.Equal(t, "2026-01-02T08:00:00Z", attrs["submittedAt"])

	assert.Equal(t, "1.1", doc["jsonapi"].(map[string]any)["version"])
	assert.Equal(t, MsgApplicationUploaded, doc["meta"].(map[string]any)["message"])

	require.Len(t, svc.subs, 1)
	require.Len(t, svc.subs[0].Files, 1)
	assert.Equal(t, "cv.pdf", svc.subs[0].Files[0].Name)
	assert.Equal(t, []byte("%PDF-1.4 test content"), svc.subs[0].Files[0].Content)
}

func TestUpload_FieldValidation(t *testing.T) {
	svc := &fakeSubmitter{}
	h := NewHandler(testConfig(), svc, discardLogger())

	rr := doUpload(t, h, map[string]string{"email": "not-an-email"}, nil)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	details := errorDetails(t, rr)
	assert.Contains(t, details, MsgNameRequired)
	assert.Contains(t, details, MsgEmailRequired)
	assert.Contains(t, details, MsgPhoneRequired)
	assert.Contains(t, details, upload.MsgNoFiles)
	assert.Empty(t, svc.subs, "nothing may be stored on validation failure")
}

func TestUpload_FieldErrorPointers(t *testing.T) {
	h := NewHandler(testConfig(), &fakeSubmitter{}, discardLogger())

	rr := doUpload(t, h, map[string]string{"email": "anna@example.com", "phone": "0701234567"}, []filePart{validPDF()})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	doc := decodeBody(t, rr)
	errs := doc["errors"].([]any)
	require.Len(t, errs, 1)
	e := errs[0].(map[string]any)
	assert.Equal(t, "400", e["status"])
	assert.Equal(t, MsgNameRequired, e["detail"])
	assert.Equal(t, "/data/attributes/name", e["source"].(map[string]any)["pointer"])
}

func TestUpload_RejectsMalformedPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
	}{
		{"letters", "abc"},
		{"too short", "070123"},
		{"disallowed characters", "070123456789#22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSubmitter{}
			h := NewHandler(testConfig(), svc, discardLogger())

			fields := validFields()
			fields["phone"] = tt.phone
			rr := doUpload(t, h, fields, []filePart{validPDF()})

			require.Equal(t, http.StatusBadRequest, rr.Code)
			doc := decodeBody(t, rr)
			errs := doc["errors"].([]any)
			require.Len(t, errs, 1)
			e := errs[0].(map[string]any)
			assert.Equal(t, MsgPhoneInvalid, e["detail"])
			assert.Equal(t, "/data/attributes/phone", e["source"].(map[string]any)["pointer"])
			assert.Empty(t, svc.subs, "malformed phone must not be stored")
		})
	}
}

func TestUpload_BodyOverCapRejected(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFiles = 1
	cfg.MaxFileSize = 10
	svc := &fakeSubmitter{}
	h := NewHandler(cfg, svc, discardLogger())

	big := filePart{
		name:        "cv.pdf",
		contentType: "application/pdf",
		content:     append([]byte("%PDF-1.4"), make([]byte, 256<<10)...),
	}
	rr := doUpload(t, h, validFields(), []filePart{big})

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, errorDetails(t, rr), MsgRequestTooLarge)
	assert.Empty(t, svc.subs)
}

func TestUpload_ConfiguredAcceptList(t *testing.T) {
	cfg := testConfig()
	cfg.UploadAccept = "application/pdf,.pdf"
	svc := &fakeSubmitter{}
	h := NewHandler(cfg, svc, discardLogger())

	doc := filePart{
		name:        "cv.doc",
		contentType: "application/msword",
		content:     append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, []byte("word body")...),
	}
	rr := doUpload(t, h, validFields(), []filePart{doc})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errorDetails(t, rr), upload.MsgUnsupportedType)
	assert.Empty(t, svc.subs)
}

func TestUpload_RejectsForgedPDF(t *testing.T) {
	svc := &fakeSubmitter{}
	h := NewHandler(testConfig(), svc, discardLogger())

	fake := filePart{name: "fake.pdf", contentType: "application/pdf", content: []byte("MZ executable")}
	rr := doUpload(t, h, validFields(), []filePart{fake})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errorDetails(t, rr), upload.MsgSignatureMismatch)
	assert.Empty(t, svc.subs, "forged file must not reach storage")
}

func TestUpload_AggregatesFileErrors(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFileSize = 10
	h := NewHandler(cfg, &fakeSubmitter{}, discardLogger())

	tooBig := filePart{name: "cv.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4 far too large")}
	wrongType := filePart{name: "notes.txt", contentType: "text/plain", content: []byte("hello")}
	rr := doUpload(t, h, validFields(), []filePart{tooBig, wrongType})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	details := errorDetails(t, rr)
	assert.Contains(t, details, upload.MsgFileTooLarge("10B"))
	assert.Contains(t, details, upload.MsgUnsupportedType)
}

type countingStore struct {
	puts int
}

func (c *countingStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	c.puts++
	return nil
}

type noopSender struct{}

func (noopSender) Send(ctx context.Context, msg mail.Message) error { return nil }

func TestUpload_OversizedFileWritesNothing(t *testing.T) {
	cfg := testConfig()
	store := &countingStore{}
	svc := services.NewApplicationService(store, noopSender{}, cfg, discardLogger())
	h := NewHandler(cfg, svc, discardLogger())

	big := filePart{
		name:        "cv.pdf",
		contentType: "application/pdf",
		content:     append([]byte("%PDF-1.4"), make([]byte, 6<<20)...),
	}
	rr := doUpload(t, h, validFields(), []filePart{big})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errorDetails(t, rr), upload.MsgFileTooLarge("5MB"))
	assert.Zero(t, store.puts, "rejected submission must not touch the object store")
}

func TestUpload_StatusGate(t *testing.T) {
	tests := []struct {
		status sc.ApplicationStatus
		detail string
	}{
		{sc.StatusPaused, MsgApplicationsPaused},
		{sc.StatusClosed, MsgApplicationsClosed},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			cfg := testConfig()
			cfg.Status = tt.status
			svc := &fakeSubmitter{}
			h := NewHandler(cfg, svc, discardLogger())

			rr := doUpload(t, h, validFields(), []filePart{validPDF()})

			require.Equal(t, http.StatusServiceUnavailable, rr.Code)
			assert.Contains(t, errorDetails(t, rr), tt.detail)
			assert.Empty(t, svc.subs)
		})
	}
}

func TestUpload_StorageFailure(t *testing.T) {
	svc := &fakeSubmitter{err: &services.FileUploadError{FileName: "cv.pdf", Err: errors.New("connection reset")}}
	h := NewHandler(testConfig(), svc, discardLogger())

	rr := doUpload(t, h, validFields(), []filePart{validPDF()})

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	doc := decodeBody(t, rr)
	e := doc["errors"].([]any)[0].(map[string]any)
	assert.Equal(t, "500", e["status"])
	assert.Equal(t, upload.MsgUploadFailed("cv.pdf"), e["detail"])
	assert.Equal(t, "cv.pdf", e["meta"].(map[string]any)["fileName"])
}

func TestUpload_NonMultipartBody(t *testing.T) {
	h := NewHandler(testConfig(), &fakeSubmitter{}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_RateLimitsUpload(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitLimit = 1
	store := ratelimit.NewMemoryStore(cfg.RateLimitWindow)
	router := NewRouter(cfg, &fakeSubmitter{}, store, discardLogger())

	send := func() *httptest.ResponseRecorder {
		body, ct := multipartBody(t, validFields(), []filePart{validPDF()})
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		req.RemoteAddr = "10.0.0.1:54321"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	first := send()
	assert.Equal(t, http.StatusCreated, first.Code)

	second := send()
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, "1", second.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, errorDetails(t, second), ratelimit.MsgTooManyRequests)
}

func TestRouter_Health(t *testing.T) {
	router := NewRouter(testConfig(), &fakeSubmitter{}, ratelimit.NewMemoryStore(time.Minute), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRouter_SitemapAndRobots(t *testing.T) {
	cfg := testConfig()
	cfg.PageSlugs = []string{"index", "faq"}
	cfg.BuildTimestamp = "2026-08-31"
	router := NewRouter(cfg, &fakeSubmitter{}, ratelimit.NewMemoryStore(time.Minute), discardLogger())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<loc>https://joina.johnie.se/faq</loc>")
	assert.Contains(t, rr.Body.String(), "<lastmod>2026-08-31</lastmod>")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sitemap: https://joina.johnie.se/sitemap.xml")
}

func TestCORS_Preflight(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	router := NewRouter(cfg, &fakeSubmitter{}, ratelimit.NewMemoryStore(time.Minute), discardLogger())

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "https://joina.johnie.se")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "https://joina.johnie.se", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
}
