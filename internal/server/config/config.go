// Package config handles configuration for the intake server, including
// defaults, JSON overlay, environment variables, and command-line flags.
package config

import (
	"time"

	"github.com/johnie/joina/internal/upload"
)

// ApplicationStatus gates the upload endpoint.
type ApplicationStatus string

const (
	StatusOpen   ApplicationStatus = "open"
	StatusPaused ApplicationStatus = "paused"
	StatusClosed ApplicationStatus = "closed"
)

// Config holds runtime settings for the Joina server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - SiteURL / Environment: public site base URL and deployment mode
//     ("development" relaxes CORS).
//   - PageSlugs / BuildTimestamp: sitemap inputs.
//   - S3*: object storage settings (R2/MinIO compatible).
//   - SMTP* / Email*: notification transport and fixed addresses.
//   - MaxFiles / MaxFileSize / UploadAccept: upload constraints; the accept
//     list uses the validator's comma-separated extension/MIME syntax.
//   - RateLimit* : fixed-window policy; RateLimitDSN selects the shared
//     Postgres store when non-empty.
//   - Status: open | paused | closed.
type Config struct {
	EndpointAddr   string
	SiteURL        string
	Environment    string
	PageSlugs      []string
	BuildTimestamp string

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string

	EmailFrom     string
	EmailFromName string
	EmailTo       string

	MaxFiles     int
	MaxFileSize  int64
	UploadAccept string

	RateLimitLimit  int
	RateLimitWindow time.Duration
	RateLimitDSN    string

	Status ApplicationStatus
}

// LoadDefaults populates Config with development defaults.
// NOTE: the S3 values are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.SiteURL = "https://joina.johnie.se"
	c.Environment = "development"
	c.PageSlugs = []string{"index"}
	c.BuildTimestamp = time.Now().UTC().Format("2006-01-02")

	c.S3Bucket = "joina"
	c.S3Region = "auto"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"

	c.SMTPAddr = "127.0.0.1:25"

	c.EmailFrom = "noreply@johnie.se"
	c.EmailFromName = "Joina"
	c.EmailTo = "jobb@johnie.se"

	c.MaxFiles = 5
	c.MaxFileSize = 5 << 20
	c.UploadAccept = upload.DefaultAccept()

	c.RateLimitLimit = 3
	c.RateLimitWindow = 15 * time.Minute

	c.Status = StatusOpen
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (including a .env file), and
// finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
