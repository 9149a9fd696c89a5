package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/johnie/joina/internal/flagx"
	"github.com/johnie/joina/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for the rate-limit window, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr   string         `json:"endpoint_addr"`
	SiteURL        string         `json:"site_url"`
	Environment    string         `json:"environment"`
	PageSlugs      []string       `json:"page_slugs"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
	SMTPAddr       string         `json:"smtp_addr"`
	SMTPUsername   string         `json:"smtp_username"`
	SMTPPassword   string         `json:"smtp_password"`
	EmailFrom      string         `json:"email_from"`
	EmailFromName  string         `json:"email_from_name"`
	EmailTo        string         `json:"email_to"`
	MaxFiles       int            `json:"max_files"`
	MaxFileSize    int64          `json:"max_file_size"`
	UploadAccept   string         `json:"upload_accept"`
	RateLimitLimit int            `json:"rate_limit_limit"`
	RateLimitWin   timex.Duration `json:"rate_limit_window"`
	RateLimitDSN   string         `json:"rate_limit_dsn"`
	Status         string         `json:"application_status"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. A JSON file is expected to be
// complete: present keys overwrite defaults, absent keys reset them. If the
// file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.SiteURL = c.SiteURL
	config.Environment = c.Environment
	config.PageSlugs = c.PageSlugs
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.SMTPAddr = c.SMTPAddr
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
	config.EmailFrom = c.EmailFrom
	config.EmailFromName = c.EmailFromName
	config.EmailTo = c.EmailTo
	config.MaxFiles = c.MaxFiles
	config.MaxFileSize = c.MaxFileSize
	config.UploadAccept = c.UploadAccept
	config.RateLimitLimit = c.RateLimitLimit
	config.RateLimitWindow = time.Duration(c.RateLimitWin.Duration)
	config.RateLimitDSN = c.RateLimitDSN
	config.Status = ApplicationStatus(c.Status)
}
