package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration values from environment variables. A .env
// file in the working directory is loaded first if present; real environment
// variables take precedence over it. Unset variables leave the current value
// untouched.
//
// Recognized variables:
//
//	ADDRESS, SITE_URL, ENVIRONMENT, PAGE_SLUGS (comma-separated)
//	S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY
//	SMTP_ADDR, SMTP_USERNAME, SMTP_PASSWORD
//	EMAIL_FROM, EMAIL_FROM_NAME, EMAIL_TO
//	MAX_FILES, MAX_FILE_SIZE, UPLOAD_ACCEPT
//	RATE_LIMIT_LIMIT, RATE_LIMIT_WINDOW (Go duration), RATE_LIMIT_DSN
//	APPLICATION_STATUS
func parseEnv(config *Config) {
	// ignore a missing .env, the environment itself is enough
	_ = godotenv.Load()

	envString(&config.EndpointAddr, "ADDRESS")
	envString(&config.SiteURL, "SITE_URL")
	envString(&config.Environment, "ENVIRONMENT")
	if v, ok := os.LookupEnv("PAGE_SLUGS"); ok {
		config.PageSlugs = strings.Split(v, ",")
	}

	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.S3AccessKey, "S3_ACCESS_KEY")
	envString(&config.S3SecretKey, "S3_SECRET_KEY")

	envString(&config.SMTPAddr, "SMTP_ADDR")
	envString(&config.SMTPUsername, "SMTP_USERNAME")
	envString(&config.SMTPPassword, "SMTP_PASSWORD")

	envString(&config.EmailFrom, "EMAIL_FROM")
	envString(&config.EmailFromName, "EMAIL_FROM_NAME")
	envString(&config.EmailTo, "EMAIL_TO")

	if v, ok := os.LookupEnv("MAX_FILES"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.MaxFiles = n
		}
	}
	if v, ok := os.LookupEnv("MAX_FILE_SIZE"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxFileSize = n
		}
	}

	envString(&config.UploadAccept, "UPLOAD_ACCEPT")

	if v, ok := os.LookupEnv("RATE_LIMIT_LIMIT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.RateLimitLimit = n
		}
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_WINDOW"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.RateLimitWindow = d
		}
	}
	envString(&config.RateLimitDSN, "RATE_LIMIT_DSN")

	if v, ok := os.LookupEnv("APPLICATION_STATUS"); ok {
		config.Status = ApplicationStatus(v)
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}
