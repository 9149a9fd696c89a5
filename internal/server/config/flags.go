package config

import (
	"flag"
	"os"
	"time"

	"github.com/johnie/joina/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   rate-limit PostgreSQL DSN (empty keeps the in-memory store)
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m string   SMTP address (host:port)
//	-s string   application status: open, paused or closed
//	-l int      rate-limit request quota per window
//	-w int      rate-limit window, minutes
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The window flag is accepted as an integer in minutes and then converted
//     to a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-u", "-p", "-b", "-g", "-e", "-m", "-s", "-l", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.RateLimitDSN, "d", config.RateLimitDSN, "rate-limit database DSN")

	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.SMTPAddr, "m", config.SMTPAddr, "SMTP address (host:port)")

	status := fs.String("s", string(config.Status), "application status (open|paused|closed)")

	fs.IntVar(&config.RateLimitLimit, "l", config.RateLimitLimit, "rate-limit quota per window")
	window := fs.Int("w", int(config.RateLimitWindow.Minutes()), "rate-limit window (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.Status = ApplicationStatus(*status)
	config.RateLimitWindow = time.Duration(*window) * time.Minute
}
