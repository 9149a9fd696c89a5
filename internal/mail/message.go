// Package mail composes and delivers the notification email sent after an
// application has been stored. Delivery is best-effort: the caller logs and
// swallows failures, a stored application is never rolled back over email.
package mail

import (
	"fmt"
	"html"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplicationData summarizes one stored submission for the notification.
type ApplicationData struct {
	Name        string
	Email       string
	Phone       string
	FileCount   int
	SubmittedAt time.Time
	FolderID    string
}

// Addresses holds the fixed sender/recipient configuration.
type Addresses struct {
	From     string
	FromName string
	To       string
}

// Message is a fully assembled MIME message ready for an SMTP transport.
type Message struct {
	From string
	To   string
	Raw  []byte
}

var svMonths = []string{
	"januari", "februari", "mars", "april", "maj", "juni",
	"juli", "augusti", "september", "oktober", "november", "december",
}

// formatDateSv renders a timestamp the way the Swedish locale does with
// long date and short time styles: "20 november 2025 14:30".
func formatDateSv(t time.Time) string {
	return fmt.Sprintf("%d %s %d %02d:%02d", t.Day(), svMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// encodeHeader makes a header value transport-safe: ASCII passes through,
// anything else is RFC 2047 B-encoded.
func encodeHeader(s string) string {
	return mime.BEncoding.Encode("UTF-8", s)
}

func buildTextBody(d ApplicationData) string {
	return strings.TrimSpace(fmt.Sprintf(`Ny jobbansökan
==============

Namn: %s
E-post: %s
Telefon: %s
Antal filer: %d
Skickad: %s

Mapp-ID: %s
Filer finns i lagringsbucketen under denna mapp.

---
Svara direkt på detta mail för att kontakta den sökande.`,
		d.Name, d.Email, d.Phone, d.FileCount, formatDateSv(d.SubmittedAt), d.FolderID))
}

func buildHTMLBody(d ApplicationData) string {
	esc := html.EscapeString
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html lang="sv">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body style="font-family: sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1>Ny jobbansökan</h1>
  <table style="width: 100%; border-collapse: collapse;">
`)
	row := func(label, value string) {
		fmt.Fprintf(&b, "    <tr><td style=\"padding: 8px 0; font-weight: 600; width: 120px;\">%s</td><td style=\"padding: 8px 0;\">%s</td></tr>\n", label, value)
	}
	row("Namn:", esc(d.Name))
	row("E-post:", fmt.Sprintf(`<a href="mailto:%s">%s</a>`, esc(d.Email), esc(d.Email)))
	row("Telefon:", fmt.Sprintf(`<a href="tel:%s">%s</a>`, esc(d.Phone), esc(d.Phone)))
	row("Antal filer:", fmt.Sprintf("%d", d.FileCount))
	row("Skickad:", formatDateSv(d.SubmittedAt))
	fmt.Fprintf(&b, `  </table>
  <p style="margin-top: 20px; padding: 12px; background-color: #f5f5f5;">
    <strong>Mapp-ID:</strong> %s<br>
    Filer finns i lagringsbucketen under denna mapp.
  </p>
  <p style="margin-top: 20px; font-size: 14px; color: #666;">
    Svara direkt på detta mail för att kontakta den sökande.
  </p>
</body>
</html>`, esc(d.FolderID))
	return b.String()
}

// Compose builds the multipart/alternative notification: a plain-text part
// followed by an HTML part, Reply-To set to the applicant so the recipient
// can answer directly.
func Compose(d ApplicationData, addr Addresses) Message {
	boundary := "----=_Part_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	subject := fmt.Sprintf("Ny ansökan: %s", d.Name)

	headers := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", encodeHeader(addr.FromName), addr.From),
		fmt.Sprintf("To: %s", addr.To),
		fmt.Sprintf("Reply-To: %s", d.Email),
		fmt.Sprintf("Subject: %s", encodeHeader(subject)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", boundary),
		fmt.Sprintf("Date: %s", d.SubmittedAt.UTC().Format(time.RFC1123Z)),
	}, "\r\n")

	textPart := strings.Join([]string{
		"--" + boundary,
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Transfer-Encoding: 8bit",
		"",
		buildTextBody(d),
	}, "\r\n")

	htmlPart := strings.Join([]string{
		"--" + boundary,
		"Content-Type: text/html; charset=UTF-8",
		"Content-Transfer-Encoding: 8bit",
		"",
		buildHTMLBody(d),
	}, "\r\n")

	raw := strings.Join([]string{headers, "", textPart, htmlPart, "--" + boundary + "--"}, "\r\n")

	return Message{From: addr.From, To: addr.To, Raw: []byte(raw)}
}
