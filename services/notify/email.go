// Package notify sends the expiry digest to partnership coordinators.
package notify

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"github.com/sahilchouksey/partner-hub/model"
)

// SMTPConfig holds the mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender delivers one HTML message.
type Sender interface {
	Send(to []string, subject, htmlBody string) error
}

// EmailService handles sending emails via SMTP
type EmailService struct {
	cfg SMTPConfig
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.cfg.Username != "" && e.cfg.Password != ""
}

// Send delivers htmlBody to every recipient over STARTTLS.
func (e *EmailService) Send(to []string, subject, htmlBody string) error {
	if !e.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	var message strings.Builder
	for _, h := range [][2]string{
		{"From", e.cfg.From},
		{"To", strings.Join(to, ", ")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	} {
		fmt.Fprintf(&message, "%s: %s\r\n", h[0], h[1])
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	conn, err := smtp.Dial(fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(&tls.Config{ServerName: e.cfg.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := conn.Auth(smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := conn.Mail(e.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err := conn.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return conn.Quit()
}

// DigestSubject is the subject line of the expiry digest.
func DigestSubject(n int, now time.Time) string {
	return fmt.Sprintf("%d partnership(s) expiring soon (%s)", n, now.Format("2006-01-02"))
}

// DigestBody renders an HTML table of records sorted by expiration date.
func DigestBody(records []model.Partnership, now time.Time) string {
	sorted := append([]model.Partnership(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return expiresBefore(sorted[i], sorted[j])
	})

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body style="font-family:sans-serif">`)
	b.WriteString("<h2>Partnerships expiring within 30 days</h2>")
	b.WriteString(`<table cellpadding="6" border="1" style="border-collapse:collapse">`)
	b.WriteString("<tr><th>Partnership</th><th>Institution</th><th>College</th><th>Expires</th><th>Days left</th></tr>")
	for _, p := range sorted {
		expires, days := "", ""
		if p.ExpirationDate != nil {
			expires = p.ExpirationDate.Format("2006-01-02")
			days = fmt.Sprintf("%d", int(p.ExpirationDate.Sub(now).Hours()/24))
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(p.Name),
			html.EscapeString(p.PartnerInstitution.Name),
			html.EscapeString(p.InterestedCollege()),
			expires, days)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func expiresBefore(a, b model.Partnership) bool {
	switch {
	case a.ExpirationDate == nil:
		return false
	case b.ExpirationDate == nil:
		return true
	}
	return a.ExpirationDate.Before(*b.ExpirationDate)
}
