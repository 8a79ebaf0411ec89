// Package mailer delivers transactional mail. Only the password-reset
// message exists today.
package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"inkwell/pkg/render"
)

// Mailer sends the password-reset email for a requested account recovery.
type Mailer interface {
	SendPasswordReset(to, resetLink string, expiry time.Duration) error
}

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP delivers mail over a real SMTP server. Port 465 uses implicit TLS;
// other ports use the server's STARTTLS negotiation inside SendMail.
type SMTP struct {
	cfg    Config
	engine *render.Engine
}

// NewSMTP builds the SMTP mailer and parses the embedded templates.
func NewSMTP(cfg Config) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address is required")
	}

	engine, err := render.New()
	if err != nil {
		return nil, err
	}
	return &SMTP{cfg: cfg, engine: engine}, nil
}

// SendPasswordReset mails the reset link to the account's address.
func (s *SMTP) SendPasswordReset(to, resetLink string, expiry time.Duration) error {
	body, err := s.engine.Render("reset_password.tmpl", map[string]any{
		"ResetLink": resetLink,
		"Expiry":    expiry.String(),
	})
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	msg := buildMessage(s.cfg.From, to, "Password Reset Request", body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.Port == 465 {
		return s.sendImplicitTLS(addr, auth, to, msg)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg)
}

func (s *SMTP) sendImplicitTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// Log is the development fallback used when no SMTP server is configured.
// It writes the reset link to the service log instead of delivering it.
type Log struct{}

// SendPasswordReset logs the link that would have been mailed.
func (Log) SendPasswordReset(to, resetLink string, expiry time.Duration) error {
	log.Info().
		Str("to", to).
		Str("reset_link", resetLink).
		Dur("expiry", expiry).
		Msg("smtp not configured, logging password reset link")
	return nil
}
