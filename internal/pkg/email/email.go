package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	// SendInvitation reports whether a message was actually handed to the SMTP server.
	SendInvitation(to string, data InvitationData) (bool, error)
	SendTemporaryPassword(to string, data TemporaryPasswordData) (bool, error)
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	sender    Sender
	backoff   time.Duration
}

// NewEmailService creates a new email service instance. With an empty SMTP host
// every send is skipped and reported as not sent.
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	var sender Sender
	if cfg.Enabled() {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return NewEmailServiceWithSender(cfg, sender)
}

func NewEmailServiceWithSender(cfg config.SMTPConfig, sender Sender) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		sender:    sender,
		backoff:   time.Second,
	}, nil
}

type InvitationData struct {
	FullName          string
	OrganizationName  string
	Email             string
	TemporaryPassword string
	LoginURL          string
}

// SendInvitation sends the welcome email with the temporary password.
func (s *emailServiceImpl) SendInvitation(to string, data InvitationData) (bool, error) {
	if data.LoginURL == "" {
		data.LoginURL = s.cfg.InviteBaseURL
	}
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "invite.html", data); err != nil {
		return false, fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("Bienvenido a %s", data.OrganizationName), body.String())
}

type TemporaryPasswordData struct {
	FullName          string
	TemporaryPassword string
	LoginURL          string
}

func (s *emailServiceImpl) SendTemporaryPassword(to string, data TemporaryPasswordData) (bool, error) {
	if data.LoginURL == "" {
		data.LoginURL = s.cfg.InviteBaseURL
	}
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "password_reset.html", data); err != nil {
		return false, fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, "Nueva contraseña temporal", body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) (bool, error) {
	if s.sender == nil {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return false, nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.sender.DialAndSend(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return true, nil
		}
		lastErr = err
		slog.Warn("Email send failed", "to", to, "attempt", attempt, "error", err)
		if attempt < maxRetries {
			time.Sleep(s.backoff * time.Duration(attempt))
		}
	}

	return false, fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
