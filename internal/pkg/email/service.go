// internal/pkg/email/service.go
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/freshloaf/storefront-backend/internal/config"
)

// Service sends transactional mail over SMTP
type Service struct {
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new email service
func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

// SendVerificationEmail sends the email-verification link to a new or
// unverified user
func (s *Service) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.config.Email.BaseURL, token)

	subject := fmt.Sprintf("Verify your email for %s", s.config.Email.FromName)
	body := renderVerificationBody(name, verifyURL)

	return s.send(ctx, to, subject, body)
}

// SendPasswordResetEmail sends a password reset link
func (s *Service) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.Email.BaseURL, token)

	subject := fmt.Sprintf("Reset your %s password", s.config.Email.FromName)
	body := renderResetBody(name, resetURL)

	return s.send(ctx, to, subject, body)
}

func (s *Service) send(ctx context.Context, to, subject, htmlBody string) error {
	if s.config.Email.SMTPHost == "" {
		// No SMTP configured (local development): log the mail instead
		// of failing registration.
		s.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, skipping email send")
		return nil
	}

	from := s.config.Email.FromEmail
	addr := fmt.Sprintf("%s:%d", s.config.Email.SMTPHost, s.config.Email.SMTPPort)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.Email.FromName, from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if s.config.Email.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.config.Email.SMTPUser, s.config.Email.SMTPPass, s.config.Email.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Email sent")

	return nil
}

func renderVerificationBody(name, verifyURL string) string {
	return fmt.Sprintf(`<html><body>
<h2>Welcome to Fresh Loaf, %s!</h2>
<p>Please confirm your email address to start ordering.</p>
<p><a href="%s">Verify my email</a></p>
<p>If you did not create this account, you can ignore this message.</p>
</body></html>`, name, verifyURL)
}

func renderResetBody(name, resetURL string) string {
	return fmt.Sprintf(`<html><body>
<h2>Hi %s,</h2>
<p>We received a request to reset your password.</p>
<p><a href="%s">Choose a new password</a></p>
<p>This link expires in one hour. If you did not request a reset, you can ignore this message.</p>
</body></html>`, name, resetURL)
}
