package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	portssvc "github.com/kaustubhdw/user_auth_app/internal/core/ports/services"
	"github.com/kaustubhdw/user_auth_app/internal/middleware"
	"github.com/kaustubhdw/user_auth_app/internal/platform/config"
	"github.com/kaustubhdw/user_auth_app/internal/platform/email"
)

// emailService implements EmailSvcFacade over an SMTP relay. When no relay is
// configured the message is logged instead of sent, so local development does
// not need a mail server.
type emailService struct {
	cfg *config.Config
}

// NewEmailService creates a new instance of emailService.
func NewEmailService(cfg *config.Config) portssvc.EmailSvcFacade {
	return &emailService{cfg: cfg}
}

func (s *emailService) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s&email=%s", s.cfg.ClientURL, url.QueryEscape(token), url.QueryEscape(to))
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Welcome! Please confirm your email address by clicking the link below. The link expires in %s.</p>
<p><a href="%s">Verify your email</a></p>
<p>If you did not create this account, you can ignore this message.</p>`,
		name, s.cfg.VerificationTokenTTL, link)

	return s.deliver(ctx, to, "Verify your email address", body, link)
}

func (s *emailService) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.ClientURL, url.QueryEscape(token))
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>A password reset was requested for your account. The link below expires in %s.</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not request this, no action is needed; your password is unchanged.</p>`,
		name, s.cfg.ResetTokenTTL, link)

	return s.deliver(ctx, to, "Reset your password", body, link)
}

func (s *emailService) deliver(ctx context.Context, to, subject, body, link string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if s.cfg.SMTPHost == "" {
		logger.Info("SMTP not configured, logging email instead of sending",
			slog.String("to", to), slog.String("subject", subject), slog.String("link", link))
		return nil
	}

	err := email.SendSMTP(email.SMTPSettings{
		Host:     s.cfg.SMTPHost,
		Port:     s.cfg.SMTPPort,
		Username: s.cfg.SMTPUser,
		Password: s.cfg.SMTPPass,
	}, email.Message{
		From:     s.cfg.EmailFrom,
		To:       to,
		Subject:  subject,
		HTMLBody: body,
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	logger.Info("Email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}
