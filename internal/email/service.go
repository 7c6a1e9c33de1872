package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type Service interface {
	SendOfferInvite(ctx context.Context, to, facilityName string, start time.Time) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendOfferInvite(ctx context.Context, to, facilityName string, start time.Time) error {
	subject := "New interpreting assignment available"
	body := fmt.Sprintf(
		"An appointment at %s on %s needs an interpreter. Open the app to accept the offer.",
		facilityName, start.Format("Mon, 02 Jan 2006 15:04"),
	)
	return s.SendCustom(ctx, to, subject, body)
}

func (s *smtpService) SendCustom(_ context.Context, to, subject, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// Noop discards all mail. Used when SMTP is not configured.
type Noop struct{}

func (Noop) SendOfferInvite(context.Context, string, string, time.Time) error { return nil }
func (Noop) SendCustom(context.Context, string, string, string) error         { return nil }
