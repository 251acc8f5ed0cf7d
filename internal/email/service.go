package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/passwordguard/internal/config"
	"github.com/jwalitptl/passwordguard/internal/model"
)

// Service sends operational notifications. The advisory report is the only
// mail this service knows; it names the account and the violated rules,
// never the candidate password.
type Service interface {
	SendAdvisoryReport(ctx context.Context, to string, username string, violations []model.Violation) error
}

type gomailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.SMTPConfig) Service {
	return &gomailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *gomailService) SendAdvisoryReport(_ context.Context, to string, username string, violations []model.Violation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "A password change for account %q violated the complexity policy.\n", username)
	b.WriteString("The policy is running in advisory mode, so the change was not blocked.\n\n")
	b.WriteString("Violated rules:\n")
	for _, v := range violations {
		fmt.Fprintf(&b, "  - %s\n", v.Detail())
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("passwordguard advisory: policy violation for %s", username))
	m.SetBody("text/plain", b.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send advisory report: %w", err)
	}
	return nil
}
