package notifier

import (
	"fmt"

	"github.com/ibeckermayer/tastemap/internal/config"
	"github.com/ibeckermayer/tastemap/internal/notifier/providers"
	"github.com/ibeckermayer/tastemap/internal/report"
)

// Notifier handles sending run reports
type Notifier struct {
	sender Sender
	to     string
}

// Sender defines the interface for email sending
type Sender interface {
	Send(to, subject, htmlBody, plainBody string) error
}

// New creates a new notifier that mails reports to the given address
func New(sender Sender, to string) *Notifier {
	return &Notifier{sender: sender, to: to}
}

// NewFromConfig creates a notifier based on configuration. It returns nil
// when notifications are disabled.
func NewFromConfig(cfg config.NotifyConfig, password string) (*Notifier, error) {
	var sender Sender

	switch cfg.Provider {
	case "":
		return nil, nil
	case "smtp":
		if cfg.ToAddr == "" {
			return nil, fmt.Errorf("notify.to_address must be set")
		}
		sender = providers.NewSMTPSender(
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUser,
			password,
			cfg.FromAddr,
		)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}

	return New(sender, cfg.ToAddr), nil
}

// SendReport mails a rendered run report
func (n *Notifier) SendReport(r *report.Report) error {
	return n.sender.Send(n.to, r.Subject, r.HTMLBody, r.PlainBody)
}
