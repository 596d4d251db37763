package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/centre"
)

// SMTPConfig carries outbound mail settings.
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	From     string
	To       []string
	Password string
}

// EmailChannel delivers availability and fatal-condition alerts over SMTP.
// When disabled it logs the alert and reports success, so collection never
// stalls on a missing mail server.
type EmailChannel struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewEmailChannel builds a channel from config.
func NewEmailChannel(cfg SMTPConfig, logger *zap.Logger) *EmailChannel {
	return &EmailChannel{cfg: cfg, logger: logger}
}

// Notify sends one availability alert for a centre, attaching the screenshot
// when a path is given.
func (e *EmailChannel) Notify(ctx context.Context, c centre.Centre, screenshotRef string) error {
	e.logger.Info("availability alert",
		zap.String("centre", c.Name),
		zap.String("postcode", c.Postcode),
		zap.String("status", c.Status),
		zap.String("screenshot", screenshotRef),
	)
	if !e.cfg.Enabled {
		return nil
	}

	subject := fmt.Sprintf("Test slot available: %s", c.Name)
	var body strings.Builder
	fmt.Fprintf(&body, "A driving test centre has slots available.\n\n")
	fmt.Fprintf(&body, "Centre:   %s\n", c.Name)
	if c.Address != "" {
		fmt.Fprintf(&body, "Address:  %s\n", c.Address)
	}
	if c.Postcode != "" {
		fmt.Fprintf(&body, "Postcode: %s\n", c.Postcode)
	}
	fmt.Fprintf(&body, "Status:   %s\n", c.Status)
	fmt.Fprintf(&body, "Found at: %s\n\n", c.CollectedAt.Format(time.RFC1123))
	fmt.Fprintf(&body, "Book it before it goes.\n")

	return e.send(ctx, subject, body.String(), screenshotRef)
}

// NotifyFatal reports a maintenance or security-block condition that aborted
// a run. Best effort: callers log the returned error and continue unwinding.
func (e *EmailChannel) NotifyFatal(ctx context.Context, kind, message, screenshotRef string) error {
	e.logger.Warn("fatal condition alert",
		zap.String("kind", kind),
		zap.String("message", message),
		zap.String("screenshot", screenshotRef),
	)
	if !e.cfg.Enabled {
		return nil
	}

	subject := fmt.Sprintf("Slot watch stopped: %s", kind)
	body := fmt.Sprintf(
		"The slot watcher stopped because of a %s condition.\n\nMessage: %s\n\nRestart it once the service is back.\n",
		kind, message,
	)
	return e.send(ctx, subject, body, screenshotRef)
}

func (e *EmailChannel) send(ctx context.Context, subject, body, attachment string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("alert canceled: %w", err)
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Slotscout <%s>", e.cfg.From)
	mail.To = e.cfg.To
	mail.Subject = subject
	mail.Text = []byte(body)

	if attachment != "" {
		if _, err := mail.AttachFile(attachment); err != nil {
			// Send continues without the attachment.
			e.logger.Warn("could not attach screenshot",
				zap.String("path", attachment), zap.Error(err))
		}
	}

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	auth := smtp.PlainAuth("", e.cfg.From, e.cfg.Password, e.cfg.Host)
	if err := mail.Send(addr, auth); err != nil {
		return fmt.Errorf("send alert mail: %w", err)
	}
	return nil
}
