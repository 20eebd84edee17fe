// Package notify delivers order status updates to customers over email.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/go-faster/errors"

	"github.com/karyanastore/storefront/internal/domain/order"
)

// SMTPConfig configures the email notifier.
type SMTPConfig struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
}

// EmailNotifier implements order.Notifier over SMTP. Orders without a
// customer email are skipped silently; the customer simply opted out.
type EmailNotifier struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ order.Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates an EmailNotifier for the given SMTP endpoint.
func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: smtp.SendMail}
}

// OrderStatusChanged emails the customer about the order's new status.
// The caller owns failure handling; errors here never block a transition.
func (n *EmailNotifier) OrderStatusChanged(_ context.Context, o *order.Order, reason string) error {
	if o.Customer.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("Your order %s is now %s", shortID(o.ID), o.Status)
	body := &strings.Builder{}
	fmt.Fprintf(body, "Hello %s,\r\n\r\n", o.Customer.Name)
	fmt.Fprintf(body, "Your order %s has been updated to: %s.\r\n", o.ID, o.Status)
	if o.Status == order.StatusCancelled && reason != "" {
		fmt.Fprintf(body, "Reason: %s\r\n", reason)
	}
	fmt.Fprintf(body, "\r\nOrder total: %s\r\n", o.Total.StringFixed(2))
	body.WriteString("\r\nThank you for shopping with us.\r\n")

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.cfg.From, o.Customer.Email, subject, body.String())

	var auth smtp.Auth
	if n.cfg.Username != "" {
		host := n.cfg.Addr
		if i := strings.IndexByte(host, ':'); i > 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, host)
	}

	if err := n.send(n.cfg.Addr, auth, n.cfg.From, []string{o.Customer.Email}, []byte(msg)); err != nil {
		return errors.Wrap(err, "send status email")
	}
	return nil
}

// shortID returns the leading segment of a UUID for subject lines.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
