package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"stockalert/internal/config"
	"stockalert/internal/secrets"
)

// SMTPCredentialKey is the secret-store key holding the mail account
// credentials as "username:password".
const SMTPCredentialKey = "smtp"

// SMTPNotifier sends alerts by mail. Host, port and addressing come from
// configuration; the account credentials are looked up in the secret
// store on every send, so a credential update takes effect without a
// restart.
type SMTPNotifier struct {
	cfg   config.SMTPConfig
	store secrets.Store

	// send is swappable in tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates the mail channel.
func NewSMTPNotifier(cfg config.SMTPConfig, store secrets.Store) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, store: store, send: smtp.SendMail}
}

func (n *SMTPNotifier) Name() string { return "smtp" }

func (n *SMTPNotifier) Send(_ context.Context, alert Alert) error {
	cred, err := n.store.Get(SMTPCredentialKey)
	if err != nil {
		return fmt.Errorf("smtp credentials: %w", err)
	}
	username, password, ok := strings.Cut(cred, ":")
	if !ok {
		return fmt.Errorf("smtp credential for key %q is not username:password", SMTPCredentialKey)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: stockalert: %s\r\n\r\n%s\r\n",
		n.cfg.From,
		strings.Join(n.cfg.To, ", "),
		alert.Symbol,
		alert.Message(),
	)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", username, password, n.cfg.Host)
	if err := n.send(addr, auth, n.cfg.From, n.cfg.To, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail via %s: %w", addr, err)
	}
	return nil
}
