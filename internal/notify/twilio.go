package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockalert/internal/config"
	"stockalert/internal/secrets"
)

// TwilioCredentialKey is the secret-store key holding the Twilio account
// credentials as "account_sid:auth_token".
const TwilioCredentialKey = "twilio"

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioNotifier sends alerts as SMS through the Twilio REST API.
type TwilioNotifier struct {
	cfg    config.TwilioConfig
	store  secrets.Store
	client *http.Client
	base   string // overridable in tests
}

// NewTwilioNotifier creates the SMS channel.
func NewTwilioNotifier(cfg config.TwilioConfig, store secrets.Store) *TwilioNotifier {
	return &TwilioNotifier{
		cfg:    cfg,
		store:  store,
		client: &http.Client{Timeout: 15 * time.Second},
		base:   twilioAPIBase,
	}
}

func (n *TwilioNotifier) Name() string { return "twilio" }

func (n *TwilioNotifier) Send(ctx context.Context, alert Alert) error {
	cred, err := n.store.Get(TwilioCredentialKey)
	if err != nil {
		return fmt.Errorf("twilio credentials: %w", err)
	}
	sid, token, ok := strings.Cut(cred, ":")
	if !ok {
		return fmt.Errorf("twilio credential for key %q is not sid:token", TwilioCredentialKey)
	}

	form := url.Values{
		"To":   {n.cfg.To},
		"From": {n.cfg.From},
		"Body": {"stockalert: " + alert.Message()},
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", n.base, sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building twilio request: %w", err)
	}
	req.SetBasicAuth(sid, token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
