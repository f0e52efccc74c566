// Package notify delivers alerts over the configured channels. Channel
// credentials come from the secret store, never from configuration
// files.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Alert is one threshold crossing worth telling someone about.
type Alert struct {
	Symbol string
	Price  float64
	Rule   string // e.g. "above 250.00"
	Time   time.Time
}

// Message renders the alert as a single human-readable line.
func (a Alert) Message() string {
	return fmt.Sprintf("%s at %.2f (%s)", a.Symbol, a.Price, a.Rule)
}

// fingerprint identifies an alert for deduplication. The price is
// excluded: a symbol hovering around its threshold should not re-alert
// on every poll.
func (a Alert) fingerprint() string {
	return a.Symbol + "|" + a.Rule
}

// Notifier is one delivery channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}

// DefaultDedupeWindow suppresses repeats of the same alert for an hour.
const DefaultDedupeWindow = time.Hour

// Dispatcher fans alerts out to every channel and suppresses repeats
// within the dedupe window. A failing channel is logged and skipped; it
// never blocks the others.
type Dispatcher struct {
	notifiers []Notifier
	logger    *slog.Logger
	window    time.Duration
	recent    *recentRing

	now func() time.Time // test hook
}

// NewDispatcher creates a dispatcher over the given channels.
func NewDispatcher(logger *slog.Logger, window time.Duration, notifiers ...Notifier) *Dispatcher {
	if window <= 0 {
		window = DefaultDedupeWindow
	}
	return &Dispatcher{
		notifiers: notifiers,
		logger:    logger,
		window:    window,
		recent:    newRecentRing(256),
		now:       time.Now,
	}
}

// Dispatch delivers the alert to all channels unless an identical alert
// was already delivered within the dedupe window.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) {
	now := d.now()
	if d.recent.seenWithin(alert.fingerprint(), now, d.window) {
		d.logger.Debug("suppressing duplicate alert", "symbol", alert.Symbol, "rule", alert.Rule)
		return
	}
	d.recent.add(alert.fingerprint(), now)

	for _, n := range d.notifiers {
		if err := n.Send(ctx, alert); err != nil {
			d.logger.Warn("alert delivery failed",
				"channel", n.Name(),
				"symbol", alert.Symbol,
				"error", err)
			continue
		}
		d.logger.Info("alert delivered", "channel", n.Name(), "symbol", alert.Symbol, "rule", alert.Rule)
	}
}
