package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"stockalert/internal/config"
	"stockalert/internal/notify"
)

// quoteRate caps requests against the quote endpoint regardless of
// watchlist size or poll interval.
var quoteRate = rate.Every(500 * time.Millisecond)

// Poller drives the watch loop: fetch a quote per watched symbol each
// interval, evaluate thresholds, hand crossings to the dispatcher.
type Poller struct {
	client     *Client
	dispatcher *notify.Dispatcher
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu  sync.RWMutex
	cfg *config.Config
}

// New creates a poller over cfg.
func New(cfg *config.Config, client *Client, dispatcher *notify.Dispatcher, logger *slog.Logger) *Poller {
	return &Poller{
		client:     client,
		dispatcher: dispatcher,
		limiter:    rate.NewLimiter(quoteRate, 1),
		logger:     logger,
		cfg:        cfg,
	}
}

// UpdateConfig swaps the active configuration. The next poll cycle picks
// up the new watchlist and interval.
func (p *Poller) UpdateConfig(cfg *config.Config) {
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
	p.logger.Info("configuration reloaded", "symbols", len(cfg.Watchlist), "interval", cfg.Interval())
}

func (p *Poller) snapshot() *config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("watch loop started", "interval", p.snapshot().Interval())
	for {
		p.pollOnce(ctx)

		timer := time.NewTimer(p.snapshot().Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	cfg := p.snapshot()
	for _, w := range cfg.Watchlist {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}

		price, err := p.client.Quote(ctx, w.Symbol)
		if err != nil {
			p.logger.Warn("quote fetch failed", "symbol", w.Symbol, "error", err)
			continue
		}
		p.logger.Debug("quote", "symbol", w.Symbol, "price", price)

		for _, alert := range evaluate(w, price) {
			p.dispatcher.Dispatch(ctx, alert)
		}
	}
}

// evaluate checks a price against one watch entry's thresholds. A zero
// threshold is disabled.
func evaluate(w config.Watch, price float64) []notify.Alert {
	now := time.Now()
	var alerts []notify.Alert
	if w.Above > 0 && price > w.Above {
		alerts = append(alerts, notify.Alert{
			Symbol: w.Symbol,
			Price:  price,
			Rule:   fmt.Sprintf("above %.2f", w.Above),
			Time:   now,
		})
	}
	if w.Below > 0 && price < w.Below {
		alerts = append(alerts, notify.Alert{
			Symbol: w.Symbol,
			Price:  price,
			Rule:   fmt.Sprintf("below %.2f", w.Below),
			Time:   now,
		})
	}
	return alerts
}
