package poller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockalert/internal/config"
)

func TestClientParsesQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("s"); got != "aapl" {
			t.Errorf("expected lowercased symbol, got %q", got)
		}
		fmt.Fprintln(w, "AAPL.US,2026-03-01,21:59:58,230.10,232.90,229.00,231.50,12345678")
	}))
	defer srv.Close()

	price, err := NewClient(srv.URL).Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if price != 231.50 {
		t.Errorf("price = %v, want 231.50", price)
	}
}

func TestClientNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "BOGUS,N/D,N/D,N/D,N/D,N/D,N/D,N/D")
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Quote(context.Background(), "BOGUS"); err == nil {
		t.Error("expected error for N/D close price")
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Quote(context.Background(), "AAPL"); err == nil {
		t.Error("expected error on 502")
	}
}

func TestEvaluateThresholds(t *testing.T) {
	cases := []struct {
		name  string
		watch config.Watch
		price float64
		rules []string
	}{
		{"above crossed", config.Watch{Symbol: "A", Above: 100}, 101, []string{"above 100.00"}},
		{"above not crossed", config.Watch{Symbol: "A", Above: 100}, 99, nil},
		{"at threshold is not crossed", config.Watch{Symbol: "A", Above: 100}, 100, nil},
		{"below crossed", config.Watch{Symbol: "A", Below: 50}, 49, []string{"below 50.00"}},
		{"below not crossed", config.Watch{Symbol: "A", Below: 50}, 51, nil},
		{"no thresholds", config.Watch{Symbol: "A"}, 123, nil},
		{"both configured, one fires", config.Watch{Symbol: "A", Above: 100, Below: 50}, 101, []string{"above 100.00"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts := evaluate(tc.watch, tc.price)
			if len(alerts) != len(tc.rules) {
				t.Fatalf("expected %d alerts, got %d", len(tc.rules), len(alerts))
			}
			for i, rule := range tc.rules {
				if alerts[i].Rule != rule {
					t.Errorf("rule = %q, want %q", alerts[i].Rule, rule)
				}
				if alerts[i].Symbol != tc.watch.Symbol || alerts[i].Price != tc.price {
					t.Errorf("unexpected alert: %+v", alerts[i])
				}
			}
		})
	}
}

func TestUpdateConfigSwapsWatchlist(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(&config.Config{PollInterval: "1m"}, NewClient("http://127.0.0.1:0"), nil, logger)

	updated := &config.Config{
		PollInterval: "5s",
		Watchlist:    []config.Watch{{Symbol: "AAPL", Above: 1}},
	}
	p.UpdateConfig(updated)

	got := p.snapshot()
	if len(got.Watchlist) != 1 || got.Watchlist[0].Symbol != "AAPL" {
		t.Errorf("unexpected watchlist after reload: %+v", got.Watchlist)
	}
}
