package notify

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ConsoleNotifier writes alerts to standard output. Useful on headless
// hosts and as a safety net while other channels are being set up.
type ConsoleNotifier struct {
	out io.Writer
}

// NewConsoleNotifier creates the console channel.
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{out: os.Stdout}
}

func (n *ConsoleNotifier) Name() string { return "console" }

func (n *ConsoleNotifier) Send(_ context.Context, alert Alert) error {
	_, err := fmt.Fprintf(n.out, "[%s] ALERT %s\n", alert.Time.Format("15:04:05"), alert.Message())
	return err
}
