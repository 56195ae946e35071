package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes outgoing messages to the log instead of delivering
// them. Used in development so codes can be read from the console.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.logger.InfoContext(ctx, "outgoing message", "to", to, "subject", subject, "body", body)
	return nil
}
