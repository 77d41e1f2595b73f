package push

import (
	"context"

	"github.com/pingpal/pingpal-server/internal/logging"
)

// Sender delivers a push notification to a single device token. Delivery is
// best effort; callers log failures and move on.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// LogSender stands in when no push credentials are configured. It logs the
// would-be delivery and reports success.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	s.logger.Info("push delivery skipped, no gateway configured", logging.Fields{
		"token": maskToken(token),
		"title": title,
	})
	return nil
}

// maskToken hides all but the last 6 characters for logging.
func maskToken(token string) string {
	if len(token) <= 6 {
		return token
	}
	return "..." + token[len(token)-6:]
}
