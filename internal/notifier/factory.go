package notifier

import (
	"io"

	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/rs/zerolog"
)

// FromConfig builds the notifier chain for a host: console output, the
// structured log, and the webhook when one is configured.
func FromConfig(cfg config.NotificationConfig, console io.Writer, logger zerolog.Logger) (Notifier, error) {
	chain := Multi{
		NewConsoleNotifier(console, cfg.EnableColor),
		NewLogNotifier(logger),
	}
	if cfg.WebhookURL != "" {
		wn, err := NewWebhookNotifier(cfg.WebhookURL, cfg.AttachDiffImage, nil, logger)
		if err != nil {
			return nil, err
		}
		chain = append(chain, wn)
	}
	return chain, nil
}
