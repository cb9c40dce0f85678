package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier records messages in the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "LogNotifier").Logger()}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	event := n.logger.Info()
	if msg.Kind == KindError {
		event = n.logger.Warn()
	}
	event.Str("kind", msg.Kind.String()).Str("attachment", msg.AttachmentPath).Msg(msg.Text)
	return nil
}
