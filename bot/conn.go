package bot

import (
	"context"
)

type conn interface {
	Connect(ctx context.Context) (<-chan event, error)
	Send(ctx context.Context, channel string, message string) error
	Directory() directory
	Close() error
}

// emit hands an event to the bot, unless the connection is shutting down
func emit(ctx context.Context, eventChan chan<- event, ev event) {
	select {
	case eventChan <- ev:
	case <-ctx.Done():
	}
}
