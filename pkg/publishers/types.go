package publishers

import (
	"context"
	"errors"
	"time"

	"github.com/samvad-hq/newsdeck/internal/logger"
)

// ErrShareUnavailable means no share sink is configured.
var ErrShareUnavailable = errors.New("share capability unavailable")

// Logger is the logging surface publishers write to.
type Logger = logger.Logger

// ShareEvent is the payload delivered to every share sink.
type ShareEvent struct {
	Title    string    `json:"title"`
	Text     string    `json:"text,omitempty"`
	URL      string    `json:"url"`
	Source   string    `json:"source,omitempty"`
	SharedAt time.Time `json:"shared_at"`
}

// Publisher delivers share events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt ShareEvent) error
}

func ensureLogger(log Logger) Logger {
	return logger.Ensure(log)
}
