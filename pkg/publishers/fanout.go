package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout shares an event through every configured publisher.
type Fanout struct {
	pubs []Publisher
	log  Logger
}

// NewFanout wraps pubs. An empty list makes every Share report
// ErrShareUnavailable.
func NewFanout(pubs []Publisher, log Logger) *Fanout {
	return &Fanout{pubs: pubs, log: ensureLogger(log)}
}

// FromFile loads the sinks file and builds a Fanout with the default
// registry. An empty path gives a Fanout with no publishers.
func FromFile(ctx context.Context, path string, log Logger) (*Fanout, error) {
	if path == "" {
		return NewFanout(nil, log), nil
	}
	cfgs, err := LoadConfigs(path)
	if err != nil {
		return nil, err
	}
	pubs, err := BuildAll(ctx, DefaultRegistry(), cfgs, log)
	if err != nil {
		return nil, err
	}
	return NewFanout(pubs, log), nil
}

// Len reports the number of publishers.
func (f *Fanout) Len() int { return len(f.pubs) }

// Share publishes evt to every publisher and joins the failures.
func (f *Fanout) Share(ctx context.Context, evt ShareEvent) error {
	if len(f.pubs) == 0 {
		return ErrShareUnavailable
	}

	var errs []error
	for _, p := range f.pubs {
		if err := p.Publish(ctx, evt); err != nil {
			f.log.WarnObj("share publisher failed", "share_publish_error", map[string]any{
				"publisher_id":   p.ID(),
				"publisher_type": p.Type(),
				"error":          err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", p.ID(), err))
		}
	}
	return errors.Join(errs...)
}
