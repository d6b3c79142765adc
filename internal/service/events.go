package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/rmdb/internal/queue"
)

// EventPublisher is implemented by *queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.CatalogEvent) error
}

// notifier fires catalog events in the background.  A failed publish is
// logged and never fails the write that triggered it.
type notifier struct {
	events EventPublisher
	log    *slog.Logger
}

func newNotifier(events EventPublisher, log *slog.Logger) notifier {
	if log == nil {
		log = slog.Default()
	}
	return notifier{events: events, log: log}
}

func (n notifier) publish(ev queue.CatalogEvent) {
	if n.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.events.Publish(ctx, ev); err != nil {
			n.log.Warn("publish catalog event failed", "type", ev.Type, "error", err)
		}
	}()
}
