package chat

import (
	"context"
	"sync"
	"time"

	"github.com/pdv-commerce/storefront/pkg/logger"
)

// Poller periodically refreshes the unread message count in the
// background. Stop is idempotent and waits for the loop to exit.
type Poller struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartUnreadPoller polls the unread count on the given interval and
// hands every successful reading to onCount. Errors are logged and the
// loop keeps going; a poll failure is never fatal.
func StartUnreadPoller(ctx context.Context, svc Service, logg *logger.Logger, interval time.Duration, onCount func(int)) *Poller {
	p := &Poller{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		poll := func() {
			count, err := svc.UnreadCount(ctx)
			if err != nil {
				logg.Warn(ctx, "unread poll failed")
				return
			}
			onCount(count)
		}

		poll()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	return p
}

// Stop halts the polling loop and blocks until it has exited.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}
