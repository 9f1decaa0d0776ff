package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jairsl2206/restaurant-sub000/internal/logger"
)

// Dispatcher sends notifications on their own goroutines so the caller
// never waits for, or fails because of, delivery.
type Dispatcher struct {
	n       Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wraps n. Each send is bounded by timeout.
func NewDispatcher(n Notifier, timeout time.Duration) *Dispatcher {
	return &Dispatcher{n: n, timeout: timeout}
}

// Send queues message for recipient and returns immediately. Empty
// recipients are skipped.
func (d *Dispatcher) Send(ctx context.Context, recipient, message string) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return
	}
	reqID := logger.RequestIDFrom(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(logger.WithRequestID(context.Background(), reqID), d.timeout)
		defer cancel()
		log := logger.FromCtx(ctx).With(zap.String("recipient", recipient))

		defer func() {
			if r := recover(); r != nil {
				log.Error("notification panicked", zap.Any("panic", r))
			}
		}()

		if !d.n.Notify(ctx, recipient, message) {
			log.Warn("notification not delivered")
		}
	}()
}

// Wait blocks until every queued send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
