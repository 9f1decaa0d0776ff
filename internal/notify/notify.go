// Package notify delivers short text messages to customers and staff.
// Delivery is best-effort: callers learn only whether it succeeded.
package notify

import "context"

// Notifier sends message to recipient, a phone number in international
// format. It reports whether the message was accepted.
type Notifier interface {
	Notify(ctx context.Context, recipient, message string) bool
}

// Noop accepts and drops every message.
type Noop struct{}

func (Noop) Notify(context.Context, string, string) bool { return true }

// Multi sends through every notifier and succeeds if any of them does.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, recipient, message string) bool {
	ok := false
	for _, n := range m {
		if n.Notify(ctx, recipient, message) {
			ok = true
		}
	}
	return ok
}
