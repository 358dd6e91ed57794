package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// StatusNotifier receives order status-change events. Implementations must
// tolerate failure: delivery is best-effort and never affects the
// transaction that produced the change.
type StatusNotifier interface {
	Name() string
	OrderStatusChanged(ctx context.Context, order *models.Order, oldStatus, newStatus models.OrderStatus) error
}

// Hooks is the post-commit hook list fired by the order lifecycle after a
// successful status-changing write. It is invoked exactly once per actual
// change and never on order creation.
type Hooks struct {
	notifiers []StatusNotifier
}

// NewHooks creates an empty hook list.
func NewHooks() *Hooks {
	return &Hooks{}
}

// Register appends a notifier. Not safe for concurrent use; register
// everything during wiring.
func (h *Hooks) Register(n StatusNotifier) {
	h.notifiers = append(h.notifiers, n)
}

// Fire delivers the event to every registered notifier. Failures are logged
// and swallowed.
func (h *Hooks) Fire(ctx context.Context, order *models.Order, oldStatus, newStatus models.OrderStatus) {
	for _, n := range h.notifiers {
		if err := n.OrderStatusChanged(ctx, order, oldStatus, newStatus); err != nil {
			log.Error().
				Err(err).
				Str("notifier", n.Name()).
				Int64("order_id", order.ID).
				Str("old_status", string(oldStatus)).
				Str("new_status", string(newStatus)).
				Msg("order status notification failed")
		}
	}
}
