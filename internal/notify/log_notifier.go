package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// LogNotifier writes status changes to the application log. Always
// registered; it is the floor of observability for order progression.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Name() string { return "log" }

// OrderStatusChanged logs the transition.
func (n *LogNotifier) OrderStatusChanged(_ context.Context, order *models.Order, oldStatus, newStatus models.OrderStatus) error {
	log.Info().
		Int64("order_id", order.ID).
		Int64("user_id", order.UserID).
		Str("old_status", string(oldStatus)).
		Str("new_status", string(newStatus)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order status changed")
	return nil
}
