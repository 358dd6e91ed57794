package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// orderStatusEvent is the wire shape published to the order topic.
type orderStatusEvent struct {
	OrderID    int64  `json:"orderId"`
	UserID     int64  `json:"userId"`
	OldStatus  string `json:"oldStatus"`
	NewStatus  string `json:"newStatus"`
	Total      string `json:"total"`
	OccurredAt string `json:"occurredAt"`
}

// KafkaNotifier publishes order status changes to a Kafka topic so
// downstream consumers (mail, reporting) can react without coupling to this
// service.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a notifier writing to the given brokers/topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (n *KafkaNotifier) Name() string { return "kafka" }

// OrderStatusChanged publishes one event keyed by order id.
func (n *KafkaNotifier) OrderStatusChanged(ctx context.Context, order *models.Order, oldStatus, newStatus models.OrderStatus) error {
	event := orderStatusEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(newStatus),
		Total:      order.Total.StringFixed(2),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", order.ID)),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
