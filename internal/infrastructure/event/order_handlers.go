package event

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var orderEventTypes = []string{trade.EventTypeOrderPlaced, trade.EventTypeOrderStatusChanged}

// OrderAuditHandler writes one structured log line per order event
type OrderAuditHandler struct {
	logger *zap.Logger
}

// NewOrderAuditHandler creates an audit handler
func NewOrderAuditHandler(log *zap.Logger) *OrderAuditHandler {
	return &OrderAuditHandler{logger: log.Named("audit")}
}

// EventTypes returns the order event types
func (h *OrderAuditHandler) EventTypes() []string {
	return orderEventTypes
}

// Handle logs the event
func (h *OrderAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.Enrich(ctx, h.logger).With(
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.Time("occurred_at", event.OccurredAt()),
	)

	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		fields := []zap.Field{
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("total", e.Total.StringFixed(2)),
			zap.Int("item_count", e.ItemCount),
		}
		if e.UserID != nil {
			fields = append(fields, zap.String("buyer_id", e.UserID.String()))
		}
		log.Info("order placed", fields...)
	case *trade.OrderStatusChangedEvent:
		log.Info("order status changed",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("from", e.From.String()),
			zap.String("to", e.To.String()),
		)
	default:
		return fmt.Errorf("unexpected event %T", event)
	}
	return nil
}

// OrderMetricsRecorder receives business measurements derived from order events
type OrderMetricsRecorder interface {
	RecordOrderPlaced(ctx context.Context, total decimal.Decimal, itemCount int)
	RecordOrderStatusChanged(ctx context.Context, from, to string, total decimal.Decimal)
}

// OrderMetricsHandler forwards order events to an OrderMetricsRecorder
type OrderMetricsHandler struct {
	recorder OrderMetricsRecorder
}

// NewOrderMetricsHandler creates a metrics handler
func NewOrderMetricsHandler(recorder OrderMetricsRecorder) *OrderMetricsHandler {
	return &OrderMetricsHandler{recorder: recorder}
}

// EventTypes returns the order event types
func (h *OrderMetricsHandler) EventTypes() []string {
	return orderEventTypes
}

// Handle records the event
func (h *OrderMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		h.recorder.RecordOrderPlaced(ctx, e.Total, e.ItemCount)
	case *trade.OrderStatusChangedEvent:
		h.recorder.RecordOrderStatusChanged(ctx, e.From.String(), e.To.String(), e.Total)
	default:
		return fmt.Errorf("unexpected event %T", event)
	}
	return nil
}
