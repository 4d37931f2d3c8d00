package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor receives a nil meter
var ErrMeterNil = errors.New("meter cannot be nil")

// BusinessMetrics counts orders and revenue. It satisfies the order event
// handler's recorder interface.
type BusinessMetrics struct {
	ordersPlaced   *Counter
	itemsSold      *Counter
	revenue        metric.Float64Counter
	statusChanges  *Counter
	ordersCanceled *Counter
}

// NewBusinessMetrics registers the store instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	var err error
	if bm.ordersPlaced, err = NewCounter(meter, "store_orders_placed_total", "Orders placed at checkout", "{order}"); err != nil {
		return nil, err
	}
	if bm.itemsSold, err = NewCounter(meter, "store_items_sold_total", "Units sold at checkout", "{unit}"); err != nil {
		return nil, err
	}
	if bm.statusChanges, err = NewCounter(meter, "store_order_status_changes_total", "Order status transitions", "{transition}"); err != nil {
		return nil, err
	}
	if bm.ordersCanceled, err = NewCounter(meter, "store_orders_cancelled_total", "Orders cancelled", "{order}"); err != nil {
		return nil, err
	}
	bm.revenue, err = meter.Float64Counter("store_order_revenue_total",
		metric.WithDescription("Gross order value at checkout"),
		metric.WithUnit("{currency}"),
	)
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderPlaced counts a placed order with its total and unit count
func (m *BusinessMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal, itemCount int) {
	m.ordersPlaced.Inc(ctx)
	m.itemsSold.Add(ctx, int64(itemCount))
	m.revenue.Add(ctx, total.InexactFloat64())
}

// RecordOrderStatusChanged counts a transition; cancellations are also
// counted on their own
func (m *BusinessMetrics) RecordOrderStatusChanged(ctx context.Context, from, to string, _ decimal.Decimal) {
	m.statusChanges.Inc(ctx, AttrFromStatus.String(from), AttrToStatus.String(to))
	if to == "CANCELLED" {
		m.ordersCanceled.Inc(ctx, AttrFromStatus.String(from))
	}
}
