package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Orders records order workflow outcomes.
type Orders struct {
	created        prometheus.Counter
	cancelled      prometheus.Counter
	stockConflicts prometheus.Counter
	revenue        prometheus.Counter
}

// NewOrders registers order collectors on reg.
func NewOrders(reg prometheus.Registerer) *Orders {
	f := promauto.With(reg)
	return &Orders{
		created: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Number of orders placed",
		}),
		cancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_cancelled_total",
			Help: "Number of orders cancelled",
		}),
		stockConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_stock_conflicts_total",
			Help: "Order lines rejected for insufficient stock",
		}),
		revenue: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_order_revenue_total",
			Help: "Sum of placed order totals",
		}),
	}
}

func (m *Orders) OrderCreated(total decimal.Decimal) {
	m.created.Inc()
	v, _ := total.Float64()
	m.revenue.Add(v)
}

func (m *Orders) OrderCancelled() { m.cancelled.Inc() }

func (m *Orders) StockConflict() { m.stockConflicts.Inc() }
