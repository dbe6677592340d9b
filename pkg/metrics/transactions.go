package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Transaction outcome labels recorded by the checkout and billing services.
const (
	OutcomeCompleted         = "completed"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeInvalidAddress    = "invalid_address"
	OutcomeFailed            = "failed"
)

// TransactionMetrics counts checkout and point-of-sale outcomes.
type TransactionMetrics struct {
	checkouts  *prometheus.CounterVec
	localSales *prometheus.CounterVec
}

// NewTransactionMetrics registers the transaction counters. A nil registerer
// yields a no-op collector.
func NewTransactionMetrics(reg prometheus.Registerer) *TransactionMetrics {
	if reg == nil {
		return &TransactionMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "checkout_attempts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	localSales := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "local_sale_attempts_total",
		Help:      "Point-of-sale billing attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(checkouts, localSales)
	return &TransactionMetrics{
		checkouts:  checkouts,
		localSales: localSales,
	}
}

// IncCheckout increments the checkout counter for the given outcome.
func (t *TransactionMetrics) IncCheckout(outcome string) {
	if t == nil || t.checkouts == nil {
		return
	}
	t.checkouts.WithLabelValues(outcomeLabel(outcome)).Inc()
}

// IncLocalSale increments the point-of-sale counter for the given outcome.
func (t *TransactionMetrics) IncLocalSale(outcome string) {
	if t == nil || t.localSales == nil {
		return
	}
	t.localSales.WithLabelValues(outcomeLabel(outcome)).Inc()
}

func outcomeLabel(outcome string) string {
	if outcome == "" {
		return OutcomeFailed
	}
	return outcome
}
