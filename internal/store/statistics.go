package store

import (
	"github.com/shopspring/decimal"

	"grocery-backend/internal/models"
)

// StatisticsBuilder folds (status, paymentStatus, count, amount) buckets
// into models.OrderStatistics. Revenue counts completed payments only.
type StatisticsBuilder struct {
	stats   models.OrderStatistics
	revenue decimal.Decimal
}

func NewStatistics() *StatisticsBuilder {
	return &StatisticsBuilder{
		stats: models.OrderStatistics{
			ByStatus:        map[models.OrderStatus]int64{},
			ByPaymentStatus: map[models.PaymentStatus]int64{},
		},
		revenue: decimal.Zero,
	}
}

func (b *StatisticsBuilder) Add(status models.OrderStatus, payment models.PaymentStatus, count int64, amount float64) {
	b.stats.TotalOrders += count
	b.stats.ByStatus[status] += count
	b.stats.ByPaymentStatus[payment] += count
	if payment == models.PaymentStatusCompleted {
		b.revenue = b.revenue.Add(decimal.NewFromFloat(amount))
	}
}

func (b *StatisticsBuilder) Result() models.OrderStatistics {
	out := b.stats
	out.Revenue = b.revenue.Round(2).InexactFloat64()
	return out
}
