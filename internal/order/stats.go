package order

import (
	"time"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
)

// Stats summarises a set of orders per currency bucket.
type Stats struct {
	TotalAmount money.Money
	TotalPaid   money.Money
	TotalDebt   money.Money
	TodaySales  money.Money
	Orders      int
	ByStatus    map[string]int
}

// Summarize aggregates orders. Cancelled orders are counted by status but
// excluded from the money sums.
func Summarize(orders []model.Order, now time.Time) Stats {
	stats := Stats{
		TotalAmount: money.Zero(),
		TotalPaid:   money.Zero(),
		TotalDebt:   money.Zero(),
		TodaySales:  money.Zero(),
		ByStatus:    make(map[string]int),
	}
	today := startOfDay(now)

	for _, o := range orders {
		stats.Orders++
		stats.ByStatus[o.Data.Status]++
		if o.Data.Status == model.OrderStatusCancelled {
			continue
		}
		stats.TotalAmount = money.Add(stats.TotalAmount, o.Data.TotalAmount)
		stats.TotalPaid = money.Add(stats.TotalPaid, o.Data.PaidAmount)
		stats.TotalDebt = money.Add(stats.TotalDebt, o.Data.DebtAmount)
		if startOfDay(o.Data.CreatedAt.In(now.Location())).Equal(today) {
			stats.TodaySales = money.Add(stats.TodaySales, o.Data.TotalAmount)
		}
	}
	return stats
}
