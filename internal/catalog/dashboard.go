package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type DashboardStats struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalProducts int     `json:"totalProducts"`
	TotalOrders   int     `json:"totalOrders"`
	Customers     int     `json:"customers"`
	LowStock      int     `json:"lowStock"`
}

func (s *Store) Stats() DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	revenue := decimal.Zero
	emails := make(map[string]struct{}, len(s.orders))
	for _, o := range s.orders {
		revenue = revenue.Add(decimal.NewFromFloat(o.Total))
		emails[o.CustomerEmail] = struct{}{}
	}

	low := 0
	for _, p := range s.products {
		if models.StockStatusOf(p.Stock) != models.StockIn {
			low++
		}
	}

	return DashboardStats{
		TotalRevenue:  revenue.Round(2).InexactFloat64(),
		TotalProducts: len(s.products),
		TotalOrders:   len(s.orders),
		Customers:     len(emails),
		LowStock:      low,
	}
}

func (s *Store) SalesSeries() []models.SalesPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.SalesPoint, len(s.sales))
	copy(out, s.sales)
	return out
}
