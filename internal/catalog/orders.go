package catalog

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
)

// UpdateOrderStatus allows any transition, including backwards ones.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	idx := s.orderIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger(ctx, "update_order_status").Warn("order_status_skipped", "order_id", id, "reason", "order not found")
		return models.Order{}, false
	}
	from := s.orders[idx].Status
	s.orders[idx].Status = status
	out := s.orders[idx].Clone()
	s.mu.Unlock()

	s.logger(ctx, "update_order_status").Info("order_status_changed", "order_id", id, "from", from, "to", status)
	s.emit(ctx, events.OrderStatusChanged{OrderID: id, From: from, To: status})
	return out, true
}

func (s *Store) DeleteOrder(ctx context.Context, id string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	idx := s.orderIndexLocked(id)
	if idx >= 0 {
		s.orders = append(s.orders[:idx], s.orders[idx+1:]...)
	}
	s.mu.Unlock()

	l := s.logger(ctx, "delete_order")
	if idx < 0 {
		l.Warn("order_delete_skipped", "order_id", id, "reason", "order not found")
		return false
	}
	l.Info("order_deleted", "order_id", id)
	s.emit(ctx, events.OrderDeleted{OrderID: id})
	return true
}

func (s *Store) GetOrder(id string) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.orderIndexLocked(id)
	if idx < 0 {
		return models.Order{}, false
	}
	return s.orders[idx].Clone(), true
}

func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneOrders(s.orders, nil)
}

// SearchOrders matches term case-insensitively against the customer's name
// and email and the order id. An empty term returns every order.
func (s *Store) SearchOrders(term string) []models.Order {
	term = strings.ToLower(strings.TrimSpace(term))

	s.mu.Lock()
	defer s.mu.Unlock()

	if term == "" {
		return cloneOrders(s.orders, nil)
	}
	return cloneOrders(s.orders, func(o models.Order) bool {
		return strings.Contains(strings.ToLower(o.CustomerName), term) ||
			strings.Contains(strings.ToLower(o.CustomerEmail), term) ||
			strings.Contains(strings.ToLower(o.ID), term)
	})
}

func cloneOrders(in []models.Order, keep func(models.Order) bool) []models.Order {
	out := make([]models.Order, 0, len(in))
	for _, o := range in {
		if keep == nil || keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (s *Store) orderIndexLocked(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}
