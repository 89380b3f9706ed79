package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/seed"
)

type mockDispatcher struct {
	events []events.Event
}

func (m *mockDispatcher) Dispatch(_ context.Context, e events.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockDispatcher) types() []string {
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type())
	}
	return out
}

func setup(t *testing.T) (*Store, *mockDispatcher) {
	t.Helper()

	d := &mockDispatcher{}
	n := 0
	s := New(seed.MustLoad(),
		WithDispatcher(d),
		WithClock(func() time.Time { return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC) }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("gen-%d", n) }),
	)
	return s, d
}

func counts(s *Store) map[string]int {
	out := map[string]int{}
	for _, c := range s.Categories() {
		out[c.Name] = c.ProductCount
	}
	return out
}

func requireCountsConsistent(t *testing.T, s *Store) {
	t.Helper()
	byName := map[string]int{}
	for _, p := range s.Products() {
		byName[p.Category]++
	}
	for _, c := range s.Categories() {
		assert.Equal(t, byName[c.Name], c.ProductCount, "category %q", c.Name)
	}
}

func strp(s string) *string { return &s }

func TestNew_RecomputesSeedCounts(t *testing.T) {
	t.Parallel()

	s, _ := setup(t)
	assert.Equal(t, map[string]int{"Electronics": 2, "Clothing": 1, "Home & Garden": 1, "Sports": 1}, counts(s))
	assert.Len(t, s.Products(), 5)
	assert.Len(t, s.Orders(), 3)
}

func TestAddProduct(t *testing.T) {
	t.Parallel()

	s, d := setup(t)
	ctx := context.Background()

	p := s.AddProduct(ctx, ProductInput{Name: "Laptop", Description: "Fast", Price: 999, Category: "Electronics", Stock: 10})
	assert.Equal(t, "gen-1", p.ID)
	assert.Equal(t, "2025-03-14", p.CreatedAt)
	assert.NotNil(t, p.Reviews)
	assert.Empty(t, p.Reviews)

	got, ok := s.GetProduct("gen-1")
	require.True(t, ok)
	assert.Equal(t, p, got)
	assert.Equal(t, 3, counts(s)["Electronics"])
	requireCountsConsistent(t, s)
	assert.Equal(t, []string{"product_created"}, d.types())
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	s, d := setup(t)
	ctx := context.Background()

	price := 249.5
	p, ok := s.UpdateProduct(ctx, "1", ProductPatch{Price: &price, Category: strp("Sports")})
	require.True(t, ok)
	assert.Equal(t, 249.5, p.Price)
	assert.Equal(t, "Wireless Headphones", p.Name)
	assert.Equal(t, map[string]int{"Electronics": 1, "Clothing": 1, "Home & Garden": 1, "Sports": 2}, counts(s))

	_, ok = s.UpdateProduct(ctx, "missing", ProductPatch{Name: strp("x")})
	assert.False(t, ok)
	assert.Len(t, s.Products(), 5)
	assert.Equal(t, []string{"product_updated"}, d.types())
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	s, d := setup(t)
	ctx := context.Background()

	require.True(t, s.DeleteProduct(ctx, "2"))
	_, ok := s.GetProduct("2")
	assert.False(t, ok)
	assert.Equal(t, 1, counts(s)["Electronics"])

	assert.False(t, s.DeleteProduct(ctx, "2"))
	assert.Len(t, s.Products(), 4)
	assert.Equal(t, []string{"product_deleted"}, d.types())
}

func TestGetters_ReturnCopies(t *testing.T) {
	t.Parallel()

	s, _ := setup(t)

	p, ok := s.GetProduct("1")
	require.True(t, ok)
	require.NotEmpty(t, p.Reviews)
	p.Name = "mutated"
	p.Reviews[0].Comment = "mutated"

	again, _ := s.GetProduct("1")
	assert.Equal(t, "Wireless Headphones", again.Name)
	assert.NotEqual(t, "mutated", again.Reviews[0].Comment)

	orders := s.Orders()
	orders[0].Products[0].ProductName = "mutated"
	o, _ := s.GetOrder(orders[0].ID)
	assert.NotEqual(t, "mutated", o.Products[0].ProductName)
}

func TestAddCategory_StartsAtZero(t *testing.T) {
	t.Parallel()

	s, _ := setup(t)
	ctx := context.Background()

	s.AddProduct(ctx, ProductInput{Name: "Novel", Category: "Books"})
	c := s.AddCategory(ctx, CategoryInput{Name: "Books", Description: "Reading"})
	assert.Equal(t, 0, c.ProductCount)
	assert.Equal(t, 0, counts(s)["Books"])

	s.AddProduct(ctx, ProductInput{Name: "Atlas", Category: "Books"})
	assert.Equal(t, 2, counts(s)["Books"])
}

func TestUpdateCategory_RenameCascades(t *testing.T) {
	t.Parallel()

	s, d := setup(t)
	ctx := context.Background()

	c, ok := s.UpdateCategory(ctx, "1", CategoryPatch{Name: strp("Gadgets")})
	require.True(t, ok)
	assert.Equal(t, "Gadgets", c.Name)
	assert.Equal(t, 2, c.ProductCount)

	for _, id := range []string{"1", "2"} {
		p, _ := s.GetProduct(id)
		assert.Equal(t, "Gadgets", p.Category)
	}
	assert.Empty(t, s.Browse(Filter{Category: "Electronics"}))
	requireCountsConsistent(t, s)

	require.Equal(t, []string{"category_updated", "product_updated", "product_updated"}, d.types())
	ev, ok := d.events[0].(events.CategoryUpdated)
	require.True(t, ok)
	assert.Equal(t, "Electronics", ev.OldName)
	assert.Equal(t, 2, ev.ProductsRenamed)
	for _, e := range d.events[1:] {
		assert.Equal(t, "Gadgets", e.(events.ProductUpdated).Product.Category)
	}
}

func TestUpdateCategory_DescriptionOnlyEmitsNoProductEvents(t *testing.T) {
	t.Parallel()

	s, d := setup(t)
	_, ok := s.UpdateCategory(context.Background(), "1", CategoryPatch{Description: strp("Devices")})
	require.True(t, ok)
	assert.Equal(t, []string{"category_updated"}, d.types())
}

func TestUpdateCategory_DescriptionOnly(t *testing.T) {
	t.Parallel()

	s, _ := setup(t)
	c, ok := s.UpdateCategory(context.Background(), "2", CategoryPatch{Description: strp("Apparel")})
	require.True(t, ok)
	assert.Equal(t, "Clothing", c.Name)
	assert.Equal(t, "Apparel", c.Description)

	_, ok = s.UpdateCategory(context.Background(), "nope", CategoryPatch{Name: strp("x")})
	assert.False(t, ok)
}

func TestDeleteCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		id        string
		prepare   func(s *Store)
		wantErr   error
		wantCount int
	}{
		{name: "in use", id: "1", wantErr: ErrCategoryInUse, wantCount: 4},
		{name: "unknown id", id: "missing", wantCount: 4},
		{
			name: "empty after products removed",
			id:   "2",
			prepare: func(s *Store) {
				s.DeleteProduct(context.Background(), "5")
			},
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, _ := setup(t)
			if tt.prepare != nil {
				tt.prepare(s)
			}
			before := s.Products()
			err := s.DeleteCategory(context.Background(), tt.id)
			assert.Equal(t, before, s.Products())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, ErrConflict)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, s.Categories(), tt.wantCount)
		})
	}
}

func TestOrders(t *testing.T) {
	t.Parallel()

	s, d := setup(t)
	ctx := context.Background()

	o, ok := s.UpdateOrderStatus(ctx, "1", models.OrderStatusPending)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusPending, o.Status)

	_, ok = s.UpdateOrderStatus(ctx, "missing", models.OrderStatusShipped)
	assert.False(t, ok)

	require.True(t, s.DeleteOrder(ctx, "2"))
	assert.False(t, s.DeleteOrder(ctx, "2"))
	_, ok = s.GetOrder("2")
	assert.False(t, ok)
	assert.Len(t, s.Orders(), 2)

	assert.Equal(t, []string{"order_status_changed", "order_deleted"}, d.types())
	changed := d.events[0].(events.OrderStatusChanged)
	assert.Equal(t, models.OrderStatusDelivered, changed.From)
}

func TestSearchOrders(t *testing.T) {
	t.Parallel()

	s, _ := setup(t)

	tests := []struct {
		term string
		want []string
	}{
		{term: "", want: []string{"1", "2", "3"}},
		{term: "ALICE", want: []string{"1"}},
		{term: "bob@example", want: []string{"2"}},
		{term: "3", want: []string{"3"}},
		{term: "nobody", want: []string{}},
	}

	for _, tt := range tests {
		got := s.SearchOrders(tt.term)
		ids := make([]string, 0, len(got))
		for _, o := range got {
			ids = append(ids, o.ID)
		}
		assert.Equal(t, tt.want, ids, "term %q", tt.term)
	}
}

func TestBrowse(t *testing.T) {
	t.Parallel()

	s, _ := setup(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "default name order", filter: Filter{}, want: []string{"4", "3", "2", "5", "1"}},
		{name: "all category", filter: Filter{Category: AllCategories, Sort: SortName}, want: []string{"4", "3", "2", "5", "1"}},
		{name: "price low", filter: Filter{Sort: SortPriceLow}, want: []string{"4", "3", "5", "2", "1"}},
		{name: "price high", filter: Filter{Sort: SortPriceHigh}, want: []string{"1", "2", "5", "3", "4"}},
		{name: "rating", filter: Filter{Sort: SortRating}, want: []string{"2", "5", "1", "3", "4"}},
		{name: "newest", filter: Filter{Sort: SortNewest}, want: []string{"5", "4", "3", "2", "1"}},
		{name: "category", filter: Filter{Category: "Electronics"}, want: []string{"2", "1"}},
		{name: "search name case-insensitive", filter: Filter{Search: "WATCH"}, want: []string{"2"}},
		{name: "unknown sort", filter: Filter{Sort: "bogus", Category: "Electronics"}, want: []string{"2", "1"}},
		{name: "no match", filter: Filter{Search: "zzz"}, want: []string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := s.Browse(tt.filter)
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	s, _ := setup(t)
	st := s.Stats()
	assert.Equal(t, 809.95, st.TotalRevenue)
	assert.Equal(t, 5, st.TotalProducts)
	assert.Equal(t, 3, st.TotalOrders)
	assert.Equal(t, 3, st.Customers)
	assert.Equal(t, 0, st.LowStock)

	stock := 5
	s.UpdateProduct(context.Background(), "1", ProductPatch{Stock: &stock})
	assert.Equal(t, 1, s.Stats().LowStock)

	assert.Len(t, s.SalesSeries(), 8)
}

func TestCountsStayConsistent(t *testing.T) {
	t.Parallel()

	s, _ := setup(t)
	ctx := context.Background()

	s.AddProduct(ctx, ProductInput{Name: "Tent", Category: "Sports"})
	s.UpdateProduct(ctx, "4", ProductPatch{Category: strp("Electronics")})
	s.DeleteProduct(ctx, "5")
	s.UpdateCategory(ctx, "4", CategoryPatch{Name: strp("Outdoors")})
	requireCountsConsistent(t, s)
	assert.Equal(t, 2, counts(s)["Outdoors"])
	assert.Equal(t, 0, counts(s)["Clothing"])
}

type lastProductDispatcher struct {
	mu   sync.Mutex
	last map[string]models.Product
}

func (d *lastProductDispatcher) Dispatch(_ context.Context, e events.Event) error {
	if ev, ok := e.(events.ProductUpdated); ok {
		d.mu.Lock()
		d.last[ev.Product.ID] = ev.Product
		d.mu.Unlock()
	}
	return nil
}

func TestUpdateProduct_ConcurrentEventsFollowMutationOrder(t *testing.T) {
	t.Parallel()

	d := &lastProductDispatcher{last: map[string]models.Product{}}
	s := New(seed.MustLoad(), WithDispatcher(d))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		stock := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.UpdateProduct(ctx, "1", ProductPatch{Stock: &stock})
		}()
	}
	wg.Wait()

	p, ok := s.GetProduct("1")
	require.True(t, ok)
	assert.Equal(t, p.Stock, d.last["1"].Stock)
}
