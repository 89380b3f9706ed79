package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestLoad_Collections(t *testing.T) {
	t.Parallel()

	d, err := Load()
	require.NoError(t, err)

	assert.Len(t, d.Products, 5)
	assert.Len(t, d.Categories, 4)
	assert.Len(t, d.Orders, 3)
	assert.Len(t, d.Sales, 8)
	require.Len(t, d.Customers, 1)
	require.Len(t, d.Admins, 1)

	assert.Equal(t, "customer@example.com", d.Customers[0].Email)
	assert.Equal(t, "customer123", d.Customers[0].Password)
	assert.Equal(t, models.RoleAdmin, d.Admins[0].Role)
	assert.Equal(t, models.OrderStatusShipped, d.Orders[1].Status)
	assert.Len(t, d.Orders[1].Products, 2)
}

func TestLoad_AttachesReviews(t *testing.T) {
	t.Parallel()

	d := MustLoad()

	assert.Len(t, d.Products[0].Reviews, 2)
	assert.Len(t, d.Products[1].Reviews, 1)
	assert.NotNil(t, d.Products[2].Reviews)
	assert.Empty(t, d.Products[2].Reviews)
	for _, r := range d.Products[0].Reviews {
		assert.Equal(t, "1", r.ProductID)
	}
}

func TestLoad_IndependentCopies(t *testing.T) {
	t.Parallel()

	a := MustLoad()
	b := MustLoad()
	a.Products[0].Name = "changed"

	assert.Equal(t, "Wireless Headphones", b.Products[0].Name)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("products: [unterminated"))
	require.Error(t, err)
}
