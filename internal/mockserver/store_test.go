package mockserver

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, Seed(s))
	return s
}

func TestProductsFilterSortPage(t *testing.T) {
	s := seeded(t)

	tests := []struct {
		name  string
		q     ProductQuery
		ids   []int64
		total int
	}{
		{"all", ProductQuery{}, []int64{1, 2, 3, 4, 5}, 5},
		{"class", ProductQuery{Class: "Lighting"}, []int64{3, 4}, 2},
		{"name", ProductQuery{Name: "desk"}, []int64{1, 2, 3}, 3},
		{"price band", ProductQuery{
			MinPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(20), Valid: true},
			MaxPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(90), Valid: true},
		}, []int64{2, 3, 4}, 3},
		{"cheapest first", ProductQuery{SortBy: "product_price", PageSize: 2}, []int64{5, 3}, 5},
		{"dearest first", ProductQuery{SortBy: "product_price", Desc: true, PageSize: 1}, []int64{1}, 5},
		{"last page", ProductQuery{Page: 3, PageSize: 2}, []int64{5}, 5},
		{"past the end", ProductQuery{Page: 9, PageSize: 2}, []int64{}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, total := s.Products(tt.q)
			ids := []int64{}
			for _, p := range page {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestToggleLike(t *testing.T) {
	s := seeded(t)

	liked, n, err := s.ToggleLike(2, 1)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, n)

	liked, n, err = s.ToggleLike(2, 1)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, n)

	_, _, err = s.ToggleLike(2, 42)
	assert.ErrorIs(t, err, errNotFound)
}

func TestCartAndOrders(t *testing.T) {
	s := seeded(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	cart, err := s.AddToCart(shopapi.OrderPayload{UserID: 2, Items: []shopapi.OrderItem{{ProductID: 1, ProductNumber: 1}, {ProductID: 2, ProductNumber: 2}}})
	require.NoError(t, err)
	assert.Len(t, cart, 2)

	_, err = s.SetCartQuantity(2, 3, 1)
	assert.ErrorIs(t, err, errNotFound)

	orders, err := s.PlaceOrder(shopapi.OrderPayload{UserID: 2, Address: "1 Market Street", Items: []shopapi.OrderItem{{ProductID: 1, ProductNumber: 1}}})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, shopapi.OrderStatePending, orders[0].State)
	assert.Equal(t, at, orders[0].CreatedAt)

	cart, err = s.SetCartQuantity(2, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []shopapi.CartItem{{ProductID: 2, UserID: 2, Quantity: 4}}, cart, "ordered line leaves the cart")

	_, err = s.PlaceOrder(shopapi.OrderPayload{UserID: 9, Items: []shopapi.OrderItem{{ProductID: 1, ProductNumber: 1}}})
	assert.ErrorIs(t, err, errNotFound)
}

func TestOrderStateAndAddress(t *testing.T) {
	s := seeded(t)
	orders, err := s.PlaceOrder(shopapi.OrderPayload{UserID: 2, Items: []shopapi.OrderItem{{ProductID: 3, ProductNumber: 1}}})
	require.NoError(t, err)
	id := orders[0].ID

	o, err := s.SetOrderAddress(id, "2 Harbour Road")
	require.NoError(t, err)
	assert.Equal(t, "2 Harbour Road", o.Address)

	_, err = s.SetOrderState(id, "lost")
	assert.ErrorIs(t, err, errUnknownState)

	_, err = s.SetOrderState(id, shopapi.OrderStateAwaitingReceipt)
	require.NoError(t, err)
	_, err = s.SetOrderAddress(id, "elsewhere")
	assert.ErrorIs(t, err, errNotPending)

	assert.Len(t, s.Orders(shopapi.OrderStateAwaitingReceipt, 2), 1)
	assert.Empty(t, s.Orders(shopapi.OrderStatePending, 0))

	require.NoError(t, s.DeleteOrder(id))
	assert.ErrorIs(t, s.DeleteOrder(id), errNotFound)
}

func TestUsers(t *testing.T) {
	s := seeded(t)

	_, err := s.Register("ALICE@shop.local", "whatever", "", false)
	assert.ErrorIs(t, err, errEmailTaken)

	u, err := s.Register("dave@shop.local", "dave1234", "", false)
	require.NoError(t, err)
	assert.Equal(t, "dave", u.Username)

	_, err = s.Authenticate("dave@shop.local", "nope")
	assert.ErrorIs(t, err, errWrongPass)
	_, err = s.Authenticate("nobody@shop.local", "nope")
	assert.ErrorIs(t, err, errNotFound)

	require.NoError(t, s.ChangePassword(u.ID, "dave1234", "dave5678"))
	_, err = s.Authenticate("dave@shop.local", "dave5678")
	assert.NoError(t, err)

	assert.Len(t, s.SearchUsers(shopapi.UserQuery{Email: "shop.local"}), 3)
	assert.Len(t, s.SearchUsers(shopapi.UserQuery{Username: "ali"}), 1)

	require.NoError(t, s.DeleteUser(u.ID))
	_, err = s.User(u.ID)
	assert.ErrorIs(t, err, errNotFound)
}
