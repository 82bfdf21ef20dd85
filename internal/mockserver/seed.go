package mockserver

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

// Seeded accounts.
const (
	ManagerEmail    = "admin@shop.local"
	ManagerPassword = "admin123"
	ShopperEmail    = "alice@shop.local"
	ShopperPassword = "alice123"
)

var seedProducts = []shopapi.Product{
	{Class: "furniture", Name: "Oak desk", Description: "120 x 60 cm", Price: decimal.RequireFromString("249.00")},
	{Class: "furniture", Name: "Desk chair", Price: decimal.RequireFromString("89.90")},
	{Class: "lighting", Name: "Desk lamp", Price: decimal.RequireFromString("24.50")},
	{Class: "lighting", Name: "Floor lamp", Price: decimal.RequireFromString("59.00")},
	{Class: "stationery", Name: "Notebook A5", Price: decimal.RequireFromString("3.75")},
}

// Seed fills store with a manager, a shopper with one address, and a small
// catalog.
func Seed(store *Store) error {
	if _, err := store.Register(ManagerEmail, ManagerPassword, "admin", true); err != nil {
		return err
	}
	alice, err := store.Register(ShopperEmail, ShopperPassword, "alice", false)
	if err != nil {
		return err
	}
	if _, err := store.UpdateUser(alice.ID, func(u *shopapi.User) error {
		u.Addresses = []string{"1 Market Street"}
		return nil
	}); err != nil {
		return err
	}

	for _, p := range seedProducts {
		store.AddProduct(p)
	}
	return nil
}
