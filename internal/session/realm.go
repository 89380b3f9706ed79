package session

import (
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/seed"
)

type Account interface {
	AccountID() string
	AccountEmail() string
	AccountPassword() string
	AccountName() string
	AccountRole() string
}

// Realm describes one independent population of accounts: where they are
// persisted, who is seeded, and how signup builds a new account.
type Realm[A Account] struct {
	Name        string
	AccountsKey string
	CurrentKey  string
	Seed        []A

	// NewAccount is nil for realms without signup.
	NewAccount func(id, email, password, name string) A
}

const (
	RealmCustomer = "customer"
	RealmAdmin    = "admin"
)

func CustomerRealm() Realm[models.Customer] {
	return Realm[models.Customer]{
		Name:        RealmCustomer,
		AccountsKey: "customers",
		CurrentKey:  "current-customer",
		Seed:        seed.MustLoad().Customers,
		NewAccount: func(id, email, password, name string) models.Customer {
			return models.Customer{ID: id, Email: email, Password: password, Name: name}
		},
	}
}

func AdminRealm() Realm[models.AdminUser] {
	return Realm[models.AdminUser]{
		Name:        RealmAdmin,
		AccountsKey: "admin-users",
		CurrentKey:  "current-admin",
		Seed:        seed.MustLoad().Admins,
	}
}
