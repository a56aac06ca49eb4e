package store

import (
	"context"
	"errors"
	"time"

	"valuefind/internal/roles"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Accounts interface {
		Create(context.Context, *Account) error
		GetByID(context.Context, string) (*Account, error)
		GetByEmail(context.Context, string) (*Account, error)
		EmailExists(context.Context, string) (bool, error)
		PhoneExists(context.Context, string) (bool, error)
		RoleDocument(context.Context, string) (roles.Map, int64, error)
		CompareAndSwapRoles(context.Context, string, roles.Map, int64) (bool, error)
		CurrentRole(context.Context, string) (roles.Kind, error)
		SetCurrentRole(context.Context, string, roles.Kind) error
		SetRefreshToken(context.Context, string, string) error
		SetPassword(context.Context, string, []byte) error
		SetAvatarURL(context.Context, string, string) error
		UpdateProfile(context.Context, string, string, string) error
		ListByVerificationState(context.Context, roles.VerificationState) ([]Account, error)
	}
	Territories interface {
		Create(context.Context, *Territory) error
		GetByPincode(context.Context, string) (*Territory, error)
		List(context.Context) ([]Territory, error)
		Update(context.Context, *Territory) error
		AssignOperator(context.Context, string, string) error
	}
	Categories interface {
		Create(context.Context, *Category) error
		List(context.Context, bool) ([]Category, error)
		Update(context.Context, *Category) error
		Delete(context.Context, int64) error
	}
	Products interface {
		Create(context.Context, *Product) error
		GetByID(context.Context, int64) (*Product, error)
		ListByCategory(context.Context, int64) ([]Product, error)
		ListByOwner(context.Context, string) ([]Product, error)
		Update(context.Context, *Product) error
		AddImageURL(context.Context, int64, string) error
	}
	Orders interface {
		Create(context.Context, *Order) error
		GetByID(context.Context, int64) (*Order, error)
		ListByCustomer(context.Context, string) ([]Order, error)
		ListByPincodes(context.Context, string, []string) ([]Order, error)
		UpdateStatus(context.Context, int64, string) error
	}
	PushTokens interface {
		Register(context.Context, string, string) error
		Remove(context.Context, string, string) error
		ListByAccount(context.Context, string) ([]string, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Accounts:    &AccountsStore{db},
		Territories: &TerritoriesStore{db},
		Categories:  &CategoriesStore{db},
		Products:    &ProductsStore{db},
		Orders:      &OrdersStore{db},
		PushTokens:  &PushTokensStore{db},
	}
}
