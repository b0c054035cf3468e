package service

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

type CartRepository interface {
	ListCarts(ctx context.Context, token string) ([]domain.Cart, error)
	AddItem(ctx context.Context, token string, input domain.AddItemInput) error
	UpdateItemQuantity(ctx context.Context, token string, itemID, quantity int) error
	UpdateItemNotes(ctx context.Context, token string, itemID int, notes *string) error
	RemoveItem(ctx context.Context, token string, itemID int) error
	ClearCart(ctx context.Context, token string) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, token, notes string) (int, error)
	GetOrder(ctx context.Context, token string, orderID int) (*domain.Order, error)
	ListOrders(ctx context.Context, token string) ([]domain.Order, error)
	ConfirmPayment(ctx context.Context, token string, orderID int, confirmation domain.PaymentConfirmation) error
}

type AuthRepository interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
}

type CatalogRepository interface {
	ListRestaurants(ctx context.Context, token string) ([]domain.RestaurantSummary, error)
	ListMenus(ctx context.Context, token string, restaurantID int) ([]domain.MenuSummary, error)
}

type PaymentAdminRepository interface {
	ListPayments(ctx context.Context, token string, status domain.PaymentStatus) ([]domain.Payment, error)
	VerifyPayment(ctx context.Context, token string, paymentID int) error
	RejectPayment(ctx context.Context, token string, paymentID int, notes string) error
}

// KeyValueStore is where the signed-in session lives between requests.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Authenticator is the slice of the auth context that other services need.
type Authenticator interface {
	Token(ctx context.Context) (string, bool)
	HandleUnauthorized(ctx context.Context)
}

type AuthServiceInterface interface {
	Authenticator
	User(ctx context.Context) (*domain.User, bool)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	CheckExpiry(ctx context.Context) bool
}

type CartServiceInterface interface {
	Load(ctx context.Context) error
	AddItem(ctx context.Context, input domain.AddItemInput) error
	UpdateQuantity(ctx context.Context, itemID, quantity int) error
	UpdateNotes(ctx context.Context, itemID int, text string) error
	RemoveItem(ctx context.Context, itemID int) error
	RequestClearAll()
	CancelClearAll()
	ConfirmClearAll(ctx context.Context) error
	Checkout(ctx context.Context, notes string) (int, error)
	Snapshot() CartSnapshot

	OpenItemDialog(itemID int) (ItemViewState, error)
	CloseItemDialog(itemID int)
	SelectQuantity(itemID, quantity int) (ItemViewState, error)
	DraftNotes(itemID int, text string) (ItemViewState, error)
	ApplyItemDialog(ctx context.Context, itemID int) error
}

var (
	_ CartRepository         = (*storage.APIClient)(nil)
	_ OrderRepository        = (*storage.APIClient)(nil)
	_ AuthRepository         = (*storage.APIClient)(nil)
	_ CatalogRepository      = (*storage.APIClient)(nil)
	_ PaymentAdminRepository = (*storage.APIClient)(nil)
	_ KeyValueStore          = (*storage.MemoryStore)(nil)
	_ KeyValueStore          = (*storage.FileStore)(nil)
	_ KeyValueStore          = (*storage.RedisStore)(nil)
)
