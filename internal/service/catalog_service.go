package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var ErrAdminRequired = errors.New("admin or superadmin role required")

// CatalogService is the read-only browsing side: restaurants, menus and the
// order history the confirmation modal links to.
type CatalogService struct {
	catalog CatalogRepository
	orders  OrderRepository
	auth    Authenticator
}

func NewCatalogService(catalog CatalogRepository, orders OrderRepository, auth Authenticator) *CatalogService {
	return &CatalogService{catalog: catalog, orders: orders, auth: auth}
}

func (s *CatalogService) Restaurants(ctx context.Context) ([]domain.RestaurantSummary, error) {
	token, _ := s.auth.Token(ctx)
	restaurants, err := s.catalog.ListRestaurants(ctx, token)
	return restaurants, checkAuth(ctx, s.auth, err)
}

func (s *CatalogService) Menus(ctx context.Context, restaurantID int) ([]domain.MenuSummary, error) {
	token, _ := s.auth.Token(ctx)
	menus, err := s.catalog.ListMenus(ctx, token, restaurantID)
	return menus, checkAuth(ctx, s.auth, err)
}

func (s *CatalogService) OrderHistory(ctx context.Context) ([]domain.Order, error) {
	token, ok := s.auth.Token(ctx)
	if !ok {
		return nil, ErrLoginRequired
	}
	orders, err := s.orders.ListOrders(ctx, token)
	return orders, checkAuth(ctx, s.auth, err)
}

// PaymentAdminService moves payments out of pending. It is the only place a
// payment becomes completed or rejected.
type PaymentAdminService struct {
	repo PaymentAdminRepository
	auth AuthServiceInterface
}

func NewPaymentAdminService(repo PaymentAdminRepository, auth AuthServiceInterface) *PaymentAdminService {
	return &PaymentAdminService{repo: repo, auth: auth}
}

func (s *PaymentAdminService) adminToken(ctx context.Context) (string, error) {
	token, ok := s.auth.Token(ctx)
	if !ok {
		return "", ErrLoginRequired
	}
	if user, ok := s.auth.User(ctx); !ok || !user.IsAdmin() {
		return "", ErrAdminRequired
	}
	return token, nil
}

func (s *PaymentAdminService) Pending(ctx context.Context) ([]domain.Payment, error) {
	token, err := s.adminToken(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, token, domain.PaymentStatusPending)
	return payments, checkAuth(ctx, s.auth, err)
}

func (s *PaymentAdminService) Verify(ctx context.Context, paymentID int) error {
	token, err := s.adminToken(ctx)
	if err != nil {
		return err
	}
	return checkAuth(ctx, s.auth, s.repo.VerifyPayment(ctx, token, paymentID))
}

func (s *PaymentAdminService) Reject(ctx context.Context, paymentID int, notes string) error {
	token, err := s.adminToken(ctx)
	if err != nil {
		return err
	}
	return checkAuth(ctx, s.auth, s.repo.RejectPayment(ctx, token, paymentID, notes))
}

func checkAuth(ctx context.Context, auth Authenticator, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		auth.HandleUnauthorized(ctx)
	}
	return fmt.Errorf("api: %w", err)
}
