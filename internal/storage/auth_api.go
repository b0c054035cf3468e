package storage

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/domain"
)

func (c *APIClient) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var session domain.Session
	if err := c.doJSON(ctx, "auth.login", http.MethodPost, "/api/auth/login", "", payload, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, errors.New("auth.login: response carried no token")
	}
	if session.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(session.ExpiresIn) * time.Second)
	}
	return &session, nil
}

func (c *APIClient) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, "auth.logout", http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *APIClient) ListRestaurants(ctx context.Context, token string) ([]domain.RestaurantSummary, error) {
	var restaurants []domain.RestaurantSummary
	if err := c.doJSON(ctx, "catalog.restaurants", http.MethodGet, "/api/restaurants", token, nil, &restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (c *APIClient) ListMenus(ctx context.Context, token string, restaurantID int) ([]domain.MenuSummary, error) {
	path := "/api/restaurants/" + strconv.Itoa(restaurantID) + "/menus"
	var menus []domain.MenuSummary
	if err := c.doJSON(ctx, "catalog.menus", http.MethodGet, path, token, nil, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}
