package storage

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/domain"
)

type addItemRequest struct {
	MenuID       int     `json:"menu_id"`
	RestaurantID int     `json:"restaurant_id"`
	Quantity     int     `json:"quantity"`
	Notes        *string `json:"notes"`
}

func (c *APIClient) ListCarts(ctx context.Context, token string) ([]domain.Cart, error) {
	var carts []domain.Cart
	if err := c.doJSON(ctx, "cart.list", http.MethodGet, "/api/cart", token, nil, &carts); err != nil {
		return nil, err
	}
	if carts == nil {
		carts = []domain.Cart{}
	}
	return carts, nil
}

func (c *APIClient) AddItem(ctx context.Context, token string, input domain.AddItemInput) error {
	payload := addItemRequest{
		MenuID:       input.MenuID,
		RestaurantID: input.RestaurantID,
		Quantity:     input.Quantity,
		Notes:        domain.NormalizeNotes(input.Notes),
	}
	return c.doJSON(ctx, "cart.add_item", http.MethodPost, "/api/cart/add-item", token, payload, nil)
}

func (c *APIClient) UpdateItemQuantity(ctx context.Context, token string, itemID, quantity int) error {
	payload := map[string]any{"quantity": quantity}
	return c.doJSON(ctx, "cart.update_item", http.MethodPut, itemPath(itemID), token, payload, nil)
}

// UpdateItemNotes sends notes verbatim; nil is encoded as JSON null.
func (c *APIClient) UpdateItemNotes(ctx context.Context, token string, itemID int, notes *string) error {
	payload := map[string]any{"notes": notes}
	return c.doJSON(ctx, "cart.update_item", http.MethodPut, itemPath(itemID), token, payload, nil)
}

func (c *APIClient) RemoveItem(ctx context.Context, token string, itemID int) error {
	return c.doJSON(ctx, "cart.remove_item", http.MethodDelete, itemPath(itemID), token, nil, nil)
}

func (c *APIClient) ClearCart(ctx context.Context, token string) error {
	return c.doJSON(ctx, "cart.clear", http.MethodDelete, "/api/cart/clear", token, nil, nil)
}

func itemPath(itemID int) string {
	return "/api/cart/items/" + strconv.Itoa(itemID)
}
