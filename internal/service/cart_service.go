package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/metrics"

	"github.com/shopspring/decimal"
)

const cartOrigin = "cart"

// ItemViewState is the per-row UI state of one cart line.
type ItemViewState struct {
	DialogOpen       bool   `json:"dialog_open"`
	SelectedQuantity int    `json:"selected_quantity"`
	NotesDraft       string `json:"notes_draft"`
}

type CartSnapshot struct {
	Carts          []domain.Cart         `json:"carts"`
	TotalItemCount int                   `json:"total_item_count"`
	TotalPrice     decimal.Decimal       `json:"total_price"`
	ClearModalOpen bool                  `json:"clear_modal_open"`
	Items          map[int]ItemViewState `json:"items"`
}

// CartService mirrors the signed-in user's carts. The API is the source of
// truth: every successful mutation is followed by a full reload, never by a
// local patch. Mutations and their reloads are serialized, so the state shown
// always belongs to the last mutation issued.
type CartService struct {
	repo   CartRepository
	orders OrderRepository
	auth   Authenticator
	hub    *events.Hub
	logger *slog.Logger

	SignalTimeout time.Duration

	mutation sync.Mutex

	mu             sync.RWMutex
	carts          []domain.Cart
	views          map[int]*ItemViewState
	clearModalOpen bool

	unsubscribe []func()
}

func NewCartService(repo CartRepository, orders OrderRepository, auth Authenticator, hub *events.Hub, log *slog.Logger) *CartService {
	if log == nil {
		log = logger.Discard()
	}
	s := &CartService{
		repo:          repo,
		orders:        orders,
		auth:          auth,
		hub:           hub,
		logger:        log,
		SignalTimeout: 15 * time.Second,
		carts:         []domain.Cart{},
		views:         map[int]*ItemViewState{},
	}
	s.unsubscribe = []func(){
		hub.Subscribe(events.CartChanged, s.onCartChanged),
		hub.Subscribe(events.LoggedIn, s.onLoggedIn),
		hub.Subscribe(events.LoggedOut, s.onLoggedOut),
	}
	return s
}

// Close detaches the service from the hub.
func (s *CartService) Close() {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.unsubscribe = nil
}

func (s *CartService) Load(ctx context.Context) error {
	s.mutation.Lock()
	defer s.mutation.Unlock()
	return s.reload(ctx)
}

func (s *CartService) reload(ctx context.Context) error {
	token, ok := s.auth.Token(ctx)
	if !ok {
		s.reset()
		return nil
	}

	carts, err := s.repo.ListCarts(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			s.reset()
			s.auth.HandleUnauthorized(ctx)
		case errors.Is(err, domain.ErrUnreachable):
			s.logger.Warn("cart load never completed, resetting", "error", err)
			s.reset()
		default:
			s.logger.Warn("cart load failed, keeping previous state", "error", err)
		}
		return fmt.Errorf("load carts: %w", err)
	}

	s.replace(carts)
	return nil
}

func (s *CartService) replace(carts []domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts = carts

	present := map[int]domain.CartItem{}
	for _, cart := range carts {
		for _, item := range cart.Items {
			present[item.ID] = item
		}
	}
	for id, view := range s.views {
		item, ok := present[id]
		if !ok {
			delete(s.views, id)
			continue
		}
		if !view.DialogOpen {
			view.SelectedQuantity = item.Quantity
			view.NotesDraft = item.NotesText()
		}
	}
	metrics.CartItems.Set(float64(domain.TotalItemCount(carts)))
}

func (s *CartService) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts = []domain.Cart{}
	s.views = map[int]*ItemViewState{}
	metrics.CartItems.Set(0)
}

// mutate runs one API call with the current token, then reloads and
// announces the change. A failed call leaves the local state as it was.
func (s *CartService) mutate(ctx context.Context, action string, call func(token string) error) error {
	token, ok := s.auth.Token(ctx)
	if !ok {
		s.hub.Publish(events.Signal{Kind: events.LoginRequired, Origin: cartOrigin})
		return ErrLoginRequired
	}

	if err := call(token); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.reset()
			s.auth.HandleUnauthorized(ctx)
		}
		s.logger.Warn("cart mutation failed", "action", action, "error", err)
		return fmt.Errorf("%s: %w", action, err)
	}

	if err := s.reload(ctx); err != nil {
		s.logger.Warn("reload after mutation failed", "action", action, "error", err)
	}
	s.hub.Publish(events.Signal{Kind: events.CartChanged, Origin: cartOrigin})
	return nil
}

func (s *CartService) AddItem(ctx context.Context, input domain.AddItemInput) error {
	s.mutation.Lock()
	defer s.mutation.Unlock()

	if _, ok := s.auth.Token(ctx); !ok {
		s.hub.Publish(events.Signal{Kind: events.LoginRequired, Origin: cartOrigin})
		return ErrLoginRequired
	}
	if input.MenuID <= 0 || input.RestaurantID <= 0 {
		return ErrInvalidItem
	}
	if input.Quantity < 1 {
		return ErrInvalidQuantity
	}

	return s.mutate(ctx, "add item", func(token string) error {
		return s.repo.AddItem(ctx, token, input)
	})
}

// UpdateQuantity ignores quantities below 1: no request is sent and nothing changes.
func (s *CartService) UpdateQuantity(ctx context.Context, itemID, quantity int) error {
	if quantity < 1 {
		return nil
	}
	s.mutation.Lock()
	defer s.mutation.Unlock()

	return s.mutate(ctx, "update quantity", func(token string) error {
		return s.repo.UpdateItemQuantity(ctx, token, itemID, quantity)
	})
}

func (s *CartService) UpdateNotes(ctx context.Context, itemID int, text string) error {
	s.mutation.Lock()
	defer s.mutation.Unlock()

	notes := domain.NormalizeNotes(text)
	return s.mutate(ctx, "update notes", func(token string) error {
		return s.repo.UpdateItemNotes(ctx, token, itemID, notes)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, itemID int) error {
	s.mutation.Lock()
	defer s.mutation.Unlock()

	return s.mutate(ctx, "remove item", func(token string) error {
		return s.repo.RemoveItem(ctx, token, itemID)
	})
}

// RequestClearAll opens the confirmation modal; nothing is deleted yet.
func (s *CartService) RequestClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearModalOpen = true
}

func (s *CartService) CancelClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearModalOpen = false
}

func (s *CartService) ConfirmClearAll(ctx context.Context) error {
	s.mutation.Lock()
	defer s.mutation.Unlock()

	s.mu.Lock()
	open := s.clearModalOpen
	s.clearModalOpen = false
	s.mu.Unlock()
	if !open {
		return ErrConfirmationRequired
	}

	return s.mutate(ctx, "clear cart", func(token string) error {
		return s.repo.ClearCart(ctx, token)
	})
}

// Checkout turns every non-empty cart into an order and returns the order id.
// The follow-up cart clear is best effort: once the order exists, its
// failure is only logged.
func (s *CartService) Checkout(ctx context.Context, notes string) (int, error) {
	s.mutation.Lock()
	defer s.mutation.Unlock()

	token, ok := s.auth.Token(ctx)
	if !ok {
		s.hub.Publish(events.Signal{Kind: events.LoginRequired, Origin: cartOrigin})
		return 0, ErrLoginRequired
	}

	s.mu.RLock()
	empty := len(domain.CartsWithItems(s.carts)) == 0
	s.mu.RUnlock()
	if empty {
		return 0, ErrCartEmpty
	}

	orderID, err := s.orders.CreateOrder(ctx, token, notes)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.reset()
			s.auth.HandleUnauthorized(ctx)
		}
		s.logger.Warn("checkout failed", "error", err)
		return 0, fmt.Errorf("checkout: %w", err)
	}

	s.logger.Info("order placed", "order_id", orderID)
	s.reset()
	s.hub.Publish(events.Signal{Kind: events.OrderPlaced, Origin: cartOrigin, OrderID: orderID})
	s.hub.Publish(events.Signal{Kind: events.CartChanged, Origin: cartOrigin})

	if err := s.repo.ClearCart(ctx, token); err != nil {
		s.logger.Warn("cart clear after checkout failed", "order_id", orderID, "error", err)
	}
	return orderID, nil
}

// Carts returns the carts that have at least one item.
func (s *CartService) Carts() []domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCarts(domain.CartsWithItems(s.carts))
}

func (s *CartService) TotalItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.TotalItemCount(s.carts)
}

func (s *CartService) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.TotalPrice(s.carts)
}

func (s *CartService) ClearModalOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clearModalOpen
}

func (s *CartService) Snapshot() CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make(map[int]ItemViewState, len(s.views))
	for id, view := range s.views {
		items[id] = *view
	}
	return CartSnapshot{
		Carts:          copyCarts(domain.CartsWithItems(s.carts)),
		TotalItemCount: domain.TotalItemCount(s.carts),
		TotalPrice:     domain.TotalPrice(s.carts),
		ClearModalOpen: s.clearModalOpen,
		Items:          items,
	}
}

func (s *CartService) onCartChanged(signal events.Signal) {
	if signal.Origin == cartOrigin {
		return
	}
	s.loadFromSignal(signal)
}

func (s *CartService) onLoggedIn(signal events.Signal) {
	s.loadFromSignal(signal)
}

func (s *CartService) onLoggedOut(events.Signal) {
	s.mu.Lock()
	s.clearModalOpen = false
	s.mu.Unlock()
	s.reset()
}

func (s *CartService) loadFromSignal(signal events.Signal) {
	ctx, cancel := context.WithTimeout(context.Background(), s.SignalTimeout)
	defer cancel()
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("cart reload on signal failed", "kind", signal.Kind, "origin", signal.Origin, "error", err)
	}
}

func copyCarts(carts []domain.Cart) []domain.Cart {
	out := make([]domain.Cart, len(carts))
	for i, cart := range carts {
		out[i] = cart
		out[i].Items = append([]domain.CartItem(nil), cart.Items...)
	}
	return out
}

var _ CartServiceInterface = (*CartService)(nil)
