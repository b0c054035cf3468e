package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/service"
	"storefront/internal/storage"

	"github.com/gorilla/mux"
)

// maxProofForm bounds the multipart body; the proof itself is checked by the flow.
const maxProofForm = service.MaxProofSize + 1<<20

type Handler struct {
	Auth    service.AuthServiceInterface
	Cart    service.CartServiceInterface
	Catalog *service.CatalogService
	Admin   *service.PaymentAdminService
	Flows   *service.FlowRegistry
	Proxy   *Proxy
	logger  *slog.Logger
}

func NewHandler(auth service.AuthServiceInterface, cart service.CartServiceInterface, catalog *service.CatalogService, admin *service.PaymentAdminService, flows *service.FlowRegistry, proxy *Proxy, log *slog.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		Auth:    auth,
		Cart:    cart,
		Catalog: catalog,
		Admin:   admin,
		Flows:   flows,
		Proxy:   proxy,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	s := r.PathPrefix("/storefront").Subrouter()
	s.HandleFunc("/login", h.login).Methods("POST")
	s.HandleFunc("/logout", h.logout).Methods("POST")
	s.HandleFunc("/me", h.me).Methods("GET")

	s.HandleFunc("/restaurants", h.getRestaurants).Methods("GET")
	s.HandleFunc("/restaurants/{id}/menus", h.getMenus).Methods("GET")
	s.HandleFunc("/orders", h.getOrders).Methods("GET")

	s.HandleFunc("/cart", h.getCart).Methods("GET")
	s.HandleFunc("/cart/items", h.addItem).Methods("POST")
	s.HandleFunc("/cart/items/{id}/quantity", h.updateQuantity).Methods("PUT")
	s.HandleFunc("/cart/items/{id}/notes", h.updateNotes).Methods("PUT")
	s.HandleFunc("/cart/items/{id}", h.removeItem).Methods("DELETE")
	s.HandleFunc("/cart/items/{id}/dialog", h.openDialog).Methods("POST")
	s.HandleFunc("/cart/items/{id}/dialog", h.editDialog).Methods("PATCH")
	s.HandleFunc("/cart/items/{id}/dialog", h.closeDialog).Methods("DELETE")
	s.HandleFunc("/cart/items/{id}/dialog/apply", h.applyDialog).Methods("POST")
	s.HandleFunc("/cart/clear/request", h.requestClear).Methods("POST")
	s.HandleFunc("/cart/clear/cancel", h.cancelClear).Methods("POST")
	s.HandleFunc("/cart/clear/confirm", h.confirmClear).Methods("POST")
	s.HandleFunc("/checkout", h.checkout).Methods("POST")

	s.HandleFunc("/orders/{id}/confirmation", h.getConfirmation).Methods("GET")
	s.HandleFunc("/orders/{id}/confirmation/method", h.selectMethod).Methods("PUT")
	s.HandleFunc("/orders/{id}/confirmation/notes", h.setConfirmationNotes).Methods("PUT")
	s.HandleFunc("/orders/{id}/confirmation/proof", h.uploadProof).Methods("POST")
	s.HandleFunc("/orders/{id}/confirmation/proof", h.removeProof).Methods("DELETE")
	s.HandleFunc("/orders/{id}/confirmation/submit", h.submitConfirmation).Methods("POST")
	s.HandleFunc("/orders/{id}/confirmation/instructions", h.getInstructions).Methods("GET")
	s.HandleFunc("/orders/{id}/confirmation/qris.png", h.getQRIS).Methods("GET")

	s.HandleFunc("/admin/payments", h.getPendingPayments).Methods("GET")
	s.HandleFunc("/admin/payments/{id}/verify", h.verifyPayment).Methods("PUT")
	s.HandleFunc("/admin/payments/{id}/reject", h.rejectPayment).Methods("PUT")

	if h.Proxy != nil {
		r.PathPrefix("/api/").Handler(h.Proxy)
	}
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response{Success: status < 400, Data: data})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response{Success: false, Message: err.Error()})
}

func statusFor(err error) int {
	var apiErr *storage.APIError
	switch {
	case errors.Is(err, service.ErrLoginRequired), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrItemNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrProofTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrConfirmationRequired),
		errors.Is(err, service.ErrProofRequired),
		errors.Is(err, service.ErrProofNotImage),
		errors.Is(err, service.ErrUnsupportedMethod):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnreachable):
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

var errBadID = errors.New("invalid id")

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errBadID, mux.Vars(r)["id"])
	}
	return id, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}
	return nil
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "storefront",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	user, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	if h.Auth.CheckExpiry(r.Context()) {
		h.writeError(w, r, service.ErrLoginRequired)
		return
	}
	user, ok := h.Auth.User(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrLoginRequired)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) getRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Catalog.Restaurants(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getMenus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	menus, err := h.Catalog.Menus(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, menus)
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Catalog.OrderHistory(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type cartView struct {
	service.CartSnapshot
	TotalLabel string `json:"total_label"`
}

func (h *Handler) cartView() cartView {
	snapshot := h.Cart.Snapshot()
	return cartView{CartSnapshot: snapshot, TotalLabel: domain.FormatRupiah(snapshot.TotalPrice)}
}

// getCart reloads before answering. When the reload fails for any reason
// other than the session, the last good cart is still sent along with the
// failure so the page can keep showing it.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Auth.Token(r.Context()); !ok {
		h.writeError(w, r, service.ErrLoginRequired)
		return
	}
	if err := h.Cart.Load(r.Context()); err != nil {
		status := statusFor(err)
		if status == http.StatusUnauthorized {
			h.writeError(w, r, err)
			return
		}
		h.logger.Warn("cart load failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(response{Success: false, Message: err.Error(), Data: h.cartView()})
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var input domain.AddItemInput
	if err := decode(r, &input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Cart.AddItem(r.Context(), input); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.cartView())
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Cart.UpdateQuantity(r.Context(), id, req.Quantity); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) updateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Cart.UpdateNotes(r.Context(), id, req.Notes); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Cart.RemoveItem(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) openDialog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.Cart.OpenItemDialog(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) editDialog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		Quantity *int    `json:"quantity"`
		Notes    *string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var view service.ItemViewState
	if req.Quantity != nil {
		if view, err = h.Cart.SelectQuantity(id, *req.Quantity); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if req.Notes != nil {
		if view, err = h.Cart.DraftNotes(id, *req.Notes); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) closeDialog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Cart.CloseItemDialog(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) applyDialog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Cart.ApplyItemDialog(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) requestClear(w http.ResponseWriter, r *http.Request) {
	h.Cart.RequestClearAll()
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) cancelClear(w http.ResponseWriter, r *http.Request) {
	h.Cart.CancelClearAll()
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) confirmClear(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.ConfirmClearAll(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	orderID, err := h.Cart.Checkout(r.Context(), req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"order_id": orderID,
		"next":     fmt.Sprintf("/storefront/orders/%d/confirmation", orderID),
	})
}

// flow returns the confirmation flow for the order in the path, loading it
// on first use or after a failed load.
func (h *Handler) flow(w http.ResponseWriter, r *http.Request) (*service.ConfirmationFlow, bool) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	flow, created := h.Flows.Get(id)
	if created || flow.State() == service.StateError {
		if err := flow.Load(r.Context()); err != nil {
			h.Flows.Drop(id)
			h.writeError(w, r, err)
			return nil, false
		}
	}
	return flow, true
}

func (h *Handler) getConfirmation(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) selectMethod(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flow(w, r)
	if !ok {
		return
	}
	var req struct {
		PaymentMethod domain.PaymentMethod `json:"payment_method"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := flow.SelectMethod(req.PaymentMethod); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) setConfirmationNotes(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flow(w, r)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := flow.SetNotes(req.Notes); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) uploadProof(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flow(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProofForm)
	if err := r.ParseMultipartForm(maxProofForm); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, service.ErrProofTooLarge)
			return
		}
		http.Error(w, "Error parsing the form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("proof_image")
	if err != nil {
		h.writeError(w, r, service.ErrProofRequired)
		return
	}
	defer file.Close()

	if err := flow.AttachProofReader(header.Filename, file); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) removeProof(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flow(w, r)
	if !ok {
		return
	}
	flow.RemoveProof()
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) submitConfirmation(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flow(w, r)
	if !ok {
		return
	}
	if err := flow.Submit(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) getInstructions(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flow(w, r)
	if !ok {
		return
	}
	instructions, err := flow.Instructions()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	instructions.QRCodePNG = nil
	writeJSON(w, http.StatusOK, instructions)
}

func (h *Handler) getQRIS(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flow(w, r)
	if !ok {
		return
	}
	instructions, err := flow.Instructions()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(instructions.QRCodePNG) == 0 {
		http.Error(w, "QR code not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(instructions.QRCodePNG)
}

func (h *Handler) getPendingPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Admin.Pending(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Admin.Verify(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) rejectPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Admin.Reject(r.Context(), id, req.Notes); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
