package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/logger"
)

// MaxProofSize is the largest accepted proof image, inclusive.
const MaxProofSize = 5 * 1024 * 1024

const OrderHistoryLink = "/orders"

type FlowState string

const (
	StateLoading       FlowState = "loading"
	StateAwaitingProof FlowState = "awaiting_payment_proof"
	StateSubmitting    FlowState = "submitting"
	StateConfirmed     FlowState = "confirmed"
	StateError         FlowState = "error"
)

type ConfirmedModal struct {
	OrderCode   string `json:"order_code"`
	HistoryLink string `json:"history_link"`
}

type FlowView struct {
	OrderID      int                  `json:"order_id"`
	State        FlowState            `json:"state"`
	Order        *domain.Order        `json:"order,omitempty"`
	Method       domain.PaymentMethod `json:"payment_method"`
	Notes        string               `json:"notes"`
	ProofName    string               `json:"proof_name,omitempty"`
	ProofSize    int                  `json:"proof_size,omitempty"`
	ProofPreview string               `json:"proof_preview,omitempty"`
	Error        string               `json:"error,omitempty"`
	Modal        *ConfirmedModal      `json:"modal,omitempty"`
}

// ConfirmationFlow drives one payment-confirmation page for one order.
// Client-side checks (proof present, size, image type) run before any upload.
type ConfirmationFlow struct {
	orderID      int
	orders       OrderRepository
	auth         Authenticator
	instructions InstructionProvider
	logger       *slog.Logger

	mu      sync.Mutex
	state   FlowState
	order   *domain.Order
	method  domain.PaymentMethod
	proof   *domain.ProofImage
	notes   string
	lastErr error
	modal   *ConfirmedModal
}

func NewConfirmationFlow(orderID int, orders OrderRepository, auth Authenticator, instructions InstructionProvider, log *slog.Logger) *ConfirmationFlow {
	if log == nil {
		log = logger.Discard()
	}
	return &ConfirmationFlow{
		orderID:      orderID,
		orders:       orders,
		auth:         auth,
		instructions: instructions,
		logger:       log.With("order_id", orderID),
		state:        StateLoading,
		method:       domain.PaymentQRIS,
	}
}

func (f *ConfirmationFlow) Load(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateLoading && f.state != StateError {
		f.mu.Unlock()
		return ErrInvalidState
	}
	f.state = StateLoading
	f.mu.Unlock()

	token, ok := f.auth.Token(ctx)
	if !ok {
		f.auth.HandleUnauthorized(ctx)
		f.fail(ErrLoginRequired)
		return ErrLoginRequired
	}

	order, err := f.orders.GetOrder(ctx, token, f.orderID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			f.auth.HandleUnauthorized(ctx)
		}
		if errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%w: %d", ErrOrderNotFound, f.orderID)
		}
		f.fail(err)
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = order
	f.state = StateAwaitingProof
	f.lastErr = nil
	return nil
}

func (f *ConfirmationFlow) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateError
	f.lastErr = err
}

func (f *ConfirmationFlow) SelectMethod(method domain.PaymentMethod) error {
	if method != domain.PaymentQRIS && method != domain.PaymentBankTransfer {
		return ErrUnsupportedMethod
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingProof {
		return ErrInvalidState
	}
	f.method = method
	return nil
}

func (f *ConfirmationFlow) SetNotes(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingProof {
		return ErrInvalidState
	}
	f.notes = strings.TrimSpace(text)
	return nil
}

// AttachProof validates and keeps the image for preview and upload. A
// rejected file leaves any previously attached proof in place.
func (f *ConfirmationFlow) AttachProof(filename string, data []byte) error {
	if len(data) == 0 {
		return ErrProofRequired
	}
	if len(data) > MaxProofSize {
		return ErrProofTooLarge
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return ErrProofNotImage
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingProof {
		return ErrInvalidState
	}
	f.proof = &domain.ProofImage{Filename: filename, ContentType: contentType, Data: data}
	return nil
}

// AttachProofReader reads at most one byte past the limit so oversized
// uploads are refused without buffering them whole.
func (f *ConfirmationFlow) AttachProofReader(filename string, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxProofSize+1))
	if err != nil {
		return fmt.Errorf("read proof image: %w", err)
	}
	return f.AttachProof(filename, data)
}

func (f *ConfirmationFlow) RemoveProof() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proof = nil
}

// Preview renders the attached proof as a data URI, read locally.
func (f *ConfirmationFlow) Preview() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return previewURI(f.proof)
}

func (f *ConfirmationFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateAwaitingProof {
		f.mu.Unlock()
		return ErrInvalidState
	}
	if f.proof == nil {
		f.lastErr = ErrProofRequired
		f.mu.Unlock()
		return ErrProofRequired
	}
	confirmation := domain.PaymentConfirmation{
		OrderCode:     f.order.OrderCode,
		PaymentMethod: f.method,
		Proof:         *f.proof,
		Notes:         f.notes,
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	token, ok := f.auth.Token(ctx)
	var err error
	if !ok {
		err = ErrLoginRequired
	} else {
		err = f.orders.ConfirmPayment(ctx, token, f.orderID, confirmation)
	}

	if err != nil && (!ok || errors.Is(err, domain.ErrUnauthorized)) {
		f.auth.HandleUnauthorized(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.logger.Warn("payment confirmation failed", "error", err)
		f.state = StateAwaitingProof
		f.lastErr = err
		return fmt.Errorf("confirm payment: %w", err)
	}

	f.logger.Info("payment confirmation submitted", "method", confirmation.PaymentMethod)
	f.state = StateConfirmed
	f.lastErr = nil
	f.modal = &ConfirmedModal{OrderCode: confirmation.OrderCode, HistoryLink: OrderHistoryLink}
	return nil
}

func (f *ConfirmationFlow) Instructions() (PaymentInstructions, error) {
	f.mu.Lock()
	method, order := f.method, f.order
	f.mu.Unlock()
	return f.instructions.For(method, order)
}

func (f *ConfirmationFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *ConfirmationFlow) Modal() *ConfirmedModal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modal
}

func (f *ConfirmationFlow) View() FlowView {
	f.mu.Lock()
	defer f.mu.Unlock()
	view := FlowView{
		OrderID: f.orderID,
		State:   f.state,
		Order:   f.order,
		Method:  f.method,
		Notes:   f.notes,
		Modal:   f.modal,
	}
	if f.proof != nil {
		view.ProofName = f.proof.Filename
		view.ProofSize = len(f.proof.Data)
		view.ProofPreview = previewURI(f.proof)
	}
	if f.lastErr != nil {
		view.Error = f.lastErr.Error()
	}
	return view
}

func previewURI(proof *domain.ProofImage) string {
	if proof == nil {
		return ""
	}
	return "data:" + proof.ContentType + ";base64," + base64.StdEncoding.EncodeToString(proof.Data)
}
