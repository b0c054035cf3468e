package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

func (c *APIClient) CreateOrder(ctx context.Context, token, notes string) (int, error) {
	payload := map[string]any{"notes": domain.NormalizeNotes(notes)}
	var created domain.Order
	if err := c.doJSON(ctx, "orders.create", http.MethodPost, "/api/orders", token, payload, &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("orders.create: response carried no order id")
	}
	return created.ID, nil
}

func (c *APIClient) GetOrder(ctx context.Context, token string, orderID int) (*domain.Order, error) {
	var order domain.Order
	if err := c.doJSON(ctx, "orders.get", http.MethodGet, orderPath(orderID), token, nil, &order); err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, domain.ErrNotFound
	}
	return &order, nil
}

func (c *APIClient) ListOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.doJSON(ctx, "orders.list", http.MethodGet, "/api/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ConfirmPayment uploads the proof of payment as multipart/form-data.
func (c *APIClient) ConfirmPayment(ctx context.Context, token string, orderID int, confirmation domain.PaymentConfirmation) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"order_code", confirmation.OrderCode},
		{"payment_method", string(confirmation.PaymentMethod)},
	}
	if confirmation.Notes != "" {
		fields = append(fields, [2]string{"notes", confirmation.Notes})
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return fmt.Errorf("orders.confirm_payment: write %s: %w", field[0], err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="proof_image"; filename="%s"`, escapeQuotes(confirmation.Proof.Filename)))
	contentType := confirmation.Proof.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("orders.confirm_payment: create file part: %w", err)
	}
	if _, err := part.Write(confirmation.Proof.Data); err != nil {
		return fmt.Errorf("orders.confirm_payment: write file part: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("orders.confirm_payment: close form: %w", err)
	}

	return c.do(ctx, "orders.confirm_payment", http.MethodPost, orderPath(orderID)+"/confirm-payment", token, &buf, form.FormDataContentType(), nil)
}

func (c *APIClient) ListPayments(ctx context.Context, token string, status domain.PaymentStatus) ([]domain.Payment, error) {
	path := "/api/admin/payments"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var payments []domain.Payment
	if err := c.doJSON(ctx, "admin.payments.list", http.MethodGet, path, token, nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (c *APIClient) VerifyPayment(ctx context.Context, token string, paymentID int) error {
	return c.doJSON(ctx, "admin.payments.confirm", http.MethodPut, paymentPath(paymentID)+"/confirm", token, nil, nil)
}

func (c *APIClient) RejectPayment(ctx context.Context, token string, paymentID int, notes string) error {
	payload := map[string]any{"notes": domain.NormalizeNotes(notes)}
	return c.doJSON(ctx, "admin.payments.reject", http.MethodPut, paymentPath(paymentID)+"/reject", token, payload, nil)
}

func orderPath(orderID int) string {
	return "/api/orders/" + strconv.Itoa(orderID)
}

func paymentPath(paymentID int) string {
	return "/api/admin/payments/" + strconv.Itoa(paymentID)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
