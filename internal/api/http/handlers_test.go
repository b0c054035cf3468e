package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpapi "storefront/internal/api/http"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/mocks"
	"storefront/internal/service"
	"storefront/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const token = "tok-123"

type fixture struct {
	router  http.Handler
	handler *httpapi.Handler
	carts   *mocks.CartRepository
	orders  *mocks.OrderRepository
	catalog *mocks.CatalogRepository
	admin   *mocks.PaymentAdminRepository
	auth    *service.AuthService
}

func newFixture(t *testing.T, role string, proxyTarget string) *fixture {
	t.Helper()
	ctx := context.Background()
	hub := events.NewHub()
	auth := service.NewAuthService(storage.NewMemoryStore(), mocks.NewAuthRepository(t), hub, nil)
	if role != "" {
		require.NoError(t, auth.Establish(ctx, domain.Session{
			Token: token,
			User:  domain.User{ID: 7, Name: "Budi", Role: role},
		}))
	}

	f := &fixture{
		carts:   mocks.NewCartRepository(t),
		orders:  mocks.NewOrderRepository(t),
		catalog: mocks.NewCatalogRepository(t),
		admin:   mocks.NewPaymentAdminRepository(t),
		auth:    auth,
	}

	cart := service.NewCartService(f.carts, f.orders, auth, hub, nil)
	t.Cleanup(cart.Close)
	flows := service.NewFlowRegistry(func(orderID int) *service.ConfirmationFlow {
		return service.NewConfirmationFlow(orderID, f.orders, auth, service.InstructionProvider{}, nil)
	}, hub)
	t.Cleanup(flows.Close)

	var proxy *httpapi.Proxy
	if proxyTarget != "" {
		proxy = httpapi.NewProxy(proxyTarget, nil, auth, nil)
	}

	handler := httpapi.NewHandler(
		auth,
		cart,
		service.NewCatalogService(f.catalog, f.orders, auth),
		service.NewPaymentAdminService(f.admin, auth),
		flows,
		proxy,
		nil,
	)
	f.handler = handler
	f.router = httpapi.NewRouter(handler)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func oneCart() []domain.Cart {
	return []domain.Cart{{
		ID: 1, RestaurantID: 1,
		Items: []domain.CartItem{{ID: 11, CartID: 1, MenuID: 101, Quantity: 2, UnitPrice: decimal.NewFromInt(15000)}},
	}}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, "", "")

	assert.Equal(t, http.StatusOK, f.do("GET", "/health", "").Code)

	w := f.do("GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
}

func TestAddItemHandler(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		body      string
		setupMock func(*mocks.CartRepository)
		wantCode  int
	}{
		{
			name:      "signed out",
			body:      `{"menu_id":101,"restaurant_id":1,"quantity":1}`,
			setupMock: func(m *mocks.CartRepository) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:      "invalid JSON",
			role:      "customer",
			body:      `{invalid}`,
			setupMock: func(m *mocks.CartRepository) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "invalid quantity",
			role:      "customer",
			body:      `{"menu_id":101,"restaurant_id":1,"quantity":0}`,
			setupMock: func(m *mocks.CartRepository) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "valid request",
			role: "customer",
			body: `{"menu_id":101,"restaurant_id":1,"quantity":2,"notes":"pedas"}`,
			setupMock: func(m *mocks.CartRepository) {
				m.On("AddItem", mock.Anything, token, domain.AddItemInput{MenuID: 101, RestaurantID: 1, Quantity: 2, Notes: "pedas"}).Return(nil).Once()
				m.On("ListCarts", mock.Anything, token).Return(oneCart(), nil).Once()
			},
			wantCode: http.StatusCreated,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture(t, testCase.role, "")
			testCase.setupMock(f.carts)

			w := f.do("POST", "/storefront/cart/items", testCase.body)

			assert.Equal(t, testCase.wantCode, w.Code)
			if testCase.wantCode == http.StatusCreated {
				var resp struct {
					Data struct {
						TotalItemCount int    `json:"total_item_count"`
						TotalLabel     string `json:"total_label"`
					} `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, 2, resp.Data.TotalItemCount)
				assert.Equal(t, "Rp 30.000", resp.Data.TotalLabel)
			}
		})
	}
}

func TestUpdateQuantityHandler_ZeroIsIgnored(t *testing.T) {
	f := newFixture(t, "customer", "")

	w := f.do("PUT", "/storefront/cart/items/11/quantity", `{"quantity":0}`)

	assert.Equal(t, http.StatusOK, w.Code)
	f.carts.AssertNotCalled(t, "UpdateItemQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutHandler(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		f := newFixture(t, "customer", "")

		w := f.do("POST", "/storefront/checkout", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("order placed", func(t *testing.T) {
		f := newFixture(t, "customer", "")
		f.carts.On("ListCarts", mock.Anything, token).Return(oneCart(), nil).Once()
		f.orders.On("CreateOrder", mock.Anything, token, "").Return(42, nil).Once()
		f.carts.On("ClearCart", mock.Anything, token).Return(nil).Once()

		require.Equal(t, http.StatusOK, f.do("GET", "/storefront/cart", "").Code)
		w := f.do("POST", "/storefront/checkout", "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"next":"/storefront/orders/42/confirmation"`)
	})
}

func TestClearCartHandler_NeedsConfirmation(t *testing.T) {
	f := newFixture(t, "customer", "")

	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/storefront/cart/clear/confirm", "").Code)
}

func proofRequest(t *testing.T, path string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("proof_image", "proof.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req
}

func png(n int) []byte {
	header := []byte("\x89PNG\r\n\x1a\n")
	return append(header, make([]byte, n-len(header))...)
}

func TestConfirmationHandlers(t *testing.T) {
	f := newFixture(t, "customer", "")
	order := &domain.Order{ID: 42, OrderCode: "ORD-42", TotalPrice: decimal.NewFromInt(80000), Status: domain.OrderPending}
	f.orders.On("GetOrder", mock.Anything, token, 42).Return(order, nil).Once()

	w := f.do("GET", "/storefront/orders/42/confirmation", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"awaiting_payment_proof"`)

	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/storefront/orders/42/confirmation/submit", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do("PUT", "/storefront/orders/42/confirmation/method", `{"payment_method":"credit_card"}`).Code)

	tooBig := httptest.NewRecorder()
	f.router.ServeHTTP(tooBig, proofRequest(t, "/storefront/orders/42/confirmation/proof", png(service.MaxProofSize+1)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, tooBig.Code)

	upload := httptest.NewRecorder()
	f.router.ServeHTTP(upload, proofRequest(t, "/storefront/orders/42/confirmation/proof", png(service.MaxProofSize)))
	require.Equal(t, http.StatusOK, upload.Code)
	assert.Contains(t, upload.Body.String(), `"proof_name":"proof.png"`)

	f.orders.On("ConfirmPayment", mock.Anything, token, 42, mock.MatchedBy(func(c domain.PaymentConfirmation) bool {
		return c.OrderCode == "ORD-42" && c.PaymentMethod == domain.PaymentQRIS && len(c.Proof.Data) == service.MaxProofSize
	})).Return(nil).Once()

	w = f.do("POST", "/storefront/orders/42/confirmation/submit", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"confirmed"`)
	assert.Contains(t, w.Body.String(), `"history_link":"/orders"`)
}

func TestConfirmationHandler_OrderNotFound(t *testing.T) {
	f := newFixture(t, "customer", "")
	f.orders.On("GetOrder", mock.Anything, token, 999).Return(nil, &storage.APIError{Endpoint: "orders.get", StatusCode: 404}).Once()

	assert.Equal(t, http.StatusNotFound, f.do("GET", "/storefront/orders/999/confirmation", "").Code)
}

func TestAdminHandlers(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		setupMock func(*mocks.PaymentAdminRepository)
		wantCode  int
	}{
		{name: "signed out", role: "", setupMock: func(*mocks.PaymentAdminRepository) {}, wantCode: http.StatusUnauthorized},
		{name: "customer", role: "customer", setupMock: func(*mocks.PaymentAdminRepository) {}, wantCode: http.StatusForbidden},
		{
			name: "admin",
			role: "admin",
			setupMock: func(m *mocks.PaymentAdminRepository) {
				m.On("VerifyPayment", mock.Anything, token, 5).Return(nil).Once()
			},
			wantCode: http.StatusOK,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture(t, testCase.role, "")
			testCase.setupMock(f.admin)

			assert.Equal(t, testCase.wantCode, f.do("PUT", "/storefront/admin/payments/5/verify", "").Code)
		})
	}
}

func TestProxy(t *testing.T) {
	tests := []struct {
		name          string
		backendStatus int
		wantSignedIn  bool
	}{
		{name: "forwarded with session", backendStatus: http.StatusOK, wantSignedIn: true},
		{name: "backend rejects session", backendStatus: http.StatusUnauthorized, wantSignedIn: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/admin/statistics", r.URL.Path)
				assert.Equal(t, "range=7d", r.URL.RawQuery)
				assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
				assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(testCase.backendStatus)
				w.Write([]byte(`{"success":true,"data":{"orders":3}}`))
			}))
			defer backend.Close()
			f := newFixture(t, "admin", backend.URL)

			w := f.do("GET", "/api/admin/statistics?range=7d", "")

			assert.Equal(t, testCase.backendStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"orders":3`)
			_, signedIn := f.auth.Token(context.Background())
			assert.Equal(t, testCase.wantSignedIn, signedIn)
		})
	}
}

func TestGetCartHandler(t *testing.T) {
	tests := []struct {
		name         string
		role         string
		setupMock    func(*mocks.CartRepository)
		wantCode     int
		wantSignedIn bool
		wantItems    bool
	}{
		{
			name:      "signed out",
			setupMock: func(m *mocks.CartRepository) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name: "loaded",
			role: "customer",
			setupMock: func(m *mocks.CartRepository) {
				m.On("ListCarts", mock.Anything, token).Return(oneCart(), nil).Once()
			},
			wantCode:     http.StatusOK,
			wantSignedIn: true,
			wantItems:    true,
		},
		{
			name: "upstream 401 signs out",
			role: "customer",
			setupMock: func(m *mocks.CartRepository) {
				m.On("ListCarts", mock.Anything, token).Return(nil, domain.ErrUnauthorized).Once()
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "unreachable",
			role: "customer",
			setupMock: func(m *mocks.CartRepository) {
				m.On("ListCarts", mock.Anything, token).Return(nil, domain.ErrUnreachable).Once()
			},
			wantCode:     http.StatusBadGateway,
			wantSignedIn: true,
		},
		{
			name: "server error keeps the last cart",
			role: "customer",
			setupMock: func(m *mocks.CartRepository) {
				m.On("ListCarts", mock.Anything, token).Return(oneCart(), nil).Once()
				m.On("ListCarts", mock.Anything, token).
					Return(nil, &storage.APIError{Endpoint: "cart.list", StatusCode: 500, Message: "boom"}).Once()
			},
			wantCode:     http.StatusBadGateway,
			wantSignedIn: true,
			wantItems:    true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture(t, testCase.role, "")
			testCase.setupMock(f.carts)
			if testCase.name == "server error keeps the last cart" {
				require.Equal(t, http.StatusOK, f.do("GET", "/storefront/cart", "").Code)
			}

			w := f.do("GET", "/storefront/cart", "")

			assert.Equal(t, testCase.wantCode, w.Code)
			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
				Data    struct {
					Carts []domain.Cart `json:"carts"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, testCase.wantCode == http.StatusOK, body.Success)
			if testCase.wantCode != http.StatusOK {
				assert.NotEmpty(t, body.Message)
			}
			assert.Equal(t, testCase.wantItems, len(body.Data.Carts) == 1)

			_, signedIn := f.auth.Token(context.Background())
			assert.Equal(t, testCase.wantSignedIn, signedIn)
		})
	}
}

func TestRouter_Origins(t *testing.T) {
	const shop = "https://shop.example"

	tests := []struct {
		name       string
		allowed    []string
		method     string
		path       string
		origin     string
		wantCode   int
		wantHeader string
	}{
		{name: "foreign GET", method: "GET", path: "/storefront/me", origin: "https://evil.example", wantCode: http.StatusForbidden},
		{name: "foreign POST", method: "POST", path: "/storefront/checkout", origin: "https://evil.example", wantCode: http.StatusForbidden},
		{name: "foreign POST despite allowlist", allowed: []string{shop}, method: "POST", path: "/storefront/cart/clear/request", origin: "https://evil.example", wantCode: http.StatusForbidden},
		{name: "no origin", method: "GET", path: "/storefront/me", wantCode: http.StatusOK},
		{name: "same origin", method: "POST", path: "/storefront/checkout", origin: "http://example.com", wantCode: http.StatusBadRequest},
		{name: "allowlisted", allowed: []string{shop}, method: "GET", path: "/storefront/me", origin: shop, wantCode: http.StatusOK, wantHeader: shop},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture(t, "admin", "")
			router := httpapi.NewRouter(f.handler, testCase.allowed...)

			req := httptest.NewRequest(testCase.method, testCase.path, nil)
			if testCase.origin != "" {
				req.Header.Set("Origin", testCase.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, testCase.wantCode, w.Code)
			assert.Equal(t, testCase.wantHeader, w.Header().Get("Access-Control-Allow-Origin"))
			if testCase.wantCode == http.StatusForbidden {
				assert.NotContains(t, w.Body.String(), "Budi")
			}
		})
	}
}
