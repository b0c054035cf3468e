package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/service"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintCart(t *testing.T) {
	notes := "pedas"
	snapshot := service.CartSnapshot{
		Carts: []domain.Cart{{
			ID: 1, RestaurantID: 1,
			Restaurant: &domain.RestaurantSummary{ID: 1, Name: "Warung Sate"},
			Items: []domain.CartItem{
				{ID: 11, MenuID: 101, Quantity: 2, UnitPrice: decimal.NewFromInt(15000), Notes: &notes, Menu: domain.MenuSummary{Name: "Sate Ayam"}},
				{ID: 12, MenuID: 102, Quantity: 1, UnitPrice: decimal.NewFromInt(50000)},
			},
		}},
		TotalItemCount: 3,
		TotalPrice:     decimal.NewFromInt(80000),
	}

	var out bytes.Buffer
	require.NoError(t, printCart(&out, snapshot))

	text := out.String()
	assert.Contains(t, text, "Warung Sate")
	assert.Contains(t, text, "Sate Ayam")
	assert.Contains(t, text, "Menu #102")
	assert.Contains(t, text, "pedas")
	assert.Contains(t, text, "Rp 80.000")
}

func TestPrintCart_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printCart(&out, service.CartSnapshot{}))
	assert.Equal(t, "Your cart is empty\n", out.String())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
	}

	for _, testCase := range tests {
		t.Run(strings.TrimSpace(testCase.input), func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, testCase.want, confirm(strings.NewReader(testCase.input), &out, "Sure?"))
			assert.Equal(t, "Sure? [y/N] ", out.String())
		})
	}
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	envelope := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		envelope(w, map[string]any{
			"token":      "tok-123",
			"expires_in": 3600,
			"user":       map[string]any{"id": 7, "name": "Budi", "email": "budi@example.com", "role": "customer"},
		})
	}).Methods("POST")
	r.HandleFunc("/api/cart", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		envelope(w, []map[string]any{{
			"id": 1, "restaurant_id": 1,
			"restaurant": map[string]any{"id": 1, "name": "Warung Sate"},
			"items": []map[string]any{
				{"id": 11, "menu_id": 101, "quantity": 2, "unit_price": 15000, "notes": nil},
			},
		}})
	}).Methods("GET")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCLI_LoginThenCart(t *testing.T) {
	srv := fakeAPI(t)
	cfg.KafkaBroker = ""
	session := filepath.Join(t.TempDir(), "session.json")
	common := []string{"--api", srv.URL, "--store", "file", "--session-file", session}

	out := run(t, append(common, "login", "--email", "budi@example.com", "--password", "secret")...)
	assert.Contains(t, out, "Signed in as Budi (customer)")

	out = run(t, append(common, "whoami")...)
	assert.Contains(t, out, "Budi <budi@example.com>")

	out = run(t, append(common, "cart")...)
	assert.Contains(t, out, "Warung Sate")
	assert.Contains(t, out, "Rp 30.000")
}

func TestExecute_ClosesAppOnFailure(t *testing.T) {
	cfg.KafkaBroker = ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs([]string{"--store", "memory", "menus", "abc"})

	err := execute(context.Background())

	require.Error(t, err)
	assert.Nil(t, current)
}
