package service_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/mocks"
	"storefront/internal/service"
	"storefront/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hub := events.NewHub()
	signals := record(hub)
	store := storage.NewMemoryStore()
	repo := mocks.NewAuthRepository(t)
	svc := service.NewAuthService(store, repo, hub, nil)

	expiresAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.On("Login", mock.Anything, "budi@example.com", "secret").Return(&domain.Session{
		Token:     testToken,
		User:      domain.User{ID: 7, Name: "Budi", Email: "budi@example.com", Role: "customer"},
		ExpiresAt: expiresAt,
	}, nil).Once()

	user, err := svc.Login(ctx, "budi@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)

	token, ok := svc.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, testToken, token)

	stored, ok, err := store.Get(ctx, service.KeyExpiresAt)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(expiresAt.UnixMilli(), 10), stored)

	current, ok := svc.User(ctx)
	require.True(t, ok)
	assert.Equal(t, "Budi", current.Name)
	assert.Equal(t, []events.Kind{events.LoggedIn}, signals.kinds())
}

func TestAuthService_LoginFailure(t *testing.T) {
	hub := events.NewHub()
	repo := mocks.NewAuthRepository(t)
	svc := service.NewAuthService(storage.NewMemoryStore(), repo, hub, nil)

	repo.On("Login", mock.Anything, "budi@example.com", "wrong").
		Return(nil, &storage.APIError{Endpoint: "login", StatusCode: 401, Message: "invalid credentials"}).Once()

	_, err := svc.Login(context.Background(), "budi@example.com", "wrong")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, ok := svc.Token(context.Background())
	assert.False(t, ok)
}

func TestAuthService_Logout(t *testing.T) {
	tests := []struct {
		name      string
		remoteErr error
	}{
		{name: "remote logout succeeds"},
		{name: "remote logout fails", remoteErr: domain.ErrUnreachable},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			hub := events.NewHub()
			signals := record(hub)
			store := storage.NewMemoryStore()
			require.NoError(t, store.Set(ctx, service.KeyToken, testToken))
			repo := mocks.NewAuthRepository(t)
			svc := service.NewAuthService(store, repo, hub, nil)

			repo.On("Logout", mock.Anything, testToken).Return(testCase.remoteErr).Once()

			assert.NoError(t, svc.Logout(ctx))
			_, ok := svc.Token(ctx)
			assert.False(t, ok)
			assert.Equal(t, []events.Kind{events.LoggedOut}, signals.kinds())
		})
	}
}

func TestAuthService_HandleUnauthorized(t *testing.T) {
	ctx := context.Background()
	hub := events.NewHub()
	signals := record(hub)
	repo := mocks.NewAuthRepository(t)
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, service.KeyToken, testToken))
	svc := service.NewAuthService(store, repo, hub, nil)

	svc.HandleUnauthorized(ctx)

	_, ok := svc.Token(ctx)
	assert.False(t, ok)
	assert.Equal(t, []events.Kind{events.LoggedOut, events.LoginRequired}, signals.kinds())
	repo.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}

func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestAuthService_CheckExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		token       func(t *testing.T) string
		storedExp   *time.Time
		wantExpired bool
	}{
		{
			name:        "stored expiry in the past",
			token:       func(*testing.T) string { return testToken },
			storedExp:   ptr(now.Add(-time.Minute)),
			wantExpired: true,
		},
		{
			name:      "stored expiry in the future",
			token:     func(*testing.T) string { return testToken },
			storedExp: ptr(now.Add(time.Hour)),
		},
		{
			name:        "jwt exp claim in the past",
			token:       func(t *testing.T) string { return signedJWT(t, now.Add(-time.Hour)) },
			wantExpired: true,
		},
		{
			name:  "jwt exp claim in the future",
			token: func(t *testing.T) string { return signedJWT(t, now.Add(time.Hour)) },
		},
		{
			name:  "opaque token without expiry",
			token: func(*testing.T) string { return testToken },
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			hub := events.NewHub()
			signals := record(hub)
			store := storage.NewMemoryStore()
			require.NoError(t, store.Set(ctx, service.KeyToken, testCase.token(t)))
			if testCase.storedExp != nil {
				require.NoError(t, store.Set(ctx, service.KeyExpiresAt, strconv.FormatInt(testCase.storedExp.UnixMilli(), 10)))
			}
			svc := service.NewAuthService(store, nil, hub, nil).WithClock(func() time.Time { return now })

			expired := svc.CheckExpiry(ctx)

			assert.Equal(t, testCase.wantExpired, expired)
			_, hasToken := svc.Token(ctx)
			assert.Equal(t, !testCase.wantExpired, hasToken)
			if testCase.wantExpired {
				assert.Contains(t, signals.kinds(), events.LoginRequired)
			} else {
				assert.Empty(t, signals.kinds())
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
