package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

const (
	KeyToken     = "auth_token"
	KeyUser      = "auth_user"
	KeyExpiresAt = "token_expires_in"

	authOrigin = "auth"
)

// AuthService is the single owner of the stored session. Everything else
// asks it for the token instead of reading the store directly.
type AuthService struct {
	store  KeyValueStore
	repo   AuthRepository
	hub    *events.Hub
	now    func() time.Time
	logger *slog.Logger
}

func NewAuthService(store KeyValueStore, repo AuthRepository, hub *events.Hub, log *slog.Logger) *AuthService {
	if log == nil {
		log = logger.Discard()
	}
	return &AuthService{
		store:  store,
		repo:   repo,
		hub:    hub,
		now:    time.Now,
		logger: log,
	}
}

// WithClock replaces the time source; used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) Token(ctx context.Context) (string, bool) {
	token, ok, err := s.store.Get(ctx, KeyToken)
	if err != nil {
		s.logger.Error("read auth token", "error", err)
		return "", false
	}
	return token, ok && token != ""
}

func (s *AuthService) User(ctx context.Context) (*domain.User, bool) {
	raw, ok, err := s.store.Get(ctx, KeyUser)
	if err != nil || !ok {
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("stored user is not valid json", "error", err)
		return nil, false
	}
	return &user, true
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	session, err := s.repo.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.Establish(ctx, *session); err != nil {
		return nil, err
	}
	return &session.User, nil
}

// Establish stores a session obtained elsewhere and announces the login.
func (s *AuthService) Establish(ctx context.Context, session domain.Session) error {
	rawUser, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, KeyToken, session.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(rawUser)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	if !session.ExpiresAt.IsZero() {
		expires := strconv.FormatInt(session.ExpiresAt.UnixMilli(), 10)
		if err := s.store.Set(ctx, KeyExpiresAt, expires); err != nil {
			return fmt.Errorf("store expiry: %w", err)
		}
	} else if err := s.store.Delete(ctx, KeyExpiresAt); err != nil {
		return fmt.Errorf("clear expiry: %w", err)
	}

	s.logger.Info("signed in", "user_id", session.User.ID, "role", session.User.Role)
	s.hub.Publish(events.Signal{Kind: events.LoggedIn, Origin: authOrigin})
	return nil
}

// Logout tells the API (best effort) and always clears the local session.
func (s *AuthService) Logout(ctx context.Context) error {
	if token, ok := s.Token(ctx); ok && s.repo != nil {
		if err := s.repo.Logout(ctx, token); err != nil {
			s.logger.Warn("remote logout failed", "error", err)
		}
	}
	return s.clear(ctx)
}

// HandleUnauthorized is called on any 401: the session is dropped without a
// network call and the user is sent back to login.
func (s *AuthService) HandleUnauthorized(ctx context.Context) {
	if err := s.clear(ctx); err != nil {
		s.logger.Error("clear session after 401", "error", err)
	}
	s.hub.Publish(events.Signal{Kind: events.LoginRequired, Origin: authOrigin})
}

// ExpiresAt prefers the stored expiry and falls back to the exp claim when
// the token happens to be a JWT.
func (s *AuthService) ExpiresAt(ctx context.Context) (time.Time, bool) {
	if raw, ok, err := s.store.Get(ctx, KeyExpiresAt); err == nil && ok {
		if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return time.UnixMilli(millis), true
		}
	}

	token, ok := s.Token(ctx)
	if !ok {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// CheckExpiry clears the session when its expiry has passed and reports whether it did.
func (s *AuthService) CheckExpiry(ctx context.Context) bool {
	if _, ok := s.Token(ctx); !ok {
		return false
	}
	expiresAt, ok := s.ExpiresAt(ctx)
	if !ok || s.now().Before(expiresAt) {
		return false
	}

	s.logger.Info("session expired", "expired_at", expiresAt)
	if err := s.clear(ctx); err != nil {
		s.logger.Error("clear expired session", "error", err)
	}
	s.hub.Publish(events.Signal{Kind: events.LoginRequired, Origin: authOrigin})
	return true
}

func (s *AuthService) clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeyToken, KeyUser, KeyExpiresAt); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.hub.Publish(events.Signal{Kind: events.LoggedOut, Origin: authOrigin})
	return nil
}

var _ AuthServiceInterface = (*AuthService)(nil)
