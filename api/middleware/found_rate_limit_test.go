package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
)

type stubLimiter struct {
	allowed bool
	count   int64
	err     error
	scopes  []string
}

func (s *stubLimiter) FixedWindowAllow(_ context.Context, scope string, _ int64, _ time.Duration) (bool, int64, error) {
	s.scopes = append(s.scopes, scope)
	return s.allowed, s.count, s.err
}

func cooldownHandler(cfg config.FoundCooldownConfig, store RateLimiterStore) http.Handler {
	return FoundCooldown(cfg, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
}

func TestFoundCooldownAllowsWithinLimit(t *testing.T) {
	store := &stubLimiter{allowed: true, count: 1}
	handler := cooldownHandler(config.FoundCooldownConfig{Window: 5 * time.Minute, Limit: 1}, store)

	req := httptest.NewRequest(http.MethodPost, "/dogs/found", nil)
	req = req.WithContext(WithUserID(req.Context(), "user-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if len(store.scopes) != 1 || store.scopes[0] != "found:user-1" {
		t.Fatalf("unexpected scopes %v", store.scopes)
	}
}

func TestFoundCooldownBlocksOverLimit(t *testing.T) {
	store := &stubLimiter{allowed: false, count: 2}
	handler := cooldownHandler(config.FoundCooldownConfig{Window: 5 * time.Minute, Limit: 1}, store)

	req := httptest.NewRequest(http.MethodPost, "/dogs/found", nil)
	req = req.WithContext(WithUserID(req.Context(), "user-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestFoundCooldownRequiresUser(t *testing.T) {
	store := &stubLimiter{allowed: true}
	handler := cooldownHandler(config.FoundCooldownConfig{Window: 5 * time.Minute, Limit: 1}, store)

	req := httptest.NewRequest(http.MethodPost, "/dogs/found", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if len(store.scopes) != 0 {
		t.Fatalf("limiter should not run without a user, got %v", store.scopes)
	}
}

func TestFoundCooldownDisabledPassesThrough(t *testing.T) {
	handler := cooldownHandler(config.FoundCooldownConfig{}, &stubLimiter{})

	req := httptest.NewRequest(http.MethodPost, "/dogs/found", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestFoundCooldownStoreFailure(t *testing.T) {
	store := &stubLimiter{err: errors.New("redis down")}
	handler := cooldownHandler(config.FoundCooldownConfig{Window: time.Minute, Limit: 1}, store)

	req := httptest.NewRequest(http.MethodPost, "/dogs/found", nil)
	req = req.WithContext(WithUserID(req.Context(), "user-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
