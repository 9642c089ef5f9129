package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fulluproar/commerce-backend/pkg/config"
)

type memoryRateStore struct {
	counts map[string]int64
}

func newMemoryRateStore() *memoryRateStore {
	return &memoryRateStore{counts: make(map[string]int64)}
}

func (s *memoryRateStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

func (s *memoryRateStore) RateLimitKey(scope string) string {
	return "fu:rate_limit:" + scope
}

func loginAttempt(handler http.Handler, ip, email string) int {
	body := strings.NewReader(`{"email":"` + email + `","password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("X-Forwarded-For", ip)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp.Code
}

func TestAuthRateLimitBlocksPerEmail(t *testing.T) {
	policy := NewLoginRateLimitPolicy(config.AuthRateLimitConfig{
		LoginWindow:     time.Minute,
		LoginIPLimit:    100,
		LoginEmailLimit: 2,
	})
	store := newMemoryRateStore()
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		if code := loginAttempt(handler, "1.2.3.4", "staff@fulluproar.com"); code != http.StatusOK {
			t.Fatalf("attempt %d should pass, got %d", i+1, code)
		}
	}
	if code := loginAttempt(handler, "5.6.7.8", "staff@fulluproar.com"); code != http.StatusTooManyRequests {
		t.Fatalf("third attempt for the email should block regardless of IP, got %d", code)
	}
	if code := loginAttempt(handler, "5.6.7.8", "other@fulluproar.com"); code != http.StatusOK {
		t.Fatalf("different email should pass, got %d", code)
	}
}

func TestAuthRateLimitBlocksPerIP(t *testing.T) {
	policy := NewLoginRateLimitPolicy(config.AuthRateLimitConfig{
		LoginWindow:  time.Minute,
		LoginIPLimit: 2,
	})
	store := newMemoryRateStore()
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		if code := loginAttempt(handler, "1.2.3.4", "a@fulluproar.com"); code != http.StatusOK {
			t.Fatalf("attempt %d should pass, got %d", i+1, code)
		}
	}
	if code := loginAttempt(handler, "1.2.3.4", "b@fulluproar.com"); code != http.StatusTooManyRequests {
		t.Fatalf("third attempt from the IP should block, got %d", code)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewLoginRateLimitPolicy(config.AuthRateLimitConfig{})
	handler := AuthRateLimit(policy, newMemoryRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 20; i++ {
		if code := loginAttempt(handler, "1.2.3.4", "staff@fulluproar.com"); code != http.StatusOK {
			t.Fatalf("disabled policy must never block, got %d", code)
		}
	}
}
