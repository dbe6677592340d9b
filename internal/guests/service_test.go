package guests

import (
	"context"
	"testing"
	"time"

	"github.com/altezzai/storefront-backend/pkg/config"
)

type memoryTokenStore struct {
	tokens  map[string]time.Duration
	touched map[string]int
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: map[string]time.Duration{}, touched: map[string]int{}}
}

func (m *memoryTokenStore) RegisterGuestToken(_ context.Context, token string, ttl time.Duration) error {
	m.tokens[token] = ttl
	return nil
}

func (m *memoryTokenStore) TouchGuestToken(_ context.Context, token string, ttl time.Duration) error {
	m.tokens[token] = ttl
	m.touched[token]++
	return nil
}

func (m *memoryTokenStore) HasGuestToken(_ context.Context, token string) (bool, error) {
	_, ok := m.tokens[token]
	return ok, nil
}

func testConfig() config.GuestCartConfig {
	return config.GuestCartConfig{TokenTTL: time.Hour}
}

func TestIssueAndValidateToken(t *testing.T) {
	t.Parallel()

	store := newMemoryTokenStore()
	svc, err := NewService(store, testConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	token, err := svc.IssueToken(ctx)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	ok, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if !ok {
		t.Fatal("expected token to validate")
	}
	if store.touched[token] != 1 {
		t.Fatalf("expected TTL refresh on validation, got %d touches", store.touched[token])
	}
}

func TestValidateUnknownToken(t *testing.T) {
	t.Parallel()

	svc, err := NewService(newMemoryTokenStore(), testConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ok, err := svc.ValidateToken(context.Background(), "stale-token")
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if ok {
		t.Fatal("expected unknown token to fail validation")
	}

	ok, err = svc.ValidateToken(context.Background(), "")
	if err != nil || ok {
		t.Fatalf("expected empty token to fail cleanly, got ok=%v err=%v", ok, err)
	}
}
