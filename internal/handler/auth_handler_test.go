//go:build unit

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-qa-app/internal/session"
)

// mockSessionManager is a mock implementation of the session.Manager interface.
type mockSessionManager struct {
	destroyCalled bool
	putKey        string
	putValue      interface{}
}

// Ensure mockSessionManager implements the session.Manager interface.
var _ session.Manager = (*mockSessionManager)(nil)

func (m *mockSessionManager) LoadAndSave(next http.Handler) http.Handler { return next }
func (m *mockSessionManager) Put(ctx context.Context, key string, val interface{}) {
	m.putKey = key
	m.putValue = val
}
func (m *mockSessionManager) GetString(ctx context.Context, key string) string { return "" }
func (m *mockSessionManager) PopString(ctx context.Context, key string) string { return "" }
func (m *mockSessionManager) Remove(ctx context.Context, key string)           {}
func (m *mockSessionManager) Destroy(ctx context.Context) error {
	m.destroyCalled = true
	return nil
}

func TestLogoutHandler(t *testing.T) {
	mockSession := &mockSessionManager{}
	// The authenticator is not used by the logout handler.
	authHandler := NewAuthHandler(nil, mockSession)

	req := httptest.NewRequest("GET", "/auth/logout", nil)
	rr := httptest.NewRecorder()

	authHandler.handleLogout(rr, req)

	if !mockSession.destroyCalled {
		t.Error("expected session.Destroy to be called, but it wasn't")
	}
	if rr.Code != http.StatusFound {
		t.Errorf("want status code %d; got %d", http.StatusFound, rr.Code)
	}
	location, err := rr.Result().Location()
	if err != nil {
		t.Fatalf("could not get redirect location: %v", err)
	}
	if location.Path != "/questions" {
		t.Errorf("want redirect to '/questions'; got '%s'", location.Path)
	}
}

func TestSplitTags(t *testing.T) {
	got := splitTags("go, testing ,")
	if len(got) != 3 {
		t.Fatalf("expected 3 raw values, got %d", len(got))
	}
	// Normalization of whitespace and empties happens in the service layer.
	if got[0] != "go" || got[1] != " testing " || got[2] != "" {
		t.Errorf("unexpected split: %#v", got)
	}
}
