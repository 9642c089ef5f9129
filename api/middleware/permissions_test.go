package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulluproar/commerce-backend/internal/permissions"
	"github.com/fulluproar/commerce-backend/pkg/enums"
)

func runGuarded(t *testing.T, guard func(http.Handler) http.Handler, email string, roles []enums.Role) int {
	t.Helper()
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), "user-1", email, roles))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp.Code
}

func TestRequirePermission(t *testing.T) {
	guard := RequirePermission(permissions.ResourceOrders, permissions.ActionUpdate, nil)

	if code := runGuarded(t, guard, "staff@fulluproar.com", []enums.Role{enums.RoleFulfillment}); code != http.StatusOK {
		t.Fatalf("fulfillment should update orders, got %d", code)
	}
	if code := runGuarded(t, guard, "staff@fulluproar.com", []enums.Role{enums.RoleModerator}); code != http.StatusForbidden {
		t.Fatalf("moderator must not touch orders, got %d", code)
	}
	if code := runGuarded(t, guard, "staff@fulluproar.com", nil); code != http.StatusForbidden {
		t.Fatalf("no roles means denial, got %d", code)
	}
	if code := runGuarded(t, guard, "info@fulluproar.com", nil); code != http.StatusOK {
		t.Fatalf("god email bypasses the table, got %d", code)
	}
}

func TestRequireAdminSection(t *testing.T) {
	guard := RequireAdminSection("inventory", nil)

	if code := runGuarded(t, guard, "staff@fulluproar.com", []enums.Role{enums.RoleFulfillment}); code != http.StatusOK {
		t.Fatalf("fulfillment reaches inventory via orders:update, got %d", code)
	}
	if code := runGuarded(t, guard, "staff@fulluproar.com", []enums.Role{enums.RoleContentEditor}); code != http.StatusForbidden {
		t.Fatalf("content editor has no inventory access, got %d", code)
	}

	unknown := RequireAdminSection("warehouse", nil)
	if code := runGuarded(t, unknown, "staff@fulluproar.com", []enums.Role{enums.RoleAdmin}); code != http.StatusForbidden {
		t.Fatalf("unknown section denies even admins, got %d", code)
	}
}
