package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/repository"
	"github.com/iliyamo/booking-backend/internal/utils"
)

type stubTenantSource struct {
	tenants map[string]*model.Tenant
}

func (s *stubTenantSource) GetByID(_ context.Context, id string) (*model.Tenant, error) {
	t, ok := s.tenants[id]
	if !ok {
		return nil, repository.ErrTenantNotFound
	}
	return t, nil
}

func tenantWithSecret(t *testing.T, id, secret string, active bool, origins ...string) *model.Tenant {
	t.Helper()
	hash, err := utils.HashPassword(secret, 4) // min cost keeps tests fast
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	return &model.Tenant{
		ID:             id,
		Name:           "Tenant " + id,
		SecretHash:     hash,
		AllowedOrigins: origins,
		IsActive:       active,
	}
}

// runTenantAuth sends one request through TenantAuth and returns the
// recorder plus whether the inner handler was reached.
func runTenantAuth(src TenantSource, set func(*http.Request)) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/seats", nil)
	if set != nil {
		set(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := TenantAuth(src)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, reached
}

func TestTenantAuthAcceptsValidCredentials(t *testing.T) {
	src := &stubTenantSource{tenants: map[string]*model.Tenant{
		"tnt_1": tenantWithSecret(t, "tnt_1", "hunter2", true),
	}}

	rec, reached := runTenantAuth(src, func(r *http.Request) {
		r.Header.Set(HeaderTenantID, "tnt_1")
		r.Header.Set(HeaderTenantSecret, "hunter2")
	})
	if !reached || rec.Code != http.StatusOK {
		t.Fatalf("valid credentials rejected: status=%d reached=%v", rec.Code, reached)
	}
}

func TestTenantAuthRejectsMissingOrWrongCredentials(t *testing.T) {
	src := &stubTenantSource{tenants: map[string]*model.Tenant{
		"tnt_1": tenantWithSecret(t, "tnt_1", "hunter2", true),
	}}

	cases := []struct {
		name string
		set  func(*http.Request)
	}{
		{"no headers", nil},
		{"unknown tenant", func(r *http.Request) {
			r.Header.Set(HeaderTenantID, "tnt_ghost")
			r.Header.Set(HeaderTenantSecret, "hunter2")
		}},
		{"wrong secret", func(r *http.Request) {
			r.Header.Set(HeaderTenantID, "tnt_1")
			r.Header.Set(HeaderTenantSecret, "wrong")
		}},
	}
	for _, tc := range cases {
		rec, reached := runTenantAuth(src, tc.set)
		if reached || rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status=%d reached=%v, want 401 and blocked", tc.name, rec.Code, reached)
		}
	}
}

func TestTenantAuthRejectsDisabledTenantWith403(t *testing.T) {
	src := &stubTenantSource{tenants: map[string]*model.Tenant{
		"tnt_off": tenantWithSecret(t, "tnt_off", "hunter2", false),
	}}

	rec, reached := runTenantAuth(src, func(r *http.Request) {
		r.Header.Set(HeaderTenantID, "tnt_off")
		r.Header.Set(HeaderTenantSecret, "hunter2")
	})
	// Credentials were valid, so this is an authorization failure.
	if reached || rec.Code != http.StatusForbidden {
		t.Fatalf("disabled tenant: status=%d reached=%v, want 403 and blocked", rec.Code, reached)
	}
}

func TestTenantAuthEnforcesOriginAllowList(t *testing.T) {
	src := &stubTenantSource{tenants: map[string]*model.Tenant{
		"tnt_1": tenantWithSecret(t, "tnt_1", "hunter2", true, "example.com"),
		"tnt_2": tenantWithSecret(t, "tnt_2", "hunter2", true),
	}}

	cases := []struct {
		name   string
		tenant string
		origin string
		want   int
	}{
		{"exact match", "tnt_1", "https://example.com", http.StatusOK},
		{"subdomain match", "tnt_1", "https://app.example.com", http.StatusOK},
		{"foreign origin", "tnt_1", "https://evil.com", http.StatusForbidden},
		{"suffix lookalike", "tnt_1", "https://notexample.com", http.StatusForbidden},
		{"no allow list admits all", "tnt_2", "https://anywhere.dev", http.StatusOK},
		{"no origin header skips the check", "tnt_1", "", http.StatusOK},
	}
	for _, tc := range cases {
		rec, _ := runTenantAuth(src, func(r *http.Request) {
			r.Header.Set(HeaderTenantID, tc.tenant)
			r.Header.Set(HeaderTenantSecret, "hunter2")
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
		})
		if rec.Code != tc.want {
			t.Errorf("%s: status=%d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestOriginAllowedWildcard(t *testing.T) {
	if !originAllowed([]string{"*"}, "https://anything.io") {
		t.Error("wildcard entry rejected an origin")
	}
	if originAllowed([]string{""}, "https://anything.io") {
		t.Error("blank entry admitted an origin")
	}
}
