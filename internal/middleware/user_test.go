package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/repository"
	"github.com/iliyamo/booking-backend/internal/utils"
)

const testTokenSecret = "unit-test-secret"

type stubUserSource struct {
	users    map[string]*model.User
	upserted []string // ids passed to EnsureExternal, in order
}

func newStubUserSource(users ...*model.User) *stubUserSource {
	s := &stubUserSource{users: make(map[string]*model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserSource) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserSource) EnsureExternal(_ context.Context, id, email, name string) (*model.User, error) {
	s.upserted = append(s.upserted, id)
	u := &model.User{ID: id, Email: email, DisplayName: name, IsActive: true}
	s.users[id] = u
	return u, nil
}

// runUserAuth pushes one request through UserAuth with an authenticated
// tenant already in the context, mirroring the middleware order on the
// real routes.
func runUserAuth(users UserSource, tenant *model.Tenant, set func(*http.Request)) (*httptest.ResponseRecorder, *Identity) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/seats/reserve", nil)
	if set != nil {
		set(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if tenant != nil {
		c.Set(tenantContextKey, tenant)
	}

	var got *Identity
	handler := UserAuth(users, testTokenSecret)(func(c echo.Context) error {
		got = UserFrom(c)
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, got
}

func testTenant() *model.Tenant {
	return &model.Tenant{ID: "tnt_1", IsActive: true}
}

func TestUserAuthAcceptsBearerToken(t *testing.T) {
	users := newStubUserSource(&model.User{ID: "usr_1", Email: "a@example.com", IsActive: true})
	access, err := utils.NewUserToken(testTokenSecret, "usr_1", 60)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	rec, id := runUserAuth(users, testTenant(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access.Token)
	})
	if rec.Code != http.StatusOK || id == nil {
		t.Fatalf("bearer auth failed: status=%d identity=%v body=%s", rec.Code, id, rec.Body.String())
	}
	if id.UserID != "usr_1" {
		t.Fatalf("identity user = %q, want usr_1", id.UserID)
	}
}

func TestUserAuthRejectsBadBearerTokens(t *testing.T) {
	users := newStubUserSource(
		&model.User{ID: "usr_1", IsActive: true},
		&model.User{ID: "usr_gone", IsActive: false},
	)

	wrongSecret, _ := utils.NewUserToken("other-secret", "usr_1", 60)
	inactive, _ := utils.NewUserToken(testTokenSecret, "usr_gone", 60)
	unknown, _ := utils.NewUserToken(testTokenSecret, "usr_nobody", 60)

	cases := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong signing secret", "Bearer " + wrongSecret.Token},
		{"inactive user", "Bearer " + inactive.Token},
		{"unknown user", "Bearer " + unknown.Token},
	}
	for _, tc := range cases {
		rec, id := runUserAuth(users, testTenant(), func(r *http.Request) {
			r.Header.Set("Authorization", tc.header)
		})
		if rec.Code != http.StatusUnauthorized || id != nil {
			t.Errorf("%s: status=%d identity=%v, want 401 and no identity", tc.name, rec.Code, id)
		}
	}
}

func TestUserAuthMalformedAuthorizationIsNotTreatedAsAnonymous(t *testing.T) {
	users := newStubUserSource()

	// A present but malformed Authorization header must be rejected even
	// when valid external headers would otherwise authenticate the call.
	rec, _ := runUserAuth(users, testTenant(), func(r *http.Request) {
		r.Header.Set("Authorization", "Token abc123")
		r.Header.Set(HeaderExternalUserID, "crm-77")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rec.Code)
	}
	if len(users.upserted) != 0 {
		t.Fatal("external fallback ran despite malformed Authorization header")
	}
}

func TestUserAuthExternalHeadersNamespacedByTenant(t *testing.T) {
	users := newStubUserSource()

	rec, id := runUserAuth(users, testTenant(), func(r *http.Request) {
		r.Header.Set(HeaderExternalUserID, "crm-77")
		r.Header.Set(HeaderExternalUserEmail, "x@example.com")
		r.Header.Set(HeaderExternalUserName, "Xenia")
	})
	if rec.Code != http.StatusOK || id == nil {
		t.Fatalf("external header auth failed: status=%d", rec.Code)
	}
	if id.UserID != "ext:tnt_1:crm-77" {
		t.Fatalf("identity user = %q, want ext:tnt_1:crm-77", id.UserID)
	}
	if len(users.upserted) != 1 || users.upserted[0] != "ext:tnt_1:crm-77" {
		t.Fatalf("upserted ids = %v", users.upserted)
	}
}

func TestUserAuthExternalBodyFallbackRestoresBody(t *testing.T) {
	users := newStubUserSource()
	body := `{"external_user_id":"crm-9","external_user_email":"y@example.com","seat_id":4}`

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/seats/reserve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(tenantContextKey, testTenant())

	var seenBody struct {
		SeatID uint64 `json:"seat_id"`
	}
	handler := UserAuth(users, testTokenSecret)(func(c echo.Context) error {
		// Handler binding must still see the full body after the peek.
		if err := c.Bind(&seenBody); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if seenBody.SeatID != 4 {
		t.Fatalf("handler bound seat_id=%d, want 4; body was consumed by the peek", seenBody.SeatID)
	}
	if len(users.upserted) != 1 || users.upserted[0] != "ext:tnt_1:crm-9" {
		t.Fatalf("upserted ids = %v", users.upserted)
	}
}

func TestUserAuthExternalWithoutTenantRejected(t *testing.T) {
	users := newStubUserSource()

	rec, _ := runUserAuth(users, nil, func(r *http.Request) {
		r.Header.Set(HeaderExternalUserID, "crm-77")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rec.Code)
	}
	if len(users.upserted) != 0 {
		t.Fatal("external user upserted without tenant context")
	}
}

func TestUserAuthNoIdentityRejected(t *testing.T) {
	rec, _ := runUserAuth(newStubUserSource(), testTenant(), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rec.Code)
	}
}
