package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-menu-auth/internal/application/auth"
	"github.com/go-menu-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockResolver struct{ mock.Mock }

func (m *mockResolver) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// captureSession records the ambient session seen by the wrapped handler.
func captureSession(got **domain.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSession_BearerHeader(t *testing.T) {
	res := &mockResolver{}
	want := &domain.Session{Token: "tok", UserID: "u1"}
	res.On("ResolveSession", mock.Anything, "tok").Return(want, nil)

	var got *domain.Session
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	Session(res)(captureSession(&got)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Same(t, want, got)
}

func TestSession_Cookie(t *testing.T) {
	res := &mockResolver{}
	want := &domain.Session{Token: "cookie-tok"}
	res.On("ResolveSession", mock.Anything, "cookie-tok").Return(want, nil)

	var got *domain.Session
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-tok"})
	Session(res)(captureSession(&got)).ServeHTTP(httptest.NewRecorder(), req)

	assert.Same(t, want, got)
}

func TestSession_NoTokenPassesThrough(t *testing.T) {
	res := &mockResolver{}

	var got *domain.Session
	rr := httptest.NewRecorder()
	Session(res)(captureSession(&got)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, got)
	res.AssertNotCalled(t, "ResolveSession", mock.Anything, mock.Anything)
}

func TestSession_UnknownTokenIsAnonymous(t *testing.T) {
	res := &mockResolver{}
	res.On("ResolveSession", mock.Anything, "stale").Return(nil, nil)

	var got *domain.Session
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rr := httptest.NewRecorder()
	Session(res)(captureSession(&got)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, got)
}

func TestSession_LookupErrorIsAnonymous(t *testing.T) {
	res := &mockResolver{}
	res.On("ResolveSession", mock.Anything, "tok").Return(nil, errors.New("db down"))

	var got *domain.Session
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	Session(res)(captureSession(&got)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, got)
}

func TestRequireSession(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	rr := httptest.NewRecorder()
	RequireSession(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "authentication required")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithSession(req.Context(), &domain.Session{Token: "tok"}))
	rr = httptest.NewRecorder()
	RequireSession(ok).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTokenFromRequest_HeaderWinsOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-tok")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-tok"})

	assert.Equal(t, "header-tok", TokenFromRequest(req))
}

func TestTokenFromRequest_NonBearerIgnored(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")

	assert.Equal(t, "", TokenFromRequest(req))
}
