package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-menu-auth/internal/application/auth"
	"github.com/go-menu-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Register(ctx context.Context, req domain.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthSvc) SendVerificationCode(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockAuthSvc) VerifyAndLogin(ctx context.Context, email, code string) (*auth.LoginResult, error) {
	args := m.Called(ctx, email, code)
	if r, _ := args.Get(0).(*auth.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}
func (m *mockAuthSvc) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) Me(ctx context.Context, token string) (*domain.Profile, error) {
	args := m.Called(ctx, token)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newTestRouter(svc auth.Service) http.Handler {
	h := NewAuthHandler(svc)
	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/send-code", h.SendCode)
	r.Post("/auth/verify", h.Verify)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)
	r.Get("/health-check/{action}", NewHealthHandler().Ping)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

// --- register ---

func TestRegister_Created(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, domain.RegisterRequest{Email: "a@x.com", FullName: "Ann", Country: "US"}).Return(nil)

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/register",
		map[string]string{"email": " a@x.com ", "full_name": "Ann", "country": "US"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Verification code sent to your email", decode(t, rr)["message"])
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything).
		Return(fmt.Errorf("user already exists with this email: %w", domain.ErrConflict))

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/register",
		map[string]string{"email": "a@x.com", "full_name": "Ann", "country": "US"})

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	svc := &mockAuthSvc{}

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/register",
		map[string]string{"email": "nope", "full_name": "", "country": "US"})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode(t, rr)
	assert.ElementsMatch(t, []interface{}{"Email", "FullName"}, body["fields"])
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_MalformedBody(t *testing.T) {
	svc := &mockAuthSvc{}
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
	rr := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- send-code ---

func TestSendCode_OK(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SendVerificationCode", mock.Anything, "a@x.com").Return(nil)

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/send-code", map[string]string{"email": "a@x.com"})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSendCode_NotRegistered(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SendVerificationCode", mock.Anything, "b@x.com").Return(auth.ErrNotRegistered)

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/send-code", map[string]string{"email": "b@x.com"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_registered", decode(t, rr)["error_code"])
}

// --- verify ---

func TestVerify_OK(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyAndLogin", mock.Anything, "a@x.com", "123456").Return(&auth.LoginResult{
		Token: "tok", ExpiresAt: 42,
		User: &domain.Profile{ID: "u1", Email: "a@x.com", FullName: "Ann", Country: "US"},
	}, nil)

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/verify",
		map[string]string{"email": "a@x.com", "code": " 123456 "})

	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "tok", body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Ann", user["full_name"])
	assert.NotContains(t, user, "email_verified")
}

func TestVerify_WrongLengthCode(t *testing.T) {
	svc := &mockAuthSvc{}

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/verify",
		map[string]string{"email": "a@x.com", "code": "12345"})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "VerifyAndLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_Unauthorized(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyAndLogin", mock.Anything, "a@x.com", "000000").
		Return(nil, fmt.Errorf("invalid or expired verification code: %w", domain.ErrUnauthorized))

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/verify",
		map[string]string{"email": "a@x.com", "code": "000000"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestVerify_StorageFailureIsOpaque(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyAndLogin", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("sqlite: disk I/O error"))

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/verify",
		map[string]string{"email": "a@x.com", "code": "123456"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "sqlite")
}

// --- logout ---

func TestLogout_BodyToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Logout", mock.Anything, "tok").Return(nil)

	rr := do(t, newTestRouter(svc), http.MethodPost, "/auth/logout", map[string]string{"token": "tok"})

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestLogout_FallsBackToBearer(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Logout", mock.Anything, "bearer-tok").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer bearer-tok")
	rr := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

// --- me ---

func TestMe_QueryToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Me", mock.Anything, "tok").Return(&domain.Profile{ID: "u1"}, nil)

	rr := do(t, newTestRouter(svc), http.MethodGet, "/auth/me?token=tok", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", decode(t, rr)["user"].(map[string]interface{})["id"])
}

func TestMe_AnonymousReturnsNullUser(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Me", mock.Anything, "").Return(nil, nil)

	rr := do(t, newTestRouter(svc), http.MethodGet, "/auth/me", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Contains(t, body, "user")
	assert.Nil(t, body["user"])
}

// --- health ---

func TestHealth_Ping(t *testing.T) {
	rr := do(t, newTestRouter(&mockAuthSvc{}), http.MethodGet, "/health-check/ping", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", decode(t, rr)["message"])

	rr = do(t, newTestRouter(&mockAuthSvc{}), http.MethodGet, "/health-check/other", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
