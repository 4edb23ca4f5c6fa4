package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iurnickita/shopledger/internal/auth/config"
	"github.com/iurnickita/shopledger/internal/store"
)

type memCredentials struct {
	users map[string][2]string
}

func (m *memCredentials) AuthRegister(_ context.Context, login string, hash string) (string, error) {
	if _, ok := m.users[login]; ok {
		return "", store.ErrAlreadyExists
	}
	code := string(rune('0' + len(m.users) + 1))
	m.users[login] = [2]string{code, hash}
	return code, nil
}

func (m *memCredentials) AuthLogin(_ context.Context, login string) (string, string, error) {
	u, ok := m.users[login]
	if !ok {
		return "", "", store.ErrNoRows
	}
	return u[0], u[1], nil
}

func TestRegisterLoginMiddleware(t *testing.T) {
	a := NewAuth(config.Config{SecretKey: "test", TokenTTL: time.Hour}, &memCredentials{users: map[string][2]string{}})

	body := `{"login":"cashier","password":"s3cret"}`
	w := httptest.NewRecorder()
	a.Register(w, httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Register(w, httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(body)))
	require.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	a.Login(w, httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"login":"cashier","password":"nope"}`)))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	a.Login(w, httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	bearer := w.Header().Get("Authorization")
	require.True(t, strings.HasPrefix(bearer, "Bearer "))

	var seen string
	protected := a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(HeaderUserCodeKey)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", bearer)
	req.Header.Set(HeaderUserCodeKey, "spoofed")
	protected(httptest.NewRecorder(), req)
	require.Equal(t, "1", seen)

	w = httptest.NewRecorder()
	protected(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
