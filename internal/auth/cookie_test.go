package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/auth"
)

func TestSetSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	auth.SetSessionCookie(w, "the-token", 168*time.Hour, true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, "auth-token", c.Name)
	assert.Equal(t, "the-token", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, int((168 * time.Hour).Seconds()), c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestReadSessionCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "auth-token", Value: "abc123"})

	token, ok := auth.ReadSessionCookie(r)
	assert.True(t, ok)
	assert.Equal(t, "abc123", token)
}

func TestReadSessionCookie_Missing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := auth.ReadSessionCookie(r)
	assert.False(t, ok)
}

func TestReadSessionCookie_Empty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "auth-token", Value: ""})

	_, ok := auth.ReadSessionCookie(r)
	assert.False(t, ok)
}

func TestClearSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	auth.ClearSessionCookie(w, false)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, "auth-token", c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}
