package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	_, app, db := newTestServer(t, nil)

	form := url.Values{}
	form.Set("username", "newcomer")
	form.Set("email", "newcomer@example.com")
	form.Set("password", "password123")

	resp := postForm(t, app, "/auth/signup/", form)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var sessionSet bool
	for _, c := range resp.Cookies() {
		if c.Name == "quill_session" && c.Value != "" {
			sessionSet = true
		}
	}
	assert.True(t, sessionSet, "expected session cookie to be set")

	var user models.User
	require.NoError(t, db.Where("username = ?", "newcomer").First(&user).Error)
	assert.NotEqual(t, "password123", user.Password, "password must be stored hashed")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	_, app, db := newTestServer(t, nil)
	createTestUser(t, db, "existing")

	form := url.Values{}
	form.Set("username", "someoneelse")
	form.Set("email", "existing@example.com")
	form.Set("password", "password123")

	resp := postForm(t, app, "/auth/signup/", form)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSignup_InvalidUsername(t *testing.T) {
	_, app, _ := newTestServer(t, nil)

	form := url.Values{}
	form.Set("username", "x")
	form.Set("email", "x@example.com")
	form.Set("password", "password123")

	resp := postForm(t, app, "/auth/signup/", form)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	_, app, db := newTestServer(t, nil)
	createTestUser(t, db, "returning")

	form := url.Values{}
	form.Set("username", "returning")
	form.Set("password", "password123")

	resp := postForm(t, app, "/auth/login/?next=%2Ffollow%2F", form)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/follow/", resp.Header.Get("Location"))
}

func TestLogin_WrongPassword(t *testing.T) {
	_, app, db := newTestServer(t, nil)
	createTestUser(t, db, "returning")

	form := url.Values{}
	form.Set("username", "returning")
	form.Set("password", "not-the-password")

	resp := postForm(t, app, "/auth/login/", form)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_UnknownUser(t *testing.T) {
	_, app, _ := newTestServer(t, nil)

	form := url.Values{}
	form.Set("username", "ghost")
	form.Set("password", "password123")

	resp := postForm(t, app, "/auth/login/", form)
	defer func() { _ = resp.Body.Close() }()
	// Indistinguishable from a wrong password.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_ExternalNextIgnored(t *testing.T) {
	_, app, db := newTestServer(t, nil)
	createTestUser(t, db, "returning")

	form := url.Values{}
	form.Set("username", "returning")
	form.Set("password", "password123")

	resp := postForm(t, app, "/auth/login/?next=https%3A%2F%2Fevil.example", form)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestLogout(t *testing.T) {
	s, app, db := newTestServer(t, nil)
	user := createTestUser(t, db, "leaver")

	req := httptest.NewRequest(http.MethodGet, "/auth/logout/", nil)
	signIn(t, s, req, user)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == "quill_session" && c.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared, "expected session cookie to be cleared")
}
