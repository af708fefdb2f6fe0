// auth_flow_test.go contains handler integration tests for the Auth handler
// methods: Login, TwoFASetup, TwoFAVerify, Me, and Logout. Tests exercise
// real database and Valkey connections; they are skipped when those
// services are unavailable.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkpress/internal/session"
)

// --------------------------------------------------------------------------
// Login
// --------------------------------------------------------------------------

// TestLogin_ValidCredentials verifies that a correct username/password pair
// opens a session and reports whether 2FA enrollment is still needed.
func TestLogin_ValidCredentials(t *testing.T) {
	env := newTestEnv(t)
	createHandlerAuthor(t, env, "login-valid-author", false)

	body := `{"username": "login-valid-author", "password": "s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	env.Auth.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Needs2FASetup bool `json:"needs_2fa_setup"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Needs2FASetup {
		t.Error("fresh author without TOTP should need 2FA setup")
	}

	// A session cookie should have been set.
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected session cookie to be set after successful login")
	}
}

// TestLogin_WrongPassword verifies the generic 401 for a bad password.
func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	createHandlerAuthor(t, env, "login-wrongpw-author", false)

	body := `{"username": "login-wrongpw-author", "password": "not-the-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	env.Auth.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "invalid username or password") {
		t.Error("expected generic credential error in response body")
	}
}

// TestLogin_UnknownUsername verifies the same generic 401 for an unknown
// username as for a wrong password.
func TestLogin_UnknownUsername(t *testing.T) {
	env := newTestEnv(t)

	body := `{"username": "no-such-author-xyz", "password": "irrelevant"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	env.Auth.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "invalid username or password") {
		t.Error("expected generic credential error in response body")
	}
}

// TestLogin_InactiveAccount verifies that deactivated accounts get the same
// generic 401 as wrong credentials.
func TestLogin_InactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	author := createHandlerAuthor(t, env, "login-inactive-author", false)

	author.IsActive = false
	if err := env.Authors.Update(author); err != nil {
		t.Fatalf("deactivate author: %v", err)
	}

	body := `{"username": "login-inactive-author", "password": "s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	env.Auth.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestLogin_BadJSON verifies a 400 on a malformed request body.
func TestLogin_BadJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	env.Auth.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// --------------------------------------------------------------------------
// TwoFASetup
// --------------------------------------------------------------------------

// TestTwoFASetup_NoSession verifies a 401 without a session.
func TestTwoFASetup_NoSession(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/setup", nil)
	rec := httptest.NewRecorder()

	env.Auth.TwoFASetup(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestTwoFASetup_GeneratesSecret verifies that setup stores a TOTP secret
// and returns the provisioning material.
func TestTwoFASetup_GeneratesSecret(t *testing.T) {
	env := newTestEnv(t)
	author := createHandlerAuthor(t, env, "2fa-setup-author", false)

	sess := testSession(author, false)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/setup", nil)
	req = withSession(req, sess)
	rec := httptest.NewRecorder()

	env.Auth.TwoFASetup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Secret string `json:"secret"`
		QRPNG  string `json:"qr_png"`
		OTPURL string `json:"otp_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Secret == "" {
		t.Error("expected a TOTP secret in the response")
	}
	if resp.QRPNG == "" {
		t.Error("expected a base64 QR code in the response")
	}
	if !strings.Contains(resp.OTPURL, "otpauth://") {
		t.Errorf("otp_url: got %q, want otpauth:// URL", resp.OTPURL)
	}

	// The secret must be persisted but not yet enabled.
	stored, err := env.Authors.FindByID(author.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload author: %v", err)
	}
	if stored.TOTPSecret == nil || *stored.TOTPSecret != resp.Secret {
		t.Error("TOTP secret was not persisted")
	}
	if stored.TOTPEnabled {
		t.Error("TOTP must not be enabled before the first valid code")
	}
}

// --------------------------------------------------------------------------
// TwoFAVerify
// --------------------------------------------------------------------------

// TestTwoFAVerify_NotSetUp verifies a 409 when no TOTP secret exists yet.
func TestTwoFAVerify_NotSetUp(t *testing.T) {
	env := newTestEnv(t)
	author := createHandlerAuthor(t, env, "2fa-verify-nosecret", false)

	sess := testSession(author, false)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/verify", strings.NewReader(`{"code": "123456"}`))
	req = withSession(req, sess)
	rec := httptest.NewRecorder()

	env.Auth.TwoFAVerify(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

// TestTwoFAVerify_InvalidCode verifies a 401 for a wrong TOTP code.
func TestTwoFAVerify_InvalidCode(t *testing.T) {
	env := newTestEnv(t)
	author := createHandlerAuthor(t, env, "2fa-verify-badcode", false)

	if err := env.Authors.SetTOTPSecret(author.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("set totp secret: %v", err)
	}

	sess := testSession(author, false)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/verify", strings.NewReader(`{"code": "000000"}`))
	req = withSession(req, sess)
	rec := httptest.NewRecorder()

	env.Auth.TwoFAVerify(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "invalid code") {
		t.Error("expected 'invalid code' in response body")
	}
}

// --------------------------------------------------------------------------
// Me
// --------------------------------------------------------------------------

// TestMe_ReturnsProfile verifies that Me returns the session author's
// full profile.
func TestMe_ReturnsProfile(t *testing.T) {
	env := newTestEnv(t)
	author := createHandlerAuthor(t, env, "me-author", false)

	sess := testSession(author, true)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = withSession(req, sess)
	rec := httptest.NewRecorder()

	env.Auth.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "me-author") {
		t.Error("expected username in profile response")
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("password hash must never appear in API responses")
	}
}

// TestMe_NoSession verifies a 401 without a session.
func TestMe_NoSession(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()

	env.Auth.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// --------------------------------------------------------------------------
// Logout
// --------------------------------------------------------------------------

// TestLogout_DestroysSession verifies that Logout clears the session
// cookie and removes the session from Valkey.
func TestLogout_DestroysSession(t *testing.T) {
	env := newTestEnv(t)
	author := createHandlerAuthor(t, env, "logout-author", false)

	createRec := httptest.NewRecorder()
	ctx := context.Background()
	sessID, err := env.Sessions.Create(ctx, createRec, &session.Data{
		AuthorID:  author.ID,
		Username:  author.Username,
		TwoFADone: true,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sessID == "" {
		t.Fatal("session ID should not be empty")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range createRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()

	env.Auth.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	// The cookie must be expired.
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			if c.MaxAge >= 0 {
				t.Errorf("expected session cookie MaxAge < 0 (cleared), got %d", c.MaxAge)
			}
			break
		}
	}

	// The session must be gone from Valkey.
	getReq := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range createRec.Result().Cookies() {
		getReq.AddCookie(c)
	}
	data, err := env.Sessions.Get(ctx, getReq)
	if err != nil {
		t.Fatalf("session get: %v", err)
	}
	if data != nil {
		t.Error("session should be destroyed after logout")
	}
}
