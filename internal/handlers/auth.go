package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkpress/internal/middleware"
	"inkpress/internal/session"
	"inkpress/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions    *session.Store
	authorStore *store.AuthorStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, authorStore *store.AuthorStore) *Auth {
	return &Auth{
		sessions:    sessions,
		authorStore: authorStore,
	}
}

// Login authenticates username and password and opens a session with
// TwoFADone=false. The response tells the client whether 2FA enrollment
// or 2FA verification comes next.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	author, err := a.authorStore.FindByUsername(req.Username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// One generic failure for unknown user, wrong password, and
	// deactivated accounts; don't leak which it was.
	if author == nil || !author.IsActive || !a.authorStore.CheckPassword(author, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	// TwoFADone starts as false — the author must complete 2FA.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		AuthorID:    author.ID,
		Username:    author.Username,
		DisplayName: author.DisplayName,
		IsAdmin:     author.IsAdmin,
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"needs_2fa_setup": author.Needs2FASetup(),
	})
}

// TwoFASetup generates a fresh TOTP secret for the authenticated author
// and returns the provisioning QR code as base64-encoded PNG.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "inkpress",
		AccountName: sess.Username,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := a.authorStore.SetTOTPSecret(sess.AuthorID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"secret":  key.Secret(),
		"qr_png":  base64.StdEncoding.EncodeToString(qrPNG),
		"otp_url": key.URL(),
	})
}

// TwoFAVerify validates the TOTP code and completes authentication.
// On first-time setup the code verification also enables 2FA.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	author, err := a.authorStore.FindByID(sess.AuthorID)
	if err != nil || author == nil {
		slog.Error("author lookup for 2fa failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if author.TOTPSecret == nil {
		writeError(w, http.StatusConflict, "2fa not set up")
		return
	}

	if !totp.Validate(req.Code, *author.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	// First-time setup: enable TOTP after the first valid code.
	if !author.TOTPEnabled {
		if err := a.authorStore.EnableTOTP(author.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := a.authorStore.TouchLastLogin(author.ID); err != nil {
		slog.Warn("touch last login failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"author_id":    author.ID,
		"username":     author.Username,
		"display_name": author.DisplayName,
		"is_admin":     author.IsAdmin,
	})
}

// Me returns the authenticated author's own profile.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	author, err := a.authorStore.FindByID(sess.AuthorID)
	if err != nil {
		slog.Error("author lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if author == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, author)
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
