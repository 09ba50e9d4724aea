package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/diewo77/backoffice/internal/auth"
	"github.com/diewo77/backoffice/internal/config"
	"github.com/diewo77/backoffice/internal/httpx"
	"github.com/diewo77/backoffice/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves signup, login, logout and the profile routes.
type AuthHandler struct {
	DB    *gorm.DB
	Media config.MediaConfig
}

func NewAuthHandler(conn *gorm.DB, media config.MediaConfig) *AuthHandler {
	return &AuthHandler{DB: conn, Media: media}
}

// Register wires the auth routes onto the mux. Signup/login/logout are
// public; the profile routes sit behind the auth middleware.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/signup", h.Signup)
	mux.HandleFunc("/login", h.Login)
	mux.HandleFunc("/logout", h.Logout)
	mux.Handle("/profile", auth.Middleware(auth.RequireAuth(http.HandlerFunc(h.Profile))))
	mux.Handle("/profile/picture", auth.Middleware(auth.RequireAuth(http.HandlerFunc(h.UploadPicture))))
}

// Signup: POST /signup with email/password/first_name/last_name.
// Accounts start as regular (non-staff) users.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	if email == "" || !strings.Contains(email, "@") {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"email": "invalid"})
		return
	}
	if len(password) < 8 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"password": "too_short"})
		return
	}
	var count int64
	h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "email_taken", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_user", nil)
		return
	}
	user := models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Role:      models.RoleStaff,
		IsActive:  true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_user", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

// Login: POST /login with email/password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if !user.IsActive {
		httpx.JSONError(w, http.StatusUnauthorized, "account_disabled", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	zap.S().Infow("user logged in", "user", user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

// Logout: POST /logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Profile: GET /profile returns the authenticated account.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// UploadPicture: POST /profile/picture with a profile_picture file.
func (h *AuthHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	file, header, err := r.FormFile("profile_picture")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"profile_picture": "required"})
		return
	}
	defer file.Close()

	dir := filepath.Join(h.Media.MediaRoot, "profile_pictures")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_store_picture", nil)
		return
	}
	base := filepath.Base(header.Filename)
	dest := filepath.Join(dir, base)
	out, err := os.Create(dest)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_store_picture", nil)
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_store_picture", nil)
		return
	}
	user.ProfilePicture = filepath.ToSlash(filepath.Join("profile_pictures", base))
	if err := h.DB.Model(user).Update("profile_picture", user.ProfilePicture).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_store_picture", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
