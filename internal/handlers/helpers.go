package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/backoffice/internal/auth"
	"github.com/diewo77/backoffice/internal/models"
	"gorm.io/gorm"
)

// dateLayout is the day-first format used on submission forms and in
// rendered documents.
const dateLayout = "02-01-2006"

// currentUser loads the authenticated account for the request. The auth
// middleware guarantees a uid is present on protected routes.
func currentUser(r *http.Request, db *gorm.DB) (*models.User, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		return nil, false
	}
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// queryID reads the numeric id parameter common to the detail routes.
func queryID(r *http.Request) (uint, bool) {
	v := r.URL.Query().Get("id")
	if v == "" {
		v = r.FormValue("id")
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseDate parses a form date, falling back to def on any problem.
// Permissive by policy: bad input never rejects a submission.
func parseDate(value string, def time.Time) time.Time {
	if value == "" {
		return def
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return def
}
