package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/diewo77/backoffice/internal/auth"
	"github.com/diewo77/backoffice/internal/config"
	"github.com/diewo77/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Item{}, &models.Invoice{}, &models.Quotation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Load()
	cfg.Media.MediaRoot = t.TempDir()
	cfg.Letterhead.LogoPath = "testdata/missing-logo.png"
	cfg.Letterhead.LogoFallbackPath = "testdata/missing-logo-fallback.png"
	return cfg
}

func seedUser(t *testing.T, db *gorm.DB, staff bool) models.User {
	t.Helper()
	user := models.User{
		Email:    fmt.Sprintf("user-%t@test", staff),
		Password: "x",
		Role:     models.RoleStaff,
		IsStaff:  staff,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// asUser attaches the user id to the request context the way the auth
// middleware does.
func asUser(r *http.Request, uid uint) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), uid))
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
