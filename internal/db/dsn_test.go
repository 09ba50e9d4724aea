package db

import (
	"errors"
	"testing"
)

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"url passthrough", "postgres://u:p@localhost:5432/app?sslmode=disable", "postgres://u:p@localhost:5432/app?sslmode=disable"},
		{"quoted url", `"postgres://u:p@h/db"`, "postgres://u:p@h/db"},
		{"kv adds sslmode", "host=localhost user=app dbname=app", "host=localhost user=app dbname=app sslmode=disable"},
		{"kv keeps sslmode", "host=h sslmode=require", "host=h sslmode=require"},
		{"kv collapses spaces", "host=h   user=u  dbname=d sslmode=disable", "host=h user=u dbname=d sslmode=disable"},
		{"opaque unchanged", "not-a-dsn", "not-a-dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDSN(tt.in); got != tt.want {
				t.Errorf("NormalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=h password=secret dbname=d"); got != "host=h password=*** dbname=d" {
		t.Errorf("kv mask = %q", got)
	}
	if got := MaskDSN("postgres://app:secret@h:5432/db"); got != "postgres://app:***@h:5432/db" {
		t.Errorf("url mask = %q", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_invoices_number"`)) {
		t.Errorf("postgres message not detected")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: invoices.number")) {
		t.Errorf("sqlite message not detected")
	}
	if IsUniqueViolation(nil) || IsUniqueViolation(errors.New("connection refused")) {
		t.Errorf("false positive")
	}
}
