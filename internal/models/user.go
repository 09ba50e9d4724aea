package models

import "time"

// Roles assignable to accounts. Admin implies staff access.
const (
	RoleAdmin = "Admin"
	RoleStaff = "Staff"
)

// User is an email-keyed account. Staff users can view and manage any
// document; regular users only their own.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"-"`

	Email     string `gorm:"size:255;unique;not null;index" json:"email"`
	Password  string `gorm:"not null" json:"-"` // bcrypt hash
	FirstName string `gorm:"size:150" json:"first_name,omitempty"`
	LastName  string `gorm:"size:150" json:"last_name,omitempty"`

	Role     string `gorm:"size:20;not null;default:'Staff'" json:"role"`
	IsStaff  bool   `gorm:"not null;default:false" json:"is_staff"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`

	ProfilePicture string `gorm:"size:255" json:"profile_picture,omitempty"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
