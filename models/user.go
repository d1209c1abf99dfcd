package models

import "time"

// Portal roles. Admin passes every role check (see middlewares.RequireRole).
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// ValidRole reports whether r is one of the four portal roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:60;not null"`
	PasswordHash string    `json:"-" gorm:"size:100"` // bcrypt; empty until the account is activated
	Role         string    `json:"role" gorm:"size:20;not null"`
	Name         string    `json:"name" gorm:"size:120"`
	Active       bool      `json:"active" gorm:"not null;default:true"` // soft lifecycle, never hard-deleted
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
