package models

import "time"

// Parent is linked to its children through the parent_students join table
// (guardianship is many-to-many: shared custody, siblings).
type Parent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"` // portal account (users.id)
	FirstName string    `json:"first_name" gorm:"size:50;not null"`
	LastName  string    `json:"last_name" gorm:"size:50;not null"`
	Phone     string    `json:"phone" gorm:"size:20"`
	Email     string    `json:"email" gorm:"size:120"`
	Students  []Student `json:"students,omitempty" gorm:"many2many:parent_students"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
