package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// IsStaff reports whether the role may author tests and see answer keys.
func (r UserRole) IsStaff() bool {
	return r == Teacher || r == Admin
}

func (r UserRole) Valid() bool {
	return r == Student || r == Teacher || r == Admin
}

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;default:'student'" json:"role"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"last_login"`
}

func (User) TableName() string {
	return "users"
}
