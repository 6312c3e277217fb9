package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleDean      UserRole = "dean"
	RoleRegistrar UserRole = "registrar"
	RoleHOD       UserRole = "hod"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	gorm.Model
	Username     string   `gorm:"unique;not null"`
	Email        string   `gorm:"unique;not null"`
	PasswordHash string   `gorm:"not null"` // Bcrypt hash of password
	Role         UserRole `gorm:"not null;default:'student'"`
	FirstName    string
	LastName     string
	Department   string
	ActiveStatus bool `gorm:"not null;default:true"`
	LastLogin    time.Time
}
