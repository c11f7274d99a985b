package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleFaculty UserRole = "FACULTY"
	RoleAdmin   UserRole = "ADMIN"
)

// User is an account holder. Accounts created through the signup flow start
// unverified with a pending verification code; accounts created through
// Google sign-in have no password hash and are verified immediately.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	Name     string   `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;default:STUDENT"`
	Position *string  `json:"position" gorm:"size:100"`

	// Profile info
	ProfileImage string `json:"profile_image" gorm:"size:500;default:/profileImage.png"`

	// Credentials
	PasswordHash *string `json:"-" gorm:"size:255"`

	// Verification state
	IsVerified             bool       `json:"is_verified" gorm:"default:false"`
	VerificationCode       *string    `json:"-" gorm:"size:6"`
	VerificationCodeExpiry *time.Time `json:"-"`

	// Password reset state
	ResetToken       *string    `json:"-" gorm:"size:64;index"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// RoleAssignment is the authoritative role record keyed by email. The role
// stored on the user row is a cached copy refreshed at sign-in.
type RoleAssignment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role      UserRole  `json:"role" gorm:"not null;size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RoleAssignment) TableName() string {
	return "role_assignments"
}
