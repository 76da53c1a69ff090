package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile shares its primary key with the auth account.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;index" json:"email"`
	FullName  string    `gorm:"column:full_name" json:"full_name"`
	Role      string    `gorm:"column:role;not null;default:'user'" json:"role"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// DisplayName falls back to the local part of the email address.
func (p Profile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	return p.Email
}

func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// NormalizeRole maps an empty role to RoleUser.
func NormalizeRole(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return RoleUser
	}
	return role
}
