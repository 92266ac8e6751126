package model

import "time"

type UserRole string

const (
	Student   UserRole = "student"
	Professor UserRole = "professor"
)

// swagger:model User
type User struct {
	BaseModel
	Username   string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email      string     `gorm:"size:128" json:"email,omitempty"`
	Password   string     `gorm:"size:128;not null" json:"-"`
	Role       UserRole   `gorm:"size:20;not null;default:'student'" json:"role"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (r UserRole) Valid() bool {
	return r == Student || r == Professor
}
