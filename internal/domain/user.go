package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Name         string          `json:"name"`
	Role         Role            `json:"role"`
	Credits      decimal.Decimal `json:"credits"`
	CreditsUsed  decimal.Decimal `json:"creditsUsed"`
	LastLoginAt  *time.Time      `json:"lastLoginAt"`
	LastLoginIP  *string         `json:"lastLoginIp"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NewUser carries the fields needed to insert a user row.
type NewUser struct {
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Credits      decimal.Decimal
}

type UserStats struct {
	ChatCount    int64           `json:"chatCount"`
	MessageCount int64           `json:"messageCount"`
	TotalTokens  int64           `json:"totalTokens"`
	Credits      decimal.Decimal `json:"credits"`
	CreditsUsed  decimal.Decimal `json:"creditsUsed"`
}
