package domain

import "time"

// User models an authenticable identity. CPF is the external identifier
// (national tax ID) used as the login name.
type User struct {
	ID           uint      `json:"id"         gorm:"primaryKey"`
	CPF          string    `json:"cpf"        gorm:"column:cpf;size:15;uniqueIndex;not null"`
	PasswordHash string    `json:"-"          gorm:"not null"`
	IsActive     bool      `json:"is_active"  gorm:"not null;default:true"`
	IsStaff      bool      `json:"is_staff"   gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
	UserID  uint
	CPF     string
	IsStaff bool
	TokenID string
}
