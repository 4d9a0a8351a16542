package domain

import "time"

// Address is stored inline on the client row.
type Address struct {
	CEP      string `json:"cep"      gorm:"column:cep;size:10"`
	Street   string `json:"street"   gorm:"size:100"`
	Number   int    `json:"number"`
	District string `json:"district" gorm:"size:100"`
	City     string `json:"city"     gorm:"size:100"`
	UF       string `json:"uf"       gorm:"column:uf;size:2"`
}

// Client is a delivery-requesting profile. UserID is nil for profiles
// created by staff without a login.
type Client struct {
	ID        uint      `json:"id"       gorm:"primaryKey"`
	UserID    *uint     `json:"user_id"  gorm:"uniqueIndex"`
	User      *User     `json:"-"        gorm:"constraint:OnDelete:CASCADE"`
	Name      string    `json:"name"     gorm:"size:40;not null"`
	Birthday  time.Time `json:"birthday" gorm:"type:date;not null"`
	Address   Address   `json:"address"  gorm:"embedded;embeddedPrefix:address_"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transporter is a delivery-fulfilling profile.
type Transporter struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	UserID      *uint     `json:"user_id"      gorm:"uniqueIndex"`
	User        *User     `json:"-"            gorm:"constraint:OnDelete:CASCADE"`
	Name        string    `json:"name"         gorm:"size:40;not null"`
	Birthday    time.Time `json:"birthday"     gorm:"type:date;not null"`
	CNH         string    `json:"cnh"          gorm:"column:cnh;size:20;not null"`
	CategoryCNH string    `json:"category_cnh" gorm:"column:category_cnh;size:5;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnedBy reports whether the profile is linked to the given identity.
func (c *Client) OwnedBy(userID uint) bool {
	return c.UserID != nil && *c.UserID == userID
}

func (t *Transporter) OwnedBy(userID uint) bool {
	return t.UserID != nil && *t.UserID == userID
}
