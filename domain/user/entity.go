package user

import (
	"time"
)

// User represents a customer or administrator account.
type User struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	Name         string    `gorm:"not null;type:text" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null;type:text" json:"email"`
	PasswordHash string    `gorm:"not null;type:text" json:"-"`
	Phone        string    `gorm:"type:text" json:"phone"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"isAdmin"`
	Street       string    `gorm:"type:text" json:"street"`
	Apartment    string    `gorm:"type:text" json:"apartment"`
	Zip          string    `gorm:"type:text" json:"zip"`
	City         string    `gorm:"type:text" json:"city"`
	Country      string    `gorm:"type:text" json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Claims is the identity carried by a verified token.
type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}
