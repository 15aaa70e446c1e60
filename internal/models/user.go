// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string     `json:"name" gorm:"size:120;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	UserType     UserType   `json:"user_type" gorm:"type:varchar(20);not null;default:'adopter'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	Phone        string     `json:"phone,omitempty" gorm:"size:20"`
	CEP          string     `json:"cep,omitempty" gorm:"size:9"`
	City         string     `json:"city,omitempty" gorm:"size:120"`
	State        string     `json:"state,omitempty" gorm:"size:2"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	AdoptionRequests []AdoptionRequest `json:"adoption_requests,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
