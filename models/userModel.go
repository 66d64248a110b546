package models

import "gorm.io/gorm"

// Customer is identified by the exact email string it was first ordered with.
type Customer struct {
	gorm.Model
	Name  string `json:"name" gorm:"size:255;not null"`
	Email string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone string `json:"phone,omitempty" gorm:"size:64"`
}

type Admin struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password string `json:"-" gorm:"not null"`
}

type LoginData struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
