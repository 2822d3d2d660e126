package models

import "gorm.io/gorm"

// User is the wallet owner. Authentication lives outside this service;
// deposit reconciliation resolves users by the provider-verified email.
type User struct {
	gorm.Model
	Email string `gorm:"uniqueIndex;not null"`
	Name  string `gorm:"not null"`
	Phone string
}
