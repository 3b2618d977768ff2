package model

import "time"

type User struct {
	ID            string `gorm:"primaryKey;type:text;not null"`
	Email         string `gorm:"uniqueIndex;not null;size:255"`
	Role          string `gorm:"not null;default:user;size:20"`
	WalletAddress string `gorm:"size:64;index"`
	LastLoginAt   *time.Time
	LastLoginIP   string `gorm:"size:45"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
