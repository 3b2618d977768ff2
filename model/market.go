package model

import "time"

type Event struct {
	ID                string `gorm:"primaryKey;type:text;not null"`
	Title             string `gorm:"not null;size:200"`
	Slug              string `gorm:"uniqueIndex;not null;size:120"`
	Description       string `gorm:"type:text"`
	Category          string `gorm:"not null;index;size:30"`
	Status            string `gorm:"not null;default:open;index;size:20"`
	BannerURL         string `gorm:"size:500"`
	ClosesAt          time.Time
	ResolvedOutcomeID string    `gorm:"size:64"`
	Outcomes          []Outcome `gorm:"foreignKey:EventID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Outcome struct {
	ID       string `gorm:"primaryKey;type:text;not null"`
	EventID  string `gorm:"not null;index;size:64"`
	Label    string `gorm:"not null;size:80"`
	// Last traded price in basis points of one full share (0..10000).
	PriceBps  int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Position struct {
	ID        string `gorm:"primaryKey;type:text;not null"`
	UserID    string `gorm:"not null;index;size:64"`
	EventID   string `gorm:"not null;index;size:64"`
	OutcomeID string `gorm:"not null;size:64"`
	Side      string `gorm:"not null;size:10"`
	Shares    int64  `gorm:"not null"`
	// Price the position was entered at, in basis points.
	PriceBps  int `gorm:"not null"`
	CreatedAt time.Time
}
