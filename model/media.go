package model

import "time"

type MediaAsset struct {
	ID          string `gorm:"primaryKey;type:text;not null"`
	EventID     string `gorm:"index;size:64"`
	FileName    string `gorm:"not null;size:255"`
	ObjectName  string `gorm:"not null;size:500"`
	ContentType string `gorm:"not null;size:100"`
	FileSize    int64  `gorm:"not null"`
	URL         string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
