package models

import (
	"time"
)

const (
	UploadPending   = "pending"
	UploadCompleted = "completed"
	UploadFailed    = "failed"
)

type Upload struct {
	ClientId   string    `gorm:"type:text;primaryKey"`
	UserId     int64     `gorm:"type:bigint;index"`
	ChannelId  string    `gorm:"type:text;index"`
	Name       string    `gorm:"type:text"`
	Size       int64     `gorm:"type:bigint"`
	Status     string    `gorm:"type:text;default:'pending'"`
	StorageKey string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"default:timezone('utc'::text, now())"`
	UpdatedAt  time.Time `gorm:"default:timezone('utc'::text, now())"`
}
