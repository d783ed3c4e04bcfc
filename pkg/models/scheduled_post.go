package models

import (
	"time"
)

type ScheduledPost struct {
	Id          string     `gorm:"type:text;primaryKey"`
	UserId      int64      `gorm:"type:bigint;index"`
	ChannelId   string     `gorm:"type:text;index"`
	Message     string     `gorm:"type:text"`
	ScheduledAt time.Time  `gorm:"index"`
	ProcessedAt *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"default:timezone('utc'::text, now())"`
	UpdatedAt   time.Time  `gorm:"default:timezone('utc'::text, now())"`
}
