package models

import (
	"time"
)

type Post struct {
	Id        string    `gorm:"type:text;primaryKey"`
	UserId    int64     `gorm:"type:bigint;index"`
	ChannelId string    `gorm:"type:text;index"`
	Message   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"default:timezone('utc'::text, now())"`
}
