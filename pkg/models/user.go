package models

import (
	"time"
)

type User struct {
	UserId    int64     `gorm:"type:bigint;primaryKey"`
	Username  string    `gorm:"type:text;uniqueIndex"`
	Timezone  string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"default:timezone('utc'::text, now())"`
	CreatedAt time.Time `gorm:"default:timezone('utc'::text, now())"`
}
