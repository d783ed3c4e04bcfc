package models

import (
	"time"
)

// Preference categories and names the server itself reads.
const (
	PreferenceCategorySchedulePost = "schedule_post"
	PreferenceCategoryDisplay      = "display"

	PreferenceNameRecentCustomDate = "recently_used_custom_date"
	PreferenceNameTimezone         = "timezone"
)

type Preference struct {
	UserId    int64     `gorm:"type:bigint;primaryKey"`
	Category  string    `gorm:"type:text;primaryKey"`
	Name      string    `gorm:"type:text;primaryKey"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"default:timezone('utc'::text, now())"`
}
