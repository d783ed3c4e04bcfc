package schemas

import "time"

type ScheduleOptionOut struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	// Timestamp is the resolved instant in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
	// TeammateTime is the option rendered as the direct-message partner's
	// wall-clock time, set only when a teammate was supplied.
	TeammateTime string `json:"teammateTime,omitempty"`
}

type ScheduledPostIn struct {
	ChannelId string `json:"channelId"`
	Message   string `json:"message"`
	// ScheduledAt is the target instant in Unix milliseconds.
	ScheduledAt int64 `json:"scheduledAt"`
	// Custom marks a hand-picked time rather than a quick option; custom
	// times are remembered and resurfaced in later menus.
	Custom bool `json:"custom"`
}

type ScheduledPostOut struct {
	Id          string     `json:"id"`
	ChannelId   string     `json:"channelId"`
	Message     string     `json:"message"`
	ScheduledAt int64      `json:"scheduledAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
