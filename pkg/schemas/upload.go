package schemas

import "time"

type UploadOut struct {
	ClientId  string    `json:"clientId"`
	ChannelId string    `json:"channelId"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type UploadBatchOut struct {
	Accepted []UploadOut `json:"accepted"`
	// RejectedTooLarge lists filenames over the size cap, in input order.
	RejectedTooLarge []string `json:"rejectedTooLarge"`
	// RejectedOverQuota counts files not attempted because the channel's
	// upload quota ran out.
	RejectedOverQuota int `json:"rejectedOverQuota"`
	// Message is the user-facing rejection summary, empty when everything
	// was accepted.
	Message string `json:"message,omitempty"`
}

type Message struct {
	Message string `json:"message"`
}
