package uploader

import "io"

// File is a file-like blob offered to SubmitBatch. Data is only read by the
// transport once the file is accepted.
type File struct {
	Name string
	Size int64
	Data io.Reader
}

// Limits holds the per-channel upload policy.
type Limits struct {
	// MaxFiles is the maximum number of uploads pending or attached per channel.
	MaxFiles int
	// MaxFileSize is the per-file size cap in bytes.
	MaxFileSize int64
}

// Payload is what the coordinator hands to the transport for one accepted file.
type Payload struct {
	ClientID  string
	ChannelID string
	Filename  string
	Size      int64
	Data      io.Reader
}

// Request is the abort capability of one in-flight transport upload.
type Request interface {
	Abort()
}

// Transport performs the actual upload. Implementations must deliver exactly
// one of onSuccess or onError per call, asynchronously, never from within
// Upload itself. Retries, timeouts and backoff are the transport's business.
type Transport interface {
	Upload(payload Payload, onSuccess func(data any), onError func(err error)) Request
}

// Hooks receive one-way notifications about upload lifecycle. Any hook may be
// nil. OnStarted fires on enqueue, before the transport call returns.
type Hooks struct {
	OnStarted   func(clientID, channelID string)
	OnCompleted func(clientID, channelID string, data any)
	OnFailed    func(clientID string, err error)
}

// BatchResult reports the outcome of one SubmitBatch call. Size and quota
// violations are data, not errors; the caller renders them.
type BatchResult struct {
	// Accepted holds files handed to the transport, in input order.
	Accepted []File
	// AcceptedIDs holds the client id generated for each accepted file,
	// index-aligned with Accepted.
	AcceptedIDs []string
	// RejectedTooLarge holds files over the size cap, in input order. They
	// never consume quota.
	RejectedTooLarge []File
	// RejectedOverQuota counts files not attempted because quota ran out.
	RejectedOverQuota int
}
