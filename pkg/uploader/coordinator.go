package uploader

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type pendingUpload struct {
	channelID string
	req       Request
}

// Coordinator mediates between file batches and a Transport, enforcing the
// per-channel count and per-file size policy and tracking in-flight requests
// by client id so they can be cancelled. One coordinator is scoped to one
// composing surface; entries are never shared or persisted.
type Coordinator struct {
	transport Transport
	hooks     Hooks
	log       *zap.Logger

	mu      sync.Mutex
	pending map[string]pendingUpload
}

func NewCoordinator(transport Transport, hooks Hooks, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		transport: transport,
		hooks:     hooks,
		log:       logger.Named("uploads"),
		pending:   make(map[string]pendingUpload),
	}
}

// SubmitBatch scans files in input order. Oversized files are rejected without
// consuming quota; accepted files stop once the remaining quota for the
// channel is exhausted and everything after that point counts as over-quota.
// currentCount is the number of uploads already pending or attached for the
// channel.
func (c *Coordinator) SubmitBatch(files []File, channelID string, currentCount int, limits Limits) BatchResult {
	var res BatchResult

	remaining := limits.MaxFiles - currentCount
	if remaining < 0 {
		remaining = 0
	}

	for i, f := range files {
		if f.Size > limits.MaxFileSize {
			res.RejectedTooLarge = append(res.RejectedTooLarge, f)
			continue
		}
		if len(res.Accepted) >= remaining {
			res.RejectedOverQuota = len(files) - i
			break
		}

		clientID := uuid.New().String()

		if c.hooks.OnStarted != nil {
			c.hooks.OnStarted(clientID, channelID)
		}

		c.log.Debug("upload enqueued",
			zap.String("clientId", clientID),
			zap.String("channelId", channelID),
			zap.String("fileName", f.Name),
			zap.Int64("size", f.Size))

		payload := Payload{
			ClientID:  clientID,
			ChannelID: channelID,
			Filename:  f.Name,
			Size:      f.Size,
			Data:      f.Data,
		}

		// The entry must be registered before the transport's completion
		// callbacks can observe the map, so the Upload call happens under
		// the lock. Transports never call back synchronously.
		c.mu.Lock()
		req := c.transport.Upload(payload,
			func(data any) { c.HandleSuccess(clientID, channelID, data) },
			func(err error) { c.HandleFailure(clientID, err) })
		c.pending[clientID] = pendingUpload{channelID: channelID, req: req}
		c.mu.Unlock()

		res.Accepted = append(res.Accepted, f)
		res.AcceptedIDs = append(res.AcceptedIDs, clientID)
	}

	return res
}

// take removes and returns the pending entry for clientID. The second return
// is false if the entry was already finalized, which callers treat as a no-op.
func (c *Coordinator) take(clientID string) (pendingUpload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[clientID]
	if ok {
		delete(c.pending, clientID)
	}
	return p, ok
}

// HandleSuccess finalizes the upload for clientID and forwards the transport
// payload to the completed hook. Duplicate delivery is a no-op.
func (c *Coordinator) HandleSuccess(clientID, channelID string, data any) {
	if _, ok := c.take(clientID); !ok {
		return
	}
	if c.hooks.OnCompleted != nil {
		c.hooks.OnCompleted(clientID, channelID, data)
	}
}

// HandleFailure finalizes the upload for clientID and forwards the error to
// the failed hook. The coordinator never retries; a failed upload must be
// resubmitted from scratch. Duplicate delivery is a no-op.
func (c *Coordinator) HandleFailure(clientID string, err error) {
	if _, ok := c.take(clientID); !ok {
		return
	}
	c.log.Debug("upload failed", zap.String("clientId", clientID), zap.Error(err))
	if c.hooks.OnFailed != nil {
		c.hooks.OnFailed(clientID, err)
	}
}

// Cancel aborts the transport request for clientID and forgets the entry
// without waiting for confirmation. It reports whether an entry was found;
// cancelling an unknown or already finalized id is a no-op.
func (c *Coordinator) Cancel(clientID string) bool {
	p, ok := c.take(clientID)
	if !ok {
		return false
	}
	p.req.Abort()
	return true
}

// CancelAll cancels every tracked upload. Safe to call from teardown paths;
// stray transport callbacks arriving afterwards are no-ops.
func (c *Coordinator) CancelAll() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.Cancel(id)
	}
}

// PendingCount reports the number of tracked uploads for a channel.
func (c *Coordinator) PendingCount(channelID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, p := range c.pending {
		if p.channelID == channelID {
			n++
		}
	}
	return n
}
