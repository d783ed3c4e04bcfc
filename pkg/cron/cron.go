package cron

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/teamline/teamline/internal/config"
	"github.com/teamline/teamline/internal/events"
	"github.com/teamline/teamline/pkg/models"
	"github.com/teamline/teamline/pkg/schedule"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CronService owns the background maintenance jobs: dispatching due scheduled
// posts, expiring unfinished uploads and pruning stale schedule preferences.
type CronService struct {
	db          *gorm.DB
	cnf         *config.ServerCmdConfig
	broadcaster *events.Broadcaster
	log         *zap.Logger
	cron        *cron.Cron
}

func StartCronJobs(db *gorm.DB, cnf *config.ServerCmdConfig, broadcaster *events.Broadcaster, lg *zap.Logger) (*CronService, error) {
	c := &CronService{
		db:          db,
		cnf:         cnf,
		broadcaster: broadcaster,
		log:         lg.Named("cron"),
		cron:        cron.New(),
	}

	jobs := []struct {
		interval time.Duration
		run      func()
	}{
		{cnf.CronJobs.DispatchInterval, c.dispatchScheduledPosts},
		{cnf.CronJobs.CleanUploadsInterval, c.cleanUploads},
		{cnf.CronJobs.PrunePreferencesInterval, c.prunePreferences},
	}
	for _, job := range jobs {
		if _, err := c.cron.AddFunc(fmt.Sprintf("@every %s", job.interval), job.run); err != nil {
			return nil, err
		}
	}

	c.cron.Start()
	return c, nil
}

// Stop halts scheduling and waits for running jobs to finish.
func (c *CronService) Stop() {
	<-c.cron.Stop().Done()
}

// dispatchScheduledPosts turns due scheduled posts into posts. Each row is
// claimed before its post is created, so a dispatch racing another instance
// publishes at most once.
func (c *CronService) dispatchScheduledPosts() {
	var due []models.ScheduledPost
	if err := c.db.Where("scheduled_at <= ? AND processed_at IS NULL", time.Now().UTC()).
		Order("scheduled_at").Find(&due).Error; err != nil {
		c.log.Error("failed to load due scheduled posts", zap.Error(err))
		return
	}

	for i := range due {
		sp := &due[i]
		now := time.Now().UTC()
		claim := c.db.Model(&models.ScheduledPost{}).
			Where("id = ? AND processed_at IS NULL", sp.Id).
			Update("processed_at", now)
		if claim.Error != nil {
			c.log.Error("failed to claim scheduled post", zap.String("id", sp.Id), zap.Error(claim.Error))
			continue
		}
		if claim.RowsAffected == 0 {
			continue
		}

		post := models.Post{
			Id:        uuid.New().String(),
			UserId:    sp.UserId,
			ChannelId: sp.ChannelId,
			Message:   sp.Message,
		}
		if err := c.db.Create(&post).Error; err != nil {
			c.log.Error("failed to create post for scheduled post", zap.String("id", sp.Id), zap.Error(err))
			// Unclaim so the next run retries.
			c.db.Model(&models.ScheduledPost{}).Where("id = ?", sp.Id).Update("processed_at", nil)
			continue
		}

		c.log.Info("dispatched scheduled post",
			zap.String("id", sp.Id),
			zap.String("channelId", sp.ChannelId),
			zap.Time("scheduledAt", sp.ScheduledAt))
		c.broadcaster.Publish(events.Event{
			Type:      events.PostDispatched,
			UserID:    sp.UserId,
			ChannelID: sp.ChannelId,
		})
	}
}

// cleanUploads removes uploads that never completed within the retention
// window. Completed uploads are kept; their objects back posted attachments.
func (c *CronService) cleanUploads() {
	cutoff := time.Now().UTC().Add(-c.cnf.Uploads.Retention)
	res := c.db.Where("status <> ? AND updated_at < ?", models.UploadCompleted, cutoff).
		Delete(&models.Upload{})
	if res.Error != nil {
		c.log.Error("failed to clean uploads", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		c.log.Info("cleaned expired uploads", zap.Int64("count", res.RowsAffected))
	}
}

// prunePreferences drops recently-used custom date records past the window in
// which the menu would still offer them.
func (c *CronService) prunePreferences() {
	cutoff := time.Now().UTC().Add(-schedule.RecentWindow)
	res := c.db.Where("category = ? AND name = ? AND updated_at < ?",
		models.PreferenceCategorySchedulePost, models.PreferenceNameRecentCustomDate, cutoff).
		Delete(&models.Preference{})
	if res.Error != nil {
		c.log.Error("failed to prune schedule preferences", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		c.log.Info("pruned stale schedule preferences", zap.Int64("count", res.RowsAffected))
	}
}
