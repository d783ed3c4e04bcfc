package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/teamline/teamline/internal/auth"
	"github.com/teamline/teamline/internal/cache"
	"github.com/teamline/teamline/internal/events"
	"github.com/teamline/teamline/pkg/httputil"
	"github.com/teamline/teamline/pkg/mapper"
	"github.com/teamline/teamline/pkg/models"
	"github.com/teamline/teamline/pkg/schedule"
	"github.com/teamline/teamline/pkg/schemas"
	"go.uber.org/zap"
)

// userLocation resolves the user's zone: the display timezone preference wins,
// the session claim is the fallback, UTC the last resort.
func (s *ApiService) userLocation(userID int64, claims *auth.Claims) *time.Location {
	name, err := s.preferenceValue(userID, models.PreferenceCategoryDisplay, models.PreferenceNameTimezone)
	if err != nil || name == "" {
		name = claims.Timezone
	}
	return schedule.UserLocation(name)
}

func (s *ApiService) handleQuickOptions(w http.ResponseWriter, r *http.Request) {
	userID, claims, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}

	now := time.Now()
	loc := s.userLocation(userID, claims)
	options := schedule.ResolveQuickOptions(now, loc)

	raw, err := s.preferenceValue(userID, models.PreferenceCategorySchedulePost, models.PreferenceNameRecentCustomDate)
	if err != nil {
		s.log.Warn("failed to load recent custom date", zap.Int64("userId", userID), zap.Error(err))
	}
	options = schedule.MaybeAppendRecentCustom(options, now, raw, loc)

	teammateTZ := ""
	if teammate := r.URL.Query().Get("teammateId"); teammate != "" {
		teammateID, err := strconv.ParseInt(teammate, 10, 64)
		if err != nil {
			httputil.WriteError(r.Context(), w, http.StatusBadRequest, errors.New("invalid teammateId"))
			return
		}
		user, err := cache.Fetch(s.cache, cache.UserKey(teammateID), time.Hour, func() (models.User, error) {
			var u models.User
			err := s.db.Where("user_id = ?", teammateID).First(&u).Error
			return u, err
		})
		if err != nil {
			httputil.WriteError(r.Context(), w, http.StatusNotFound, errors.New("teammate not found"))
			return
		}
		teammateTZ = user.Timezone
	}

	out := make([]schemas.ScheduleOptionOut, 0, len(options))
	for _, opt := range options {
		o := schemas.ScheduleOptionOut{
			Kind:      string(opt.Kind),
			Label:     opt.Label,
			Timestamp: opt.Millis(),
		}
		if teammateTZ != "" {
			if t, err := schedule.FormatTeammateLocalTime(opt.Millis(), teammateTZ); err == nil {
				o.TeammateTime = t
			}
		}
		out = append(out, o)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (s *ApiService) handleCreateScheduledPost(w http.ResponseWriter, r *http.Request) {
	userID, _, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}

	var in schemas.ScheduledPostIn
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if in.ChannelId == "" || in.Message == "" {
		httputil.WriteError(r.Context(), w, http.StatusBadRequest, errors.New("channelId and message are required"))
		return
	}
	now := time.Now()
	if in.ScheduledAt <= now.UnixMilli() {
		httputil.WriteError(r.Context(), w, http.StatusBadRequest, errors.New("scheduled time must be in the future"))
		return
	}

	row := models.ScheduledPost{
		Id:          uuid.New().String(),
		UserId:      userID,
		ChannelId:   in.ChannelId,
		Message:     in.Message,
		ScheduledAt: time.UnixMilli(in.ScheduledAt).UTC(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	if in.Custom {
		rec, _ := json.Marshal(schedule.RecentRecord{
			UpdateAt:  now.UnixMilli(),
			Timestamp: in.ScheduledAt,
		})
		if err := s.savePreference(userID, models.PreferenceCategorySchedulePost,
			models.PreferenceNameRecentCustomDate, string(rec)); err != nil {
			s.log.Warn("failed to remember custom date", zap.Int64("userId", userID), zap.Error(err))
		}
	}

	s.broadcaster.Publish(events.Event{
		Type:      events.PostScheduled,
		UserID:    userID,
		ChannelID: in.ChannelId,
	})
	httputil.WriteJSON(w, http.StatusCreated, mapper.ToScheduledPostOut(&row))
}

func (s *ApiService) handleListScheduledPosts(w http.ResponseWriter, r *http.Request) {
	userID, _, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}

	q := s.db.Where("user_id = ? AND processed_at IS NULL", userID)
	if ch := r.URL.Query().Get("channelId"); ch != "" {
		q = q.Where("channel_id = ?", ch)
	}
	var rows []models.ScheduledPost
	if err := q.Order("scheduled_at").Find(&rows).Error; err != nil {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	out := make([]schemas.ScheduledPostOut, 0, len(rows))
	for i := range rows {
		out = append(out, mapper.ToScheduledPostOut(&rows[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (s *ApiService) handleDeleteScheduledPost(w http.ResponseWriter, r *http.Request) {
	userID, _, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}
	id := chi.URLParam(r, "id")

	// Deleting an unknown or already dispatched id is a no-op.
	if err := s.db.Where("id = ? AND user_id = ? AND processed_at IS NULL", id, userID).
		Delete(&models.ScheduledPost{}).Error; err != nil {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, schemas.Message{Message: "scheduled post deleted"})
}
