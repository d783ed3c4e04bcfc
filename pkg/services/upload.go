package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/teamline/teamline/internal/config"
	"github.com/teamline/teamline/internal/events"
	"github.com/teamline/teamline/pkg/httputil"
	"github.com/teamline/teamline/pkg/mapper"
	"github.com/teamline/teamline/pkg/models"
	"github.com/teamline/teamline/pkg/schemas"
	"github.com/teamline/teamline/pkg/uploader"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

const multipartMemoryLimit = 64 << 20

func (s *ApiService) handleUploadBatch(w http.ResponseWriter, r *http.Request) {
	userID, _, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}
	channelID := chi.URLParam(r, "channelId")

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		httputil.WriteError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		httputil.WriteError(r.Context(), w, http.StatusBadRequest, errors.New("no files in request"))
		return
	}

	files := make([]uploader.File, 0, len(headers))
	for _, h := range headers {
		file := uploader.File{Name: h.Filename, Size: h.Size}
		// The transport reads file data after this handler returns, so the
		// part has to be spilled out of the request-scoped multipart form.
		// Oversized parts are never read; they can only be rejected.
		if h.Size <= s.cnf.Uploads.MaxFileSize {
			f, err := h.Open()
			if err != nil {
				httputil.WriteError(r.Context(), w, http.StatusBadRequest, err)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				httputil.WriteError(r.Context(), w, http.StatusBadRequest, err)
				return
			}
			file.Data = bytes.NewReader(data)
		}
		files = append(files, file)
	}

	var current int64
	if err := s.db.Model(&models.Upload{}).
		Where("channel_id = ? AND status = ?", channelID, models.UploadPending).
		Count(&current).Error; err != nil {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	limits := uploader.Limits{MaxFiles: s.cnf.Uploads.MaxFiles, MaxFileSize: s.cnf.Uploads.MaxFileSize}
	res := s.coordinator.SubmitBatch(files, channelID, int(current), limits)

	out := schemas.UploadBatchOut{
		RejectedTooLarge:  make([]string, 0, len(res.RejectedTooLarge)),
		RejectedOverQuota: res.RejectedOverQuota,
		Message:           batchMessage(res, s.cnf.Uploads),
	}
	for _, f := range res.RejectedTooLarge {
		out.RejectedTooLarge = append(out.RejectedTooLarge, f.Name)
	}

	for i, f := range res.Accepted {
		row := models.Upload{
			ClientId:  res.AcceptedIDs[i],
			UserId:    userID,
			ChannelId: channelID,
			Name:      f.Name,
			Size:      f.Size,
			Status:    models.UploadPending,
		}
		// Upsert, never overwriting status: the transport may already have
		// finalized this id.
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "channel_id", "name", "size"}),
		}).Create(&row).Error; err != nil {
			s.log.Error("failed to persist upload", zap.String("clientId", row.ClientId), zap.Error(err))
			continue
		}
		out.Accepted = append(out.Accepted, mapper.ToUploadOut(&row))
		s.broadcaster.Publish(events.Event{
			Type:      events.UploadStarted,
			UserID:    userID,
			ChannelID: channelID,
			ClientID:  row.ClientId,
		})
	}

	httputil.WriteJSON(w, http.StatusCreated, out)
}

// batchMessage renders the user-facing rejection summary for one batch, empty
// when every file was accepted.
func batchMessage(res uploader.BatchResult, cfg config.UploadConfig) string {
	var parts []string
	if res.RejectedOverQuota > 0 {
		parts = append(parts, fmt.Sprintf(
			"Uploads limited to %d files maximum. Please use additional posts for more files.", cfg.MaxFiles))
	}
	if len(res.RejectedTooLarge) > 0 {
		names := make([]string, len(res.RejectedTooLarge))
		for i, f := range res.RejectedTooLarge {
			names[i] = f.Name
		}
		noun := "File"
		if len(names) > 1 {
			noun = "Files"
		}
		parts = append(parts, fmt.Sprintf("%s above %dMB could not be uploaded: %s",
			noun, cfg.MaxFileSize/(1024*1024), strings.Join(names, ", ")))
	}
	return strings.Join(parts, " ")
}

func (s *ApiService) handleCancelUpload(w http.ResponseWriter, r *http.Request) {
	userID, _, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}
	clientID := chi.URLParam(r, "clientId")

	s.coordinator.Cancel(clientID)
	if err := s.db.Where("client_id = ? AND user_id = ?", clientID, userID).
		Delete(&models.Upload{}).Error; err != nil {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, schemas.Message{Message: "upload canceled"})
}

func (s *ApiService) handleCancelAllUploads(w http.ResponseWriter, r *http.Request) {
	userID, _, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}

	q := s.db.Model(&models.Upload{}).
		Where("user_id = ? AND status = ?", userID, models.UploadPending)
	if ch := r.URL.Query().Get("channelId"); ch != "" {
		q = q.Where("channel_id = ?", ch)
	}

	var ids []string
	if err := q.Pluck("client_id", &ids).Error; err != nil {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	for _, id := range ids {
		s.coordinator.Cancel(id)
	}
	if len(ids) > 0 {
		if err := s.db.Where("client_id IN ?", ids).Delete(&models.Upload{}).Error; err != nil {
			httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, schemas.Message{
		Message: fmt.Sprintf("canceled %d uploads", len(ids)),
	})
}

func (s *ApiService) handleListUploads(w http.ResponseWriter, r *http.Request) {
	if _, _, err := sessionUser(r); err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}
	channelID := chi.URLParam(r, "channelId")

	var rows []models.Upload
	if err := s.db.Where("channel_id = ?", channelID).
		Order("created_at").Find(&rows).Error; err != nil {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	out := make([]schemas.UploadOut, 0, len(rows))
	for i := range rows {
		out = append(out, mapper.ToUploadOut(&rows[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
