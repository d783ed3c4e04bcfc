package services

import (
	"github.com/go-chi/chi/v5"
	"github.com/teamline/teamline/internal/cache"
	"github.com/teamline/teamline/internal/config"
	"github.com/teamline/teamline/internal/events"
	"github.com/teamline/teamline/internal/storage"
	"github.com/teamline/teamline/pkg/models"
	"github.com/teamline/teamline/pkg/uploader"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApiService owns the HTTP surface: upload coordination, schedule options,
// scheduled posts and preferences.
type ApiService struct {
	db          *gorm.DB
	cnf         *config.ServerCmdConfig
	cache       cache.Cacher
	coordinator *uploader.Coordinator
	broadcaster *events.Broadcaster
	log         *zap.Logger
}

func NewApiService(db *gorm.DB, cnf *config.ServerCmdConfig, cacher cache.Cacher,
	transport uploader.Transport, broadcaster *events.Broadcaster, lg *zap.Logger) *ApiService {

	s := &ApiService{
		db:          db,
		cnf:         cnf,
		cache:       cacher,
		broadcaster: broadcaster,
		log:         lg.Named("api"),
	}
	s.coordinator = uploader.NewCoordinator(transport, s.uploadHooks(), lg)
	return s
}

// uploadHooks bridges coordinator lifecycle into persistence and the event
// stream. Hooks run on transport goroutines.
func (s *ApiService) uploadHooks() uploader.Hooks {
	return uploader.Hooks{
		OnStarted: func(clientID, channelID string) {
			s.log.Debug("upload started", zap.String("clientId", clientID), zap.String("channelId", channelID))
		},
		OnCompleted: func(clientID, channelID string, data any) {
			row := models.Upload{ClientId: clientID, ChannelId: channelID, Status: models.UploadCompleted}
			if res, ok := data.(storage.UploadResult); ok {
				row.StorageKey = res.Key
			}
			// Upsert so a transport finishing before the batch handler has
			// persisted its rows still lands the terminal status.
			if err := s.db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "client_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "storage_key", "updated_at"}),
			}).Create(&row).Error; err != nil {
				s.log.Error("failed to finalize upload", zap.String("clientId", clientID), zap.Error(err))
			}
			s.publishUploadEvent(events.UploadCompleted, clientID, channelID)
		},
		OnFailed: func(clientID string, err error) {
			s.log.Warn("upload failed", zap.String("clientId", clientID), zap.Error(err))
			row := models.Upload{ClientId: clientID, Status: models.UploadFailed}
			if dbErr := s.db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "client_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
			}).Create(&row).Error; dbErr != nil {
				s.log.Error("failed to mark upload failed", zap.String("clientId", clientID), zap.Error(dbErr))
			}
			s.publishUploadEvent(events.UploadFailed, clientID, "")
		},
	}
}

func (s *ApiService) publishUploadEvent(eventType events.Type, clientID, channelID string) {
	var upload models.Upload
	if err := s.db.Where("client_id = ?", clientID).First(&upload).Error; err != nil {
		// Rows no longer present carry no owner to route the event to.
		return
	}
	if upload.UserId == 0 {
		return
	}
	if channelID == "" {
		channelID = upload.ChannelId
	}
	s.broadcaster.Publish(events.Event{
		Type:      eventType,
		UserID:    upload.UserId,
		ChannelID: channelID,
		ClientID:  clientID,
	})
}

// Shutdown cancels all in-flight uploads and closes the event stream.
func (s *ApiService) Shutdown() {
	s.coordinator.CancelAll()
	s.broadcaster.Shutdown()
}

// Routes registers every authenticated API route.
func (s *ApiService) Routes(r chi.Router) {
	r.Route("/uploads", func(r chi.Router) {
		r.Post("/{channelId}", s.handleUploadBatch)
		r.Delete("/{clientId}", s.handleCancelUpload)
		r.Delete("/", s.handleCancelAllUploads)
	})
	r.Get("/channels/{channelId}/uploads", s.handleListUploads)

	r.Route("/schedule", func(r chi.Router) {
		r.Get("/options", s.handleQuickOptions)
		r.Post("/posts", s.handleCreateScheduledPost)
		r.Get("/posts", s.handleListScheduledPosts)
		r.Delete("/posts/{id}", s.handleDeleteScheduledPost)
	})

	r.Route("/preferences", func(r chi.Router) {
		r.Get("/{category}/{name}", s.handleGetPreference)
		r.Put("/{category}/{name}", s.handlePutPreference)
	})

	r.Get("/events", s.handleEvents)
}
