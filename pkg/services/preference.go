package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/teamline/teamline/internal/cache"
	"github.com/teamline/teamline/pkg/httputil"
	"github.com/teamline/teamline/pkg/mapper"
	"github.com/teamline/teamline/pkg/models"
	"github.com/teamline/teamline/pkg/schemas"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const preferenceCacheTTL = 10 * time.Minute

// preferenceValue reads one preference through the cache. A preference the
// user never wrote is an empty string, not an error.
func (s *ApiService) preferenceValue(userID int64, category, name string) (string, error) {
	return cache.Fetch(s.cache, cache.PreferenceKey(userID, category, name), preferenceCacheTTL,
		func() (string, error) {
			var pref models.Preference
			err := s.db.Where("user_id = ? AND category = ? AND name = ?", userID, category, name).
				First(&pref).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", nil
			}
			if err != nil {
				return "", err
			}
			return pref.Value, nil
		})
}

func (s *ApiService) savePreference(userID int64, category, name, value string) error {
	row := models.Preference{UserId: userID, Category: category, Name: name, Value: value}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return err
	}
	return s.cache.Delete(cache.PreferenceKey(userID, category, name))
}

func (s *ApiService) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	userID, _, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}
	category := chi.URLParam(r, "category")
	name := chi.URLParam(r, "name")

	value, err := s.preferenceValue(userID, category, name)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mapper.ToPreferenceOut(&models.Preference{
		UserId:   userID,
		Category: category,
		Name:     name,
		Value:    value,
	}))
}

func (s *ApiService) handlePutPreference(w http.ResponseWriter, r *http.Request) {
	userID, _, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}
	category := chi.URLParam(r, "category")
	name := chi.URLParam(r, "name")

	var in schemas.PreferenceIn
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if err := s.savePreference(userID, category, name, in.Value); err != nil {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mapper.ToPreferenceOut(&models.Preference{
		UserId:   userID,
		Category: category,
		Name:     name,
		Value:    in.Value,
	}))
}
