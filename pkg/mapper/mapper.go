package mapper

import (
	"github.com/teamline/teamline/pkg/models"
	"github.com/teamline/teamline/pkg/schemas"
)

func ToUploadOut(in *models.Upload) schemas.UploadOut {
	return schemas.UploadOut{
		ClientId:  in.ClientId,
		ChannelId: in.ChannelId,
		Name:      in.Name,
		Size:      in.Size,
		Status:    in.Status,
		CreatedAt: in.CreatedAt,
	}
}

func ToScheduledPostOut(in *models.ScheduledPost) schemas.ScheduledPostOut {
	return schemas.ScheduledPostOut{
		Id:          in.Id,
		ChannelId:   in.ChannelId,
		Message:     in.Message,
		ScheduledAt: in.ScheduledAt.UnixMilli(),
		ProcessedAt: in.ProcessedAt,
		CreatedAt:   in.CreatedAt,
	}
}

func ToPreferenceOut(in *models.Preference) schemas.PreferenceOut {
	return schemas.PreferenceOut{
		Category: in.Category,
		Name:     in.Name,
		Value:    in.Value,
	}
}
