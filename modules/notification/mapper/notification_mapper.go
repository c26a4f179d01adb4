package mapper

import (
	"classtime/modules/notification/dto"
	"classtime/modules/notification/entity"
)

func ToNotificationResponse(n entity.Notification) dto.NotificationResponse {
	data := map[string]any(n.Data)
	if data == nil {
		data = map[string]any{}
	}
	return dto.NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Data:      data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func ToNotificationResponses(items []entity.Notification) []dto.NotificationResponse {
	out := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, ToNotificationResponse(n))
	}
	return out
}
