package service

import (
	"context"
	"fmt"
	"time"

	coreEntity "classtime/core/entity"
	"classtime/core/errors"
	"classtime/core/logger"
	"classtime/core/params"
	"classtime/core/queue"
	"classtime/modules/notification/dto"
	"classtime/modules/notification/entity"
	"classtime/modules/notification/mapper"
	"classtime/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationServiceInterface interface {
	GetMyNotifications(ctx context.Context, studentID int64, queryParams params.QueryParams) (*coreEntity.Pagination[dto.NotificationResponse], *errors.AppError)
	MarkAsRead(ctx context.Context, studentID int64, ids []string) *errors.AppError
	MarkAllAsRead(ctx context.Context, studentID int64) *errors.AppError
	CountUnread(ctx context.Context, studentID int64) (int, *errors.AppError)
}

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{repo: repo, now: time.Now}
}

// HandleAutoBookingNotice stores the notice as an unread notification. It is
// called by the queue worker, or inline when no Redis is configured.
func (s *NotificationService) HandleAutoBookingNotice(ctx context.Context, notice queue.AutoBookingNotice) error {
	now := s.now()
	n := &entity.Notification{
		ID:        uuid.New(),
		StudentID: notice.StudentID,
		Title:     "Recurring lesson booked",
		Message: fmt.Sprintf("Your %s lesson with %s on %s at %s was booked automatically",
			notice.CourseName, notice.TutorName, notice.Date, clock(notice.StartTime)),
		Type: entity.TypeAutoBooking,
		Data: entity.JSONB{
			"booking_id":  notice.BookingID,
			"timeslot_id": notice.TimeslotID,
			"date":        notice.Date,
			"start_time":  notice.StartTime,
			"end_time":    notice.EndTime,
		},
		BaseEntity: coreEntity.BaseEntity{CreatedAt: now, UpdatedAt: now},
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store auto-booking notification: %w", err)
	}
	logger.Info("Notification:AutoBooking:Stored", "student_id", notice.StudentID, "booking_id", notice.BookingID)
	return nil
}

// clock trims seconds from HH:MM:SS.
func clock(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, studentID int64, queryParams params.QueryParams) (*coreEntity.Pagination[dto.NotificationResponse], *errors.AppError) {
	items, total, err := s.repo.GetByStudentID(ctx, studentID, queryParams)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get notifications", err)
	}
	return coreEntity.NewPagination(mapper.ToNotificationResponses(items), total, queryParams.PageNumber, queryParams.PageSize), nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, studentID int64, ids []string) *errors.AppError {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return errors.NewAppError(errors.ErrInvalidInput, "Invalid notification id", err)
		}
		parsed = append(parsed, id)
	}

	if err := s.repo.MarkAsRead(ctx, studentID, parsed); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to mark as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, studentID int64) *errors.AppError {
	if err := s.repo.MarkAllAsRead(ctx, studentID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to mark all as read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, studentID int64) (int, *errors.AppError) {
	count, err := s.repo.CountUnread(ctx, studentID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrInternalServer, "Failed to count unread", err)
	}
	return count, nil
}
