package repository

import (
	"context"

	"classtime/core/database"
	"classtime/core/logger"
	"classtime/core/params"
	"classtime/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByStudentID(ctx context.Context, studentID int64, params params.QueryParams) ([]entity.Notification, int, error)
	MarkAsRead(ctx context.Context, studentID int64, ids []uuid.UUID) error
	MarkAllAsRead(ctx context.Context, studentID int64) error
	CountUnread(ctx context.Context, studentID int64) (int, error)
}

type NotificationRepository struct {
	DB database.IDatabase
}

func NewNotificationRepository(db database.IDatabase) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, student_id, title, message, type, data, is_read, created_at, updated_at)
		VALUES (:id, :student_id, :title, :message, :type, :data, :is_read, :created_at, :updated_at)
	`
	if _, err := r.DB.NamedExecContext(ctx, query, notification); err != nil {
		logger.Error("NotificationRepository:Create:Error", "student_id", notification.StudentID, "error", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) GetByStudentID(ctx context.Context, studentID int64, params params.QueryParams) ([]entity.Notification, int, error) {
	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE student_id = $1`, studentID); err != nil {
		logger.Error("NotificationRepository:GetByStudentID:Count:Error", "error", err)
		return nil, 0, err
	}

	query := `
		SELECT id, student_id, title, message, type, data, is_read, created_at, updated_at
		FROM notifications
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var items []entity.Notification
	if err := r.DB.SelectContext(ctx, &items, query, studentID, params.PageSize, params.Offset()); err != nil {
		logger.Error("NotificationRepository:GetByStudentID:Select:Error", "error", err)
		return nil, 0, err
	}
	return items, total, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, studentID int64, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE notifications SET is_read = TRUE, updated_at = NOW() WHERE student_id = ? AND id IN (?)`, studentID, ids)
	if err != nil {
		return err
	}

	if err := r.DB.ExecContext(ctx, r.DB.SQLx().Rebind(query), args...); err != nil {
		logger.Error("NotificationRepository:MarkAsRead:Error", "error", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, studentID int64) error {
	query := `UPDATE notifications SET is_read = TRUE, updated_at = NOW() WHERE student_id = $1 AND is_read = FALSE`
	if err := r.DB.ExecContext(ctx, query, studentID); err != nil {
		logger.Error("NotificationRepository:MarkAllAsRead:Error", "error", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, studentID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE student_id = $1 AND is_read = FALSE`
	if err := r.DB.GetContext(ctx, &count, query, studentID); err != nil {
		logger.Error("NotificationRepository:CountUnread:Error", "error", err)
		return 0, err
	}
	return count, nil
}
