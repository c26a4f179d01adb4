package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classtime/core/database"
	"classtime/core/logger"
	"classtime/modules/auth/entity"

	"github.com/jmoiron/sqlx"
)

// SaveOAuthState saves OAuth state token to database
func (r *AuthRepository) SaveOAuthState(ctx context.Context, state string, expiresAt time.Time) error {
	query := `
		INSERT INTO oauth_states (state, expires_at, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (state)
		DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	err := r.DB.ExecContext(ctx, query, state, expiresAt)
	if err != nil {
		logger.Error("AuthRepository:SaveOAuthState:Error", "error", err)
		return err
	}
	return nil
}

// ConsumeOAuthState deletes a live state token and reports whether it existed.
// A state can be used once.
func (r *AuthRepository) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	var consumed string
	query := `DELETE FROM oauth_states WHERE state = $1 AND expires_at > NOW() RETURNING state`
	err := r.DB.GetContext(ctx, &consumed, query, state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		logger.Error("AuthRepository:ConsumeOAuthState:Error", "error", err)
		return false, err
	}
	return true, nil
}

// CleanupExpiredOAuthStates removes expired OAuth state tokens
func (r *AuthRepository) CleanupExpiredOAuthStates(ctx context.Context) (int64, error) {
	res, err := r.DB.SQLx().ExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at < NOW()`)
	if err != nil {
		logger.Error("AuthRepository:CleanupExpiredOAuthStates:Error", "error", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *AuthRepository) GetOAuthUser(ctx context.Context, provider, providerUserID string) (*entity.OAuthUser, error) {
	var link entity.OAuthUser
	query := `
		SELECT provider, provider_user_id, student_id
		FROM oauth_user
		WHERE provider = $1 AND provider_user_id = $2
	`
	err := r.DB.GetContext(ctx, &link, query, provider, providerUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("AuthRepository:GetOAuthUser:Error", "error", err, "provider", provider)
		return nil, err
	}
	return &link, nil
}

const insertOAuthUser = `
	INSERT INTO oauth_user (provider, provider_user_id, student_id, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (provider, provider_user_id) DO NOTHING
`

func (r *AuthRepository) LinkOAuthUser(ctx context.Context, link *entity.OAuthUser) error {
	err := r.DB.ExecContext(ctx, insertOAuthUser, link.Provider, link.ProviderUserID, link.StudentID)
	if err != nil {
		logger.Error("AuthRepository:LinkOAuthUser:Error", "error", err, "provider", link.Provider)
		return err
	}
	return nil
}

// CreateStudentWithOAuth creates the student and its identity link atomically.
func (r *AuthRepository) CreateStudentWithOAuth(ctx context.Context, student *entity.Student, provider, providerUserID string) error {
	err := database.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if err := insertStudentTx(ctx, tx, student); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertOAuthUser, provider, providerUserID, student.StudentID)
		return err
	})
	if err != nil {
		logger.Error("AuthRepository:CreateStudentWithOAuth:Error", "error", err, "provider", provider)
		return err
	}
	return nil
}
