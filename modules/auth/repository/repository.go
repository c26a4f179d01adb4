package repository

import (
	"context"
	"time"

	"classtime/core/database"
	"classtime/modules/auth/entity"
)

// AuthRepository handles student accounts, external identities and OAuth state.
type AuthRepository struct {
	DB database.IDatabase
}

func NewAuthRepository(db database.IDatabase) *AuthRepository {
	return &AuthRepository{DB: db}
}

type AuthRepositoryInterface interface {
	// Students
	GetStudentByID(ctx context.Context, studentID int64) (*entity.Student, error)
	GetStudentByEmail(ctx context.Context, email string) (*entity.Student, error)
	GetStudentByNickname(ctx context.Context, nickname string) (*entity.Student, error)
	CreateStudent(ctx context.Context, student *entity.Student) error
	UpdateStudentPassword(ctx context.Context, studentID int64, password string) error

	// External identities
	GetOAuthUser(ctx context.Context, provider, providerUserID string) (*entity.OAuthUser, error)
	LinkOAuthUser(ctx context.Context, link *entity.OAuthUser) error
	CreateStudentWithOAuth(ctx context.Context, student *entity.Student, provider, providerUserID string) error

	// OAuth state
	SaveOAuthState(ctx context.Context, state string, expiresAt time.Time) error
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
	CleanupExpiredOAuthStates(ctx context.Context) (int64, error)
}
