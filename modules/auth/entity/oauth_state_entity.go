package entity

import "time"

type OAuthState struct {
	State     string    `db:"state"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// OAuthUser links an external identity to a student.
type OAuthUser struct {
	Provider       string `db:"provider"`
	ProviderUserID string `db:"provider_user_id"`
	StudentID      int64  `db:"student_id"`
}
