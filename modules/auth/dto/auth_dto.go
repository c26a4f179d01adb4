package dto

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,notblank,max=50"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type GoogleVerifyRequest struct {
	Credential string `json:"credential" validate:"required,notblank"`
}

// SessionUser is the authenticated student as exposed to the frontend.
type SessionUser struct {
	StudentID int64   `json:"student_id"`
	Nickname  *string `json:"nickname"`
	Email     *string `json:"email"`
	Name      string  `json:"name"`
	Surname   string  `json:"surname"`
	Picture   *string `json:"picture"`
}

type AuthResponse struct {
	User         SessionUser `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

type GoogleAuthURLResponse struct {
	URL string `json:"url"`
}
