package service

import (
	"context"
	"strings"
	"time"

	"classtime/core/cache"
	"classtime/core/constants"
	"classtime/core/database"
	"classtime/core/errors"
	"classtime/core/logger"
	"classtime/core/utils"
	"classtime/modules/auth/dto"
	"classtime/modules/auth/entity"
	"classtime/modules/auth/mapper"
	"classtime/modules/auth/repository"
)

const msgInvalidCredentials = "Invalid email or password"

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError)
	Logout(ctx context.Context, token string) *errors.AppError
	Me(ctx context.Context, studentID int64) (*dto.SessionUser, *errors.AppError)
	RefreshToken(ctx context.Context, token string) (*dto.AuthResponse, *errors.AppError)
	GetGoogleAuthURL(ctx context.Context) (string, *errors.AppError)
	HandleGoogleCallback(ctx context.Context, code, state string) (*dto.AuthResponse, *errors.AppError)
	VerifyGoogleCredential(ctx context.Context, credential string) (*dto.AuthResponse, *errors.AppError)
	CleanupExpiredOAuthStates(ctx context.Context) error
}

type AuthService struct {
	repo   repository.AuthRepositoryInterface
	cache  cache.Cache
	google GoogleClient
	now    func() time.Time
}

// NewAuthService builds the service. google may be nil when Google sign-in is
// not configured.
func NewAuthService(repo repository.AuthRepositoryInterface, cache cache.Cache, google GoogleClient) *AuthService {
	return &AuthService{
		repo:   repo,
		cache:  cache,
		google: google,
		now:    time.Now,
	}
}

func (service *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, *errors.AppError) {
	existing, err := service.repo.GetStudentByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check email", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Email already registered", nil)
	}

	existing, err = service.repo.GetStudentByNickname(ctx, req.Username)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check username", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Username already taken", nil)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to hash password", err)
	}

	student := &entity.Student{
		Nickname: &req.Username,
		Email:    &req.Email,
		Password: &hashedPassword,
	}
	if err := service.repo.CreateStudent(ctx, student); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "Email or username already registered", nil)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create student", err)
	}

	logger.Info("AuthService:Register:Success", "student_id", student.StudentID)
	return service.issueTokens(student)
}

// Login authenticates by email and password. Stored passwords may be bcrypt
// hashes or legacy plaintext; a matching plaintext password is re-hashed.
// Repeated failures lock the email for constants.BlockDuration.
func (service *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError) {
	loginKey := constants.RedisKeyLoginAttempt + strings.ToLower(req.Email)

	blocked, err := service.cache.IsLoginBlocked(ctx, loginKey)
	if err != nil {
		logger.Error("AuthService:Login:IsLoginBlocked:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get login attempt", err)
	}
	if blocked {
		if err := service.cache.Expire(ctx, loginKey, constants.BlockDuration); err != nil {
			logger.Error("AuthService:Login:Expire:Error", "error", err)
		}
		return nil, errors.NewAppError(errors.ErrTooManyRequests, "Too many failed login attempts. Try again in 15 minutes", nil)
	}

	student, err := service.repo.GetStudentByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get student", err)
	}
	if student == nil || student.Password == nil {
		service.recordFailedLogin(ctx, loginKey)
		return nil, errors.NewAppError(errors.ErrUnauthorized, msgInvalidCredentials, nil)
	}

	ok, needsUpgrade := utils.CheckPassword(*student.Password, req.Password)
	if !ok {
		service.recordFailedLogin(ctx, loginKey)
		return nil, errors.NewAppError(errors.ErrUnauthorized, msgInvalidCredentials, nil)
	}

	if needsUpgrade {
		service.upgradeLegacyPassword(ctx, student.StudentID, req.Password)
	}

	if err := service.cache.Del(ctx, loginKey); err != nil {
		logger.Error("AuthService:Login:Del:Error", "error", err)
	}

	return service.issueTokens(student)
}

func (service *AuthService) recordFailedLogin(ctx context.Context, loginKey string) {
	if err := service.cache.IncrementLoginAttempt(ctx, loginKey); err != nil {
		logger.Error("AuthService:Login:IncrementLoginAttempt:Error", "error", err)
	}
}

// upgradeLegacyPassword failures are logged only; the login itself succeeded.
func (service *AuthService) upgradeLegacyPassword(ctx context.Context, studentID int64, password string) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		logger.Warn("AuthService:Login:UpgradePassword:Hash:Error", "error", err, "student_id", studentID)
		return
	}
	if err := service.repo.UpdateStudentPassword(ctx, studentID, hashed); err != nil {
		logger.Warn("AuthService:Login:UpgradePassword:Update:Error", "error", err, "student_id", studentID)
		return
	}
	logger.Info("AuthService:Login:UpgradePassword:Success", "student_id", studentID)
}

func (service *AuthService) Logout(ctx context.Context, token string) *errors.AppError {
	if err := service.blacklist(ctx, token); err != nil {
		logger.Error("AuthService:Logout:AddToBlacklist:Error", "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to add token to blacklist", err)
	}
	return nil
}

// blacklist revokes token for the rest of its lifetime.
func (service *AuthService) blacklist(ctx context.Context, token string) error {
	claims, err := utils.ValidateAndParseToken(token)
	if err != nil {
		return nil
	}
	return service.cache.AddToTokenBlacklist(ctx, token, claims.RemainingTTL(service.now()))
}

func (service *AuthService) Me(ctx context.Context, studentID int64) (*dto.SessionUser, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	student, err := service.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get student", err)
	}
	if student == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Not authenticated", nil)
	}

	user := mapper.ToSessionUser(student)
	return &user, nil
}

// RefreshToken issues a new token pair and revokes the presented refresh token.
func (service *AuthService) RefreshToken(ctx context.Context, token string) (*dto.AuthResponse, *errors.AppError) {
	isBlacklisted, err := service.cache.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check token", err)
	}
	if isBlacklisted {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "token is revoked", nil)
	}

	claims, err := utils.ValidateAndParseToken(token)
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr
		}
		return nil, errors.NewAppError(errors.ErrUnauthorized, "failed to parse token", err)
	}
	if claims.Scope != constants.ScopeTokenRefresh {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "not a refresh token", nil)
	}

	student, err := service.repo.GetStudentByID(ctx, claims.StudentID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get student", err)
	}
	if student == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Not authenticated", nil)
	}

	if err := service.cache.AddToTokenBlacklist(ctx, token, claims.RemainingTTL(service.now())); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to revoke refresh token", err)
	}

	return service.issueTokens(student)
}

func (service *AuthService) issueTokens(student *entity.Student) (*dto.AuthResponse, *errors.AppError) {
	subject := utils.TokenSubject{
		StudentID: student.StudentID,
		Email:     student.EmailOrEmpty(),
		Nickname:  student.NicknameOrEmpty(),
	}

	accessToken, err := utils.GenerateToken(subject, constants.ScopeTokenAccess)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate access token", err)
	}
	refreshToken, err := utils.GenerateToken(subject, constants.ScopeTokenRefresh)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate refresh token", err)
	}

	return &dto.AuthResponse{
		User:         mapper.ToSessionUser(student),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetGoogleAuthURL stores a one-time state token and returns Google's consent URL.
func (service *AuthService) GetGoogleAuthURL(ctx context.Context) (string, *errors.AppError) {
	if service.google == nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Google OAuth configuration is missing", nil)
	}

	state := utils.GenerateRandomString(32)
	expiresAt := service.now().Add(constants.OAuthStateTTL)
	if err := service.repo.SaveOAuthState(ctx, state, expiresAt); err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to store state token", err)
	}

	return service.google.AuthCodeURL(state), nil
}

func (service *AuthService) HandleGoogleCallback(ctx context.Context, code, state string) (*dto.AuthResponse, *errors.AppError) {
	if service.google == nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Google OAuth configuration is missing", nil)
	}
	if code == "" || state == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Missing code or state", nil)
	}

	valid, err := service.repo.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to validate state token", err)
	}
	if !valid {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid or expired OAuth state", nil)
	}

	profile, err := service.google.Exchange(ctx, code)
	if err != nil {
		logger.Error("AuthService:HandleGoogleCallback:Exchange:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Google sign-in failed", err)
	}

	return service.signInWithGoogle(ctx, profile)
}

func (service *AuthService) VerifyGoogleCredential(ctx context.Context, credential string) (*dto.AuthResponse, *errors.AppError) {
	if service.google == nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Google OAuth configuration is missing", nil)
	}

	profile, err := service.google.VerifyIDToken(ctx, credential)
	if err != nil {
		logger.Warn("AuthService:VerifyGoogleCredential:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid Google credential", err)
	}

	return service.signInWithGoogle(ctx, profile)
}

// signInWithGoogle resolves the student for a Google identity: an existing
// link, else an existing account with the same verified email, else a new
// student.
func (service *AuthService) signInWithGoogle(ctx context.Context, profile *GoogleProfile) (*dto.AuthResponse, *errors.AppError) {
	link, err := service.repo.GetOAuthUser(ctx, constants.ProviderGoogle, profile.Subject)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to look up identity", err)
	}
	if link != nil {
		student, err := service.repo.GetStudentByID(ctx, link.StudentID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get student", err)
		}
		if student != nil {
			return service.issueTokens(student)
		}
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email != "" && profile.EmailVerified {
		student, err := service.repo.GetStudentByEmail(ctx, email)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get student", err)
		}
		if student != nil {
			err := service.repo.LinkOAuthUser(ctx, &entity.OAuthUser{
				Provider:       constants.ProviderGoogle,
				ProviderUserID: profile.Subject,
				StudentID:      student.StudentID,
			})
			if err != nil {
				return nil, errors.NewAppError(errors.ErrInternalServer, "failed to link identity", err)
			}
			return service.issueTokens(student)
		}
	}

	name, surname := utils.SplitFullName(profile.Name)
	student := &entity.Student{Name: name, Surname: surname}
	if email != "" {
		student.Email = &email
	}
	if profile.Picture != "" {
		student.PhotoLink = &profile.Picture
	}

	if err := service.repo.CreateStudentWithOAuth(ctx, student, constants.ProviderGoogle, profile.Subject); err != nil {
		if database.IsUniqueViolation(err) && student.Email != nil {
			// The email belongs to an account Google has not verified for us; sign up without it.
			student.Email = nil
			err = service.repo.CreateStudentWithOAuth(ctx, student, constants.ProviderGoogle, profile.Subject)
		}
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create student", err)
		}
	}

	logger.Info("AuthService:SignInWithGoogle:Created", "student_id", student.StudentID)
	return service.issueTokens(student)
}

func (service *AuthService) CleanupExpiredOAuthStates(ctx context.Context) error {
	n, err := service.repo.CleanupExpiredOAuthStates(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("AuthService:CleanupExpiredOAuthStates", "deleted", n)
	}
	return nil
}
