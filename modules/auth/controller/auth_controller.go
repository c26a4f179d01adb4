package controller

import (
	"net/http"
	"strings"
	"time"

	"classtime/core/constants"
	"classtime/core/controller"
	"classtime/core/errors"
	"classtime/core/middleware"
	"classtime/core/utils"
	"classtime/modules/auth/dto"
	"classtime/modules/auth/service"
	"classtime/modules/auth/validator"

	"github.com/labstack/echo/v4"
)

// CookieSettings controls the browser session cookie and post-login redirects.
type CookieSettings struct {
	Secure    bool
	MaxAge    time.Duration
	LoginPage string
	AppPage   string
}

type AuthController struct {
	AuthService service.AuthServiceInterface
	cookies     CookieSettings
	controller.BaseController
}

func NewAuthController(authService service.AuthServiceInterface, cookies CookieSettings) *AuthController {
	return &AuthController{
		AuthService:    authService,
		cookies:        cookies,
		BaseController: controller.NewBaseController(),
	}
}

func (controller *AuthController) setSession(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   controller.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(controller.cookies.MaxAge.Seconds()),
	})
}

func (controller *AuthController) clearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   controller.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// Register creates a password account
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /public/auth/register [post]
func (controller *AuthController) Register(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.RegisterRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateRegisterRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, validationResult.First(), validationResult)
	}

	registerResponse, err := controller.AuthService.Register(ctx, requestData)
	if err != nil {
		return controller.AppError(err)
	}

	controller.setSession(c, registerResponse.AccessToken)
	return controller.SuccessResponse(c, registerResponse, "Registration successful")
}

// Login authenticates with email and password
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} controller.ErrorResponse
// @Failure 429 {object} controller.ErrorResponse
// @Router /public/auth/login [post]
func (controller *AuthController) Login(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.LoginRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateLoginRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Email and password are required", validationResult)
	}

	loginResponse, err := controller.AuthService.Login(ctx, requestData)
	if err != nil {
		return controller.AppError(err)
	}

	controller.setSession(c, loginResponse.AccessToken)
	return controller.SuccessResponse(c, loginResponse, "Login successful")
}

// Logout clears the session cookie and revokes the current token when there
// is one. GET requests from a browser are redirected to the login page unless
// ?json is present or the request is XHR.
// @Summary Logout
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse
// @Router /private/auth/logout [post]
func (controller *AuthController) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	controller.clearSession(c)

	if token, err := utils.GetTokenFromHeader(c); err == nil {
		if errLogout := controller.AuthService.Logout(ctx, token); errLogout != nil {
			return controller.AppError(errLogout)
		}
	}

	if c.Request().Method == http.MethodGet && !wantsJSON(c) {
		return c.Redirect(http.StatusFound, controller.cookies.LoginPage)
	}
	return controller.SuccessResponse(c, nil, "Logged out successfully")
}

func wantsJSON(c echo.Context) bool {
	if _, ok := c.QueryParams()["json"]; ok {
		return true
	}
	return strings.EqualFold(c.Request().Header.Get(echo.HeaderXRequestedWith), "XMLHttpRequest")
}

// Me returns the authenticated student
// @Summary Current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SessionUser
// @Failure 401 {object} controller.ErrorResponse
// @Router /private/auth/me [get]
func (controller *AuthController) Me(c echo.Context) error {
	studentID, err := middleware.CurrentStudentID(c)
	if err != nil {
		return err
	}

	user, appErr := controller.AuthService.Me(c.Request().Context(), studentID)
	if appErr != nil {
		return controller.AppError(appErr)
	}
	return controller.SuccessResponse(c, map[string]any{"authenticated": true, "user": user}, "Authenticated")
}

// RefreshToken exchanges a refresh token for a new pair
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /public/auth/refresh [post]
func (controller *AuthController) RefreshToken(c echo.Context) error {
	requestData := new(dto.RefreshTokenRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateRefreshTokenRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	resp, err := controller.AuthService.RefreshToken(c.Request().Context(), requestData.RefreshToken)
	if err != nil {
		return controller.AppError(err)
	}

	controller.setSession(c, resp.AccessToken)
	return controller.SuccessResponse(c, resp, "Token refreshed")
}

// GoogleLogin redirects to Google's consent screen (or returns the URL with ?json)
// @Summary Google sign-in redirect
// @Tags Auth
// @Router /public/auth/google [get]
func (controller *AuthController) GoogleLogin(c echo.Context) error {
	authURL, err := controller.AuthService.GetGoogleAuthURL(c.Request().Context())
	if err != nil {
		return controller.AppError(err)
	}
	if wantsJSON(c) {
		return controller.SuccessResponse(c, dto.GoogleAuthURLResponse{URL: authURL}, "Google auth URL")
	}
	return c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback completes the redirect flow and lands on the app page
// @Summary Google OAuth callback
// @Tags Auth
// @Param code query string true "Authorization code"
// @Param state query string true "State token"
// @Router /public/auth/google/callback [get]
func (controller *AuthController) GoogleCallback(c echo.Context) error {
	if c.QueryParam("error") != "" {
		return c.Redirect(http.StatusFound, controller.cookies.LoginPage+"?error=google_denied")
	}

	resp, err := controller.AuthService.HandleGoogleCallback(c.Request().Context(), c.QueryParam("code"), c.QueryParam("state"))
	if err != nil {
		if wantsJSON(c) {
			return controller.AppError(err)
		}
		return c.Redirect(http.StatusFound, controller.cookies.LoginPage+"?error=google_failed")
	}

	controller.setSession(c, resp.AccessToken)
	if wantsJSON(c) {
		return controller.SuccessResponse(c, resp, "Login successful")
	}
	return c.Redirect(http.StatusFound, controller.cookies.AppPage)
}

// GoogleVerify signs in with a Google Identity Services credential
// @Summary Google credential sign-in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.GoogleVerifyRequest true "ID token"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /public/auth/google/verify [post]
func (controller *AuthController) GoogleVerify(c echo.Context) error {
	requestData := new(dto.GoogleVerifyRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateGoogleVerifyRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "No credential provided", validationResult)
	}

	resp, err := controller.AuthService.VerifyGoogleCredential(c.Request().Context(), requestData.Credential)
	if err != nil {
		return controller.AppError(err)
	}

	controller.setSession(c, resp.AccessToken)
	return controller.SuccessResponse(c, resp, "Login successful")
}
