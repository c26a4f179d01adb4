package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"classtime/core/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// GoogleProfile is the identity extracted from either Google sign-in path.
type GoogleProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleClient wraps the Google endpoints the auth flows call.
type GoogleClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleProfile, error)
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// GoogleUserInfo represents Google user information
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleTokenInfo represents the response from Google's tokeninfo API
type GoogleTokenInfo struct {
	Iss           string `json:"iss"`
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Exp           string `json:"exp"`
}

type googleClient struct {
	oauth        *oauth2.Config
	httpClient   *http.Client
	userInfoURL  string
	tokenInfoURL string
}

func NewGoogleClient(cfg config.GoogleAPIConfig) GoogleClient {
	return &googleClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		userInfoURL:  googleUserInfoURL,
		tokenInfoURL: googleTokenInfoURL,
	}
}

func (g *googleClient) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (g *googleClient) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	var info GoogleUserInfo
	if err := g.getJSON(req, &info); err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("get user info: missing id")
	}

	return &GoogleProfile{
		Subject:       info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}

// VerifyIDToken checks a Sign-In credential with Google's tokeninfo endpoint.
// The audience must be our client id and the issuer must be Google.
func (g *googleClient) VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error) {
	endpoint := g.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var info GoogleTokenInfo
	if err := g.getJSON(req, &info); err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	if info.Aud != g.oauth.ClientID {
		return nil, fmt.Errorf("verify id token: audience mismatch")
	}
	if !googleIssuers[info.Iss] {
		return nil, fmt.Errorf("verify id token: unexpected issuer %q", info.Iss)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("verify id token: missing subject")
	}

	return &GoogleProfile{
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified == "true",
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}

func (g *googleClient) getJSON(req *http.Request, dest any) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, dest)
}
