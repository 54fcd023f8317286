package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrInvalidCode        = errors.New("invalid authorization code")
	ErrFailedToGetUser    = errors.New("failed to get user info from Google")
	ErrInvalidState       = errors.New("invalid state parameter")
	ErrUnverifiedEmail    = errors.New("Google account email is not verified")
	ErrOAuthNotConfigured = errors.New("Google OAuth is not configured")
)

const (
	userInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateIssuer   = "hisab-api/oauth-state"
	stateLifetime = 10 * time.Minute
)

// GoogleUserInfo represents user information from Google
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleConfig holds the configuration for Google sign-in
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// FrontendURL receives the issued tokens after a successful sign-in.
	FrontendURL string
	// StateSecret signs the anti-forgery state parameter.
	StateSecret string
}

// GoogleProvider runs the Google authorization-code flow. The state
// parameter is a short-lived signed token so no server-side session is kept.
type GoogleProvider struct {
	config      *oauth2.Config
	frontendURL string
	stateSecret []byte
	userInfoURL string
	now         func() time.Time
}

// NewGoogleProvider creates a new Google sign-in provider
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		frontendURL: cfg.FrontendURL,
		stateSecret: []byte(cfg.StateSecret),
		userInfoURL: userInfoURL,
		now:         time.Now,
	}
}

// IsConfigured checks if Google sign-in has client credentials
func (p *GoogleProvider) IsConfigured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// NewState issues a signed, expiring state value
func (p *GoogleProvider) NewState() (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Issuer:    stateIssuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.stateSecret)
}

// VerifyState checks a state value returned by Google
func (p *GoogleProvider) VerifyState(state string) error {
	_, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidState
		}
		return p.stateSecret, nil
	}, jwt.WithIssuer(stateIssuer), jwt.WithTimeFunc(p.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}

// AuthURL returns the Google consent URL for a state value
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Authenticate exchanges the authorization code and returns the verified Google profile
func (p *GoogleProvider) Authenticate(ctx context.Context, code string) (*GoogleUserInfo, error) {
	if !p.IsConfigured() {
		return nil, ErrOAuthNotConfigured
	}
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	info, err := p.fetchUserInfo(ctx, p.config.Client(ctx, token))
	if err != nil {
		return nil, err
	}
	if !info.VerifiedEmail {
		return nil, ErrUnverifiedEmail
	}
	return info, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, client *http.Client) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUser, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrFailedToGetUser, resp.StatusCode, string(body))
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUser, err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: incomplete profile", ErrFailedToGetUser)
	}
	return &info, nil
}

// SuccessRedirect builds the frontend URL carrying the issued tokens in the fragment
func (p *GoogleProvider) SuccessRedirect(accessToken, refreshToken string) string {
	v := url.Values{}
	v.Set("access_token", accessToken)
	v.Set("refresh_token", refreshToken)
	return p.frontendURL + "/auth/callback#" + v.Encode()
}

// ErrorRedirect builds the frontend URL reporting a failed sign-in
func (p *GoogleProvider) ErrorRedirect(code string) string {
	v := url.Values{}
	v.Set("error", code)
	return p.frontendURL + "/login?" + v.Encode()
}
