package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/kaustubhdw/user_auth_app/internal/apperrors"
	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	portssvc "github.com/kaustubhdw/user_auth_app/internal/core/ports/services"
	"github.com/kaustubhdw/user_auth_app/internal/middleware"
	"github.com/kaustubhdw/user_auth_app/internal/platform/config"
)

const (
	oauthExchangeTimeout = 10 * time.Second

	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubUserURL      = "https://api.github.com/user"
	githubEmailsURL    = "https://api.github.com/user/emails"
	facebookProfileURL = "https://graph.facebook.com/v19.0/me?fields=id,name,email,picture.type(large)"
)

// oauthService implements OAuthSvcFacade. Each supported provider gets its own
// oauth2.Config; the code exchange and profile fetch are reduced to one
// normalized ExternalIdentity shape so the rest of the system never sees
// provider-specific payloads.
type oauthService struct {
	cfg      *config.Config
	google   *oauth2.Config
	github   *oauth2.Config
	facebook *oauth2.Config
}

// NewOAuthService creates a new instance of oauthService.
func NewOAuthService(cfg *config.Config) portssvc.OAuthSvcFacade {
	return &oauthService{
		cfg: cfg,
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		github: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		facebook: &oauth2.Config{
			ClientID:     cfg.FacebookClientID,
			ClientSecret: cfg.FacebookClientSecret,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
	}
}

// Exchange swaps a provider authorization code for a normalized identity.
// The whole exchange, token swap plus profile fetch, runs under one deadline.
func (s *oauthService) Exchange(ctx context.Context, provider domain.OAuthProviderName, code string) (*domain.ExternalIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, oauthExchangeTimeout)
	defer cancel()

	var identity *domain.ExternalIdentity
	var err error

	switch provider {
	case domain.ProviderGoogle:
		identity, err = s.exchangeGoogle(ctx, code)
	case domain.ProviderGitHub:
		identity, err = s.exchangeGitHub(ctx, code)
	case domain.ProviderFacebook:
		identity, err = s.exchangeFacebook(ctx, code)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", apperrors.ErrValidation, provider)
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			middleware.GetLoggerFromCtx(ctx).Warn("OAuth exchange timed out", slog.String("provider", string(provider)))
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUpstreamTimeout, provider)
		}
		middleware.GetLoggerFromCtx(ctx).Warn("OAuth exchange failed",
			slog.String("provider", string(provider)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrOAuth, err)
	}
	return identity, nil
}

func (s *oauthService) exchangeGoogle(ctx context.Context, code string) (*domain.ExternalIdentity, error) {
	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange google code: %w", err)
	}

	// Prefer the signed ID token when Google includes one; its claims are
	// verified against our client ID rather than trusted from a plain fetch.
	if rawIDToken, ok := token.Extra("id_token").(string); ok && rawIDToken != "" && s.cfg.GoogleClientID != "" {
		payload, err := idtoken.Validate(ctx, rawIDToken, s.cfg.GoogleClientID)
		if err != nil {
			return nil, fmt.Errorf("google ID token validation failed: %w", err)
		}
		identity := &domain.ExternalIdentity{
			Provider:       domain.ProviderGoogle,
			ProviderUserID: payload.Subject,
		}
		if email, ok := payload.Claims["email"].(string); ok {
			identity.Email = email
		}
		if name, ok := payload.Claims["name"].(string); ok {
			identity.FullName = name
		}
		if picture, ok := payload.Claims["picture"].(string); ok {
			identity.Picture = picture
		}
		if verified, ok := payload.Claims["email_verified"].(bool); ok {
			identity.Verified = verified
		}
		return identity, nil
	}

	client := s.google.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from google: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google api returned non-200 status for userinfo: %s", resp.Status)
	}

	var userInfo struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info from google: %w", err)
	}

	return &domain.ExternalIdentity{
		Provider:       domain.ProviderGoogle,
		ProviderUserID: userInfo.ID,
		Email:          userInfo.Email,
		FullName:       userInfo.Name,
		Picture:        userInfo.Picture,
		Verified:       userInfo.VerifiedEmail,
	}, nil
}

func (s *oauthService) exchangeGitHub(ctx context.Context, code string) (*domain.ExternalIdentity, error) {
	token, err := s.github.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange github code: %w", err)
	}

	client := s.github.Client(ctx, token)
	resp, err := client.Get(githubUserURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from github: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned non-200 status for user: %s", resp.Status)
	}

	var ghUser struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, fmt.Errorf("failed to decode user from github: %w", err)
	}

	identity := &domain.ExternalIdentity{
		Provider:       domain.ProviderGitHub,
		ProviderUserID: strconv.FormatInt(ghUser.ID, 10),
		Email:          ghUser.Email,
		FullName:       ghUser.Name,
		Picture:        ghUser.AvatarURL,
	}
	if identity.FullName == "" {
		identity.FullName = ghUser.Login
	}

	// The public profile email is often hidden; fall back to the primary
	// address from the emails endpoint.
	if identity.Email == "" {
		email, verified, err := s.fetchGitHubPrimaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
		identity.Email = email
		identity.Verified = verified
	} else {
		identity.Verified = true
	}
	return identity, nil
}

func (s *oauthService) fetchGitHubPrimaryEmail(ctx context.Context, client *http.Client) (string, bool, error) {
	resp, err := client.Get(githubEmailsURL)
	if err != nil {
		return "", false, fmt.Errorf("failed to get emails from github: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("github api returned non-200 status for emails: %s", resp.Status)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", false, fmt.Errorf("failed to decode emails from github: %w", err)
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, e.Verified, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, emails[0].Verified, nil
	}
	return "", false, errors.New("github account has no email address")
}

func (s *oauthService) exchangeFacebook(ctx context.Context, code string) (*domain.ExternalIdentity, error) {
	token, err := s.facebook.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange facebook code: %w", err)
	}

	client := s.facebook.Client(ctx, token)
	resp, err := client.Get(facebookProfileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile from facebook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook api returned non-200 status for profile: %s", resp.Status)
	}

	var fbUser struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fbUser); err != nil {
		return nil, fmt.Errorf("failed to decode profile from facebook: %w", err)
	}

	return &domain.ExternalIdentity{
		Provider:       domain.ProviderFacebook,
		ProviderUserID: fbUser.ID,
		Email:          fbUser.Email,
		FullName:       fbUser.Name,
		Picture:        fbUser.Picture.Data.URL,
		// Facebook only returns addresses it has confirmed.
		Verified: fbUser.Email != "",
	}, nil
}
