package services

import (
	portsrepo "github.com/kaustubhdw/user_auth_app/internal/core/ports/repositories"
	portssvc "github.com/kaustubhdw/user_auth_app/internal/core/ports/services"
	"github.com/kaustubhdw/user_auth_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Token = NewTokenService(cfg)
	container.OAuth = NewOAuthService(cfg)
	container.Email = NewEmailService(cfg)
	container.Activity = NewActivityService(repos.ActivityRepo)

	container.User = NewUserService(cfg, repos.UserRepo, container.Activity)
	container.Auth = NewAuthService(cfg, repos.UserRepo, container.Token, container.OAuth, container.Email, container.Activity)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.AuthSvcFacade     = (*authService)(nil)
	_ portssvc.TokenSvcFacade    = (*tokenService)(nil)
	_ portssvc.OAuthSvcFacade    = (*oauthService)(nil)
	_ portssvc.EmailSvcFacade    = (*emailService)(nil)
	_ portssvc.ActivitySvcFacade = (*activityService)(nil)
)
