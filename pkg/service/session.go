package service

import (
	"context"
	"time"

	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/client"
	"github.com/quill-social/quill/pkg/credentials"
	clierrors "github.com/quill-social/quill/pkg/errors"
	"github.com/quill-social/quill/pkg/logger"
)

// refreshWindow is how close to expiry a token is refreshed ahead of use
const refreshWindow = time.Minute

// RequireSession loads the saved session, refreshing it when it is about to
// expire, and installs the access token on the HTTP client.
func RequireSession(ctx context.Context) (*credentials.Credentials, error) {
	creds, err := credentials.Load()
	if err != nil {
		logger.Error("Failed to load credentials", "err", err)
		return nil, err
	}
	if creds == nil || creds.AccessToken == "" || creds.UserID == "" {
		return nil, clierrors.NotLoggedInError()
	}

	if creds.ExpiresSoon(refreshWindow) {
		if creds.RefreshToken == "" {
			return nil, clierrors.SessionExpiredError()
		}
		refreshed, err := refreshSession(ctx, creds)
		if err != nil {
			logger.Warn("Token refresh failed", "err", err)
			return nil, clierrors.SessionExpiredError()
		}
		creds = refreshed
	}

	client.SetAuthToken(creds.AccessToken)
	return creds, nil
}

// OptionalSession returns the saved session when one is usable, or nil
func OptionalSession(ctx context.Context) *credentials.Credentials {
	creds, err := RequireSession(ctx)
	if err != nil {
		return nil
	}
	return creds
}

func refreshSession(ctx context.Context, creds *credentials.Credentials) (*credentials.Credentials, error) {
	resp, err := api.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		return nil, err
	}

	updated := sessionFromLogin(resp)
	if updated.UserID == "" {
		updated.UserID = creds.UserID
		updated.Email = creds.Email
	}
	if err := credentials.Save(updated); err != nil {
		return nil, err
	}
	logger.Info("Session refreshed", "user_id", updated.UserID)
	return updated, nil
}

func sessionFromLogin(resp *api.LoginResponse) *credentials.Credentials {
	return &credentials.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
	}
}
