package api

import (
	"context"

	json "github.com/json-iterator/go"
	"github.com/quill-social/quill/pkg/client"
	"github.com/quill-social/quill/pkg/logger"
)

// Login authenticates user with email and password
func Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	logger.Debug("Attempting login", "email", email)

	reqBody, err := json.Marshal(LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("grant_type", "password").
		SetBody(reqBody).
		Post("/auth/v1/token")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(resp.Body(), &loginResp); err != nil {
		return nil, err
	}

	logger.Debug("Login successful", "user_id", loginResp.User.ID)
	return &loginResp, nil
}

// Refresh exchanges a refresh token for a new session
func Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	logger.Debug("Refreshing access token")

	reqBody, err := json.Marshal(RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("grant_type", "refresh_token").
		SetBody(reqBody).
		Post("/auth/v1/token")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var refreshResp LoginResponse
	if err := json.Unmarshal(resp.Body(), &refreshResp); err != nil {
		return nil, err
	}

	logger.Debug("Access token refreshed")
	return &refreshResp, nil
}

// GetCurrentUser gets the current authenticated user
func GetCurrentUser(ctx context.Context) (*AuthUser, error) {
	logger.Debug("Fetching current user")

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		Get("/auth/v1/user")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var user AuthUser
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Logout revokes the current session server-side
func Logout(ctx context.Context) error {
	logger.Debug("Logging out")

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		Post("/auth/v1/logout")

	return CheckResponse(resp, err)
}
