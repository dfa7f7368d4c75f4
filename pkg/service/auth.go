package service

import (
	"context"
	"fmt"

	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/client"
	"github.com/quill-social/quill/pkg/credentials"
	"github.com/quill-social/quill/pkg/formatter"
	"github.com/quill-social/quill/pkg/logger"
	"github.com/quill-social/quill/pkg/output"
	"github.com/quill-social/quill/pkg/prompter"
)

type AuthService struct{}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	return &AuthService{}
}

// Login prompts for email and password and saves the session
func (s *AuthService) Login(ctx context.Context) error {
	creds, err := credentials.Load()
	if err != nil {
		logger.Error("Failed to load credentials", "err", err)
		return err
	}

	if creds != nil && creds.IsValid() {
		formatter.PrintWarning("Already logged in as %s", creds.Email)
		confirm, err := prompter.PromptConfirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	email, err := prompter.PromptString("Email: ")
	if err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	password, err := prompter.PromptPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	formatter.PrintInfo("Authenticating...")
	loginResp, err := api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if creds != nil && creds.UserID != "" && creds.UserID != loginResp.User.ID {
		logger.Info("Switching account", "from", creds.UserID, "to", loginResp.User.ID)
	}

	client.SetAuthToken(loginResp.AccessToken)
	if err := credentials.Save(sessionFromLogin(loginResp)); err != nil {
		formatter.PrintError("Failed to save credentials: %v", err)
		return err
	}

	formatter.PrintSuccess("Login successful!")
	formatter.PrintInfo("Logged in as %s", formatter.Bold.Sprint(loginResp.User.Email))
	return nil
}

// Logout revokes the session and removes saved credentials
func (s *AuthService) Logout(ctx context.Context, skipConfirm bool) error {
	creds, err := credentials.Load()
	if err != nil {
		logger.Error("Failed to load credentials", "err", err)
		return err
	}

	if creds == nil {
		formatter.PrintWarning("Not logged in")
		return nil
	}

	if !skipConfirm {
		confirm, err := prompter.PromptConfirm("Logout?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	if creds.IsValid() {
		client.SetAuthToken(creds.AccessToken)
		if err := api.Logout(ctx); err != nil {
			// the local session is dropped regardless
			logger.Warn("Server-side logout failed", "err", err)
		}
	}

	client.ClearAuthToken()
	if err := credentials.Delete(); err != nil {
		formatter.PrintError("Failed to delete credentials: %v", err)
		return err
	}

	formatter.PrintSuccess("Logged out")
	return nil
}

// Status shows the saved session and checks it against the server
func (s *AuthService) Status(ctx context.Context) error {
	creds, err := RequireSession(ctx)
	if err != nil {
		return err
	}

	record := map[string]interface{}{
		"User ID": creds.UserID,
		"Email":   creds.Email,
		"Expires": formatter.RelativeTime(creds.ExpiresAt),
	}

	user, err := api.GetCurrentUser(ctx)
	if err != nil {
		logger.Warn("Session check failed", "err", err)
		record["Server"] = "unreachable or session rejected"
	} else {
		record["Server"] = "ok"
		record["Member since"] = formatter.RelativeTime(user.CreatedAt)
	}

	return output.PrintRecord("Session", record)
}
