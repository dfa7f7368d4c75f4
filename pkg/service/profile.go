package service

import (
	"context"
	"fmt"

	"github.com/quill-social/quill/pkg/api"
	clierrors "github.com/quill-social/quill/pkg/errors"
	"github.com/quill-social/quill/pkg/formatter"
	"github.com/quill-social/quill/pkg/output"
)

type ProfileService struct{}

// NewProfileService creates a new profile service
func NewProfileService() *ProfileService {
	return &ProfileService{}
}

// ViewProfile shows a profile. With a session it also shows whether the
// current user follows it.
func (s *ProfileService) ViewProfile(ctx context.Context, id string) error {
	creds := OptionalSession(ctx)
	if id == "" || id == "me" {
		if creds == nil {
			return clierrors.NotLoggedInError()
		}
		id = creds.UserID
	}

	profile, err := api.GetProfile(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return clierrors.NotFoundError("Profile", id)
		}
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	if output.GetOutputFormat() == output.FormatJSON {
		return output.PrintList(profile, nil, nil)
	}

	w := output.Writer()
	fmt.Fprint(w, formatter.ProfileCard(profile))

	if creds != nil && creds.UserID != profile.ID {
		following, err := api.IsFollowing(ctx, creds.UserID, profile.ID)
		if err == nil && following {
			formatter.Faint.Fprintln(w, "  you follow this profile")
		}
	}
	return nil
}

// Follow follows a profile outside of discovery
func (s *ProfileService) Follow(ctx context.Context, id string) error {
	creds, err := RequireSession(ctx)
	if err != nil {
		return err
	}
	if id == creds.UserID {
		return clierrors.ValidationError("profile", "you can't follow yourself")
	}

	profile, err := api.GetProfile(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return clierrors.NotFoundError("Profile", id)
		}
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	if err := (FollowGraph{}).Follow(ctx, creds.UserID, id); err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}

	formatter.PrintSuccess("Following %s", profile.Name())
	return nil
}

// Unfollow removes a follow edge
func (s *ProfileService) Unfollow(ctx context.Context, id string) error {
	creds, err := RequireSession(ctx)
	if err != nil {
		return err
	}

	following, err := api.IsFollowing(ctx, creds.UserID, id)
	if err != nil {
		return fmt.Errorf("failed to check follow status: %w", err)
	}
	if !following {
		formatter.PrintWarning("You don't follow %s", id)
		return nil
	}

	if err := api.Unfollow(ctx, creds.UserID, id); err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}

	formatter.PrintSuccess("Unfollowed %s", id)
	return nil
}
