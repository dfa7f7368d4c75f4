package api

import (
	"context"

	json "github.com/json-iterator/go"
	"github.com/quill-social/quill/pkg/client"
	"github.com/quill-social/quill/pkg/logger"
)

// ListProfileIDs returns every visible profile id, oldest first
func ListProfileIDs(ctx context.Context) ([]string, error) {
	logger.Debug("Fetching profile ids")

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "id",
			"order":  "created_at.asc",
		}).
		Get("/rest/v1/profiles")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// GetProfile fetches one profile. Missing rows and rows hidden by row-level
// security both come back as ErrNotFound.
func GetProfile(ctx context.Context, id string) (*Profile, error) {
	logger.Debug("Fetching profile", "profile_id", id)

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "*",
			"id":     "eq." + id,
		}).
		Get("/rest/v1/profiles")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var profiles []Profile
	if err := json.Unmarshal(resp.Body(), &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}

	return &profiles[0], nil
}

// IsFollowing reports whether follower already follows following
func IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	logger.Debug("Checking follow edge", "follower_id", followerID, "following_id", followingID)

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select":       "follower_id",
			"follower_id":  "eq." + followerID,
			"following_id": "eq." + followingID,
			"limit":        "1",
		}).
		Get("/rest/v1/follows")

	if err := CheckResponse(resp, err); err != nil {
		return false, err
	}

	var rows []FollowEdge
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return false, err
	}

	return len(rows) > 0, nil
}

// Follow creates a follow edge
func Follow(ctx context.Context, followerID, followingID string) error {
	logger.Debug("Following profile", "follower_id", followerID, "following_id", followingID)

	body, err := json.Marshal(FollowEdge{FollowerID: followerID, FollowingID: followingID})
	if err != nil {
		return err
	}

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=minimal").
		SetBody(body).
		Post("/rest/v1/follows")

	return CheckResponse(resp, err)
}

// Unfollow removes a follow edge
func Unfollow(ctx context.Context, followerID, followingID string) error {
	logger.Debug("Unfollowing profile", "follower_id", followerID, "following_id", followingID)

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"follower_id":  "eq." + followerID,
			"following_id": "eq." + followingID,
		}).
		Delete("/rest/v1/follows")

	return CheckResponse(resp, err)
}
