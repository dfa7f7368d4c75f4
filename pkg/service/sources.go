package service

import (
	"context"

	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/feed"
	"github.com/quill-social/quill/pkg/logger"
	"github.com/quill-social/quill/pkg/swipe"
)

// PostSource pages through the posts table
type PostSource struct{}

var _ feed.PageSource[api.Post] = PostSource{}

func (PostSource) FetchPage(ctx context.Context, req feed.PageRequest) ([]api.Post, error) {
	return api.ListPosts(ctx, api.PostQuery{
		Filter:    req.Filter,
		SortBy:    req.SortBy,
		Ascending: req.SortOrder == feed.SortAsc,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
}

// CandidateDirectory lists every profile as a discovery candidate
type CandidateDirectory struct{}

var _ swipe.CandidateSource = CandidateDirectory{}

func (CandidateDirectory) CandidateIDs(ctx context.Context) ([]string, error) {
	return api.ListProfileIDs(ctx)
}

// ProfileOracle answers eligibility questions from the profiles and follows tables
type ProfileOracle struct{}

var _ swipe.Oracle = ProfileOracle{}

func (ProfileOracle) Profile(ctx context.Context, id string) (*api.Profile, error) {
	return api.GetProfile(ctx, id)
}

func (ProfileOracle) IsFollowing(ctx context.Context, observer, candidate string) (bool, error) {
	return api.IsFollowing(ctx, observer, candidate)
}

// FollowGraph creates follow edges
type FollowGraph struct{}

var _ swipe.Relationships = FollowGraph{}

// Follow treats an existing edge as success
func (FollowGraph) Follow(ctx context.Context, observer, candidate string) error {
	err := api.Follow(ctx, observer, candidate)
	if api.IsConflict(err) {
		logger.Debug("Already following", "candidate", candidate)
		return nil
	}
	return err
}
