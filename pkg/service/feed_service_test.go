package service

import (
	"context"
	"fmt"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPosts(b *fakeBackend, n int) {
	for i := 0; i < n; i++ {
		b.posts = append(b.posts, post(fmt.Sprintf("post%02d", i), i, ""))
	}
}

func TestBrowse_LoadsRequestedPages(t *testing.T) {
	e := setup(t, "")
	seedPosts(e.backend, 12)

	err := NewFeedService().Browse(context.Background(), BrowseOptions{PageSize: 5, Pages: 3})
	require.NoError(t, err)

	require.Len(t, e.backend.postRequests, 3)
	for i, want := range []string{"0", "5", "10"} {
		assert.Equal(t, want, e.backend.postRequests[i]["offset"])
		assert.Equal(t, "5", e.backend.postRequests[i]["limit"])
		assert.Equal(t, "created_at.desc", e.backend.postRequests[i]["order"])
	}

	assert.Contains(t, e.out.String(), "content of post00")
	assert.Contains(t, e.out.String(), "content of post11")
	assert.Contains(t, e.out.String(), "You're all caught up.")
}

func TestBrowse_StopsAtPageLimit(t *testing.T) {
	e := setup(t, "")
	seedPosts(e.backend, 12)

	require.NoError(t, NewFeedService().Browse(context.Background(), BrowseOptions{PageSize: 5, Pages: 1}))

	assert.Len(t, e.backend.postRequests, 1)
	assert.Contains(t, e.out.String(), "content of post04")
	assert.NotContains(t, e.out.String(), "content of post05")
	assert.NotContains(t, e.out.String(), "caught up")
}

func TestBrowse_PromptsBeforeEachPage(t *testing.T) {
	e := setup(t, "y\nn\n")
	seedPosts(e.backend, 12)

	require.NoError(t, NewFeedService().Browse(context.Background(), BrowseOptions{PageSize: 5}))

	assert.Len(t, e.backend.postRequests, 2)
	assert.Contains(t, e.out.String(), "Load more? (y/n)")
	assert.Contains(t, e.out.String(), "content of post09")
	assert.NotContains(t, e.out.String(), "content of post10")
}

func TestBrowse_HidesReplies(t *testing.T) {
	e := setup(t, "")
	e.backend.posts = []api.Post{
		post("top1", 1, ""),
		post("reply1", 2, "top1"),
		post("top2", 3, ""),
	}

	require.NoError(t, NewFeedService().Browse(context.Background(), BrowseOptions{PageSize: 10, Pages: 1}))

	assert.Contains(t, e.out.String(), "content of top1")
	assert.Contains(t, e.out.String(), "content of top2")
	assert.NotContains(t, e.out.String(), "content of reply1")
}

func TestBrowse_Empty(t *testing.T) {
	e := setup(t, "")

	require.NoError(t, NewFeedService().Browse(context.Background(), BrowseOptions{Pages: 1}))
	assert.Contains(t, e.out.String(), "No posts yet.")
	assert.Equal(t, "10", e.backend.postRequests[0]["limit"], "page size defaults from config")
}

func TestBrowse_Category(t *testing.T) {
	e := setup(t, "")
	music := "c1"
	e.backend.categories = []api.Category{{ID: "c1", Name: "Music", Slug: "music"}}
	p := post("song", 1, "")
	p.CategoryID = &music
	e.backend.posts = []api.Post{p, post("other", 2, "")}

	require.NoError(t, NewFeedService().Browse(context.Background(), BrowseOptions{Category: "music", Pages: 1}))

	require.Len(t, e.backend.postRequests, 1)
	assert.Equal(t, "eq.c1", e.backend.postRequests[0]["category_id"])
	assert.Contains(t, e.out.String(), "Category: Music")
	assert.Contains(t, e.out.String(), "content of song")
	assert.NotContains(t, e.out.String(), "content of other")
}

func TestBrowse_UnknownCategory(t *testing.T) {
	e := setup(t, "")
	e.backend.categories = []api.Category{{ID: "c1", Name: "Music", Slug: "music"}}

	err := NewFeedService().Browse(context.Background(), BrowseOptions{Category: "art"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "art"`)
	assert.Empty(t, e.backend.postRequests)
}

func TestBrowse_JSON(t *testing.T) {
	e := setup(t, "")
	config.Set("output.format", "json")
	seedPosts(e.backend, 7)

	require.NoError(t, NewFeedService().Browse(context.Background(), BrowseOptions{PageSize: 5, Pages: 2}))

	var posts []api.Post
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &posts))
	assert.Len(t, posts, 7)
	assert.Equal(t, "post00", posts[0].ID)
}

func TestListCategories(t *testing.T) {
	e := setup(t, "")
	e.backend.categories = []api.Category{
		{ID: "c1", Name: "Music", Slug: "music"},
		{ID: "c2", Name: "Visual Art", Slug: "art"},
	}

	require.NoError(t, NewFeedService().ListCategories(context.Background()))
	assert.Contains(t, e.out.String(), "SLUG")
	assert.Contains(t, e.out.String(), "Visual Art")
	assert.Contains(t, e.out.String(), "c2")
}

func TestListCategories_Empty(t *testing.T) {
	e := setup(t, "")

	require.NoError(t, NewFeedService().ListCategories(context.Background()))
	assert.Contains(t, e.out.String(), "No categories.")
}
