package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProfileIDs_PreservesOrder(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "created_at.asc", r.URL.Query().Get("order"))
		writeJSON(w, http.StatusOK, `[{"id":"a"},{"id":"b"},{"id":"c"}]`)
	})

	ids, err := ListProfileIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestGetProfile(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
		writeJSON(w, http.StatusOK, `[{"id":"u1","username":"ada","display_name":"Ada"}]`)
	})

	profile, err := GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name())
}

func TestGetProfile_EmptyResultIsNotFound(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	_, err := GetProfile(context.Background(), "gone")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
}

func TestIsFollowing(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("following_id") == "eq.followed" {
			writeJSON(w, http.StatusOK, `[{"follower_id":"me"}]`)
			return
		}
		writeJSON(w, http.StatusOK, `[]`)
	})

	following, err := IsFollowing(context.Background(), "me", "followed")
	require.NoError(t, err)
	assert.True(t, following)

	following, err = IsFollowing(context.Background(), "me", "stranger")
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollow_PostsEdge(t *testing.T) {
	var body string
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, Follow(context.Background(), "me", "them"))
	assert.JSONEq(t, `{"follower_id":"me","following_id":"them"}`, body)
}

func TestFollow_DuplicateIsConflict(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, `{"code":"23505","message":"duplicate key value violates unique constraint"}`)
	})

	err := Follow(context.Background(), "me", "them")
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
}

func TestUnfollow(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.them", r.URL.Query().Get("following_id"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, Unfollow(context.Background(), "me", "them"))
}
