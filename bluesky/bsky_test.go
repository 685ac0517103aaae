package bluesky_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"chirp/bluesky"
	"chirp/directory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appView struct {
	mu       sync.Mutex
	requests [][]string
}

func (a *appView) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/xrpc/app.bsky.actor.getProfiles":
		actors := r.URL.Query()["actors"]
		a.mu.Lock()
		a.requests = append(a.requests, actors)
		a.mu.Unlock()

		profiles := []map[string]interface{}{}
		for _, actor := range actors {
			if actor == "did:plc:gone" {
				continue
			}
			profile := map[string]interface{}{
				"did":    actor,
				"handle": actor + ".bsky.social",
				"avatar": "https://cdn/" + actor,
			}
			if actor == "did:plc:broken" {
				profile["handle"] = "handle.invalid"
			}
			profiles = append(profiles, profile)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"profiles": profiles})

	case "/xrpc/app.bsky.actor.getProfile":
		actor := r.URL.Query().Get("actor")
		if actor != "ada.bsky.social" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "InvalidRequest", "message": "Profile not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"did":    "did:plc:ada",
			"handle": "ada.bsky.social",
		})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newDirectory(t *testing.T) (*bluesky.Directory, *appView) {
	t.Helper()
	av := &appView{}
	srv := httptest.NewServer(http.HandlerFunc(av.handler))
	t.Cleanup(srv.Close)
	return bluesky.NewDirectory(bluesky.NewClient(srv.URL, srv.Client())), av
}

func TestGetUserListChunksRequests(t *testing.T) {
	dir, av := newDirectory(t)

	ids := make([]string, 0, 60)
	for i := 0; i < 30; i++ {
		ids = append(ids, fmt.Sprintf("did:plc:%d", i))
	}
	// Repeated authors are only requested once
	ids = append(ids, ids...)

	users, err := dir.GetUserList(context.Background(), directory.UserListParams{UserIds: ids, Limit: 100})
	require.NoError(t, err)

	assert.Len(t, users, 30)
	require.Len(t, av.requests, 2)
	assert.Len(t, av.requests[0], 25)
	assert.Len(t, av.requests[1], 5)

	assert.Equal(t, "did:plc:0", users[0].Id)
	require.NotNil(t, users[0].Username)
	assert.Equal(t, "did:plc:0.bsky.social", *users[0].Username)
	assert.Equal(t, "https://cdn/did:plc:0", users[0].ProfileImageUrl)
}

func TestGetUserListMissingAndInvalidHandles(t *testing.T) {
	dir, _ := newDirectory(t)

	users, err := dir.GetUserList(context.Background(), directory.UserListParams{
		UserIds: []string{"did:plc:gone", "did:plc:broken"},
		Limit:   100,
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "did:plc:broken", users[0].Id)
	assert.Nil(t, users[0].Username)
}

func TestGetUserListEmpty(t *testing.T) {
	dir, av := newDirectory(t)

	users, err := dir.GetUserList(context.Background(), directory.UserListParams{Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Empty(t, av.requests)
}

func TestGetUserByUsername(t *testing.T) {
	dir, _ := newDirectory(t)

	user, err := dir.GetUserByUsername(context.Background(), "ada.bsky.social")
	require.NoError(t, err)
	assert.Equal(t, "did:plc:ada", user.Id)

	_, err = dir.GetUserByUsername(context.Background(), "nobody.bsky.social")
	assert.ErrorIs(t, err, directory.ErrUserNotFound)
}
