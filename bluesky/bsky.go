package bluesky

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chirp/directory"

	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/xrpc"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const DefaultAppViewHost = "https://public.api.bsky.app"

// maxActorsPerRequest is the app.bsky.actor.getProfiles limit
const maxActorsPerRequest = 25

// invalidHandle is what the AppView reports for accounts whose handle no
// longer resolves
const invalidHandle = "handle.invalid"

type Client struct {
	xrpc *xrpc.Client
}

// NewClient returns an unauthenticated client for a Bluesky AppView
func NewClient(host string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{xrpc: &xrpc.Client{Host: host, Client: httpClient}}
}

// GetProfiles resolves actors (DIDs or handles) to their detailed profiles.
// The actors are split into chunks the AppView accepts, one request each.
func (c *Client) GetProfiles(ctx context.Context, actors []string) ([]*bsky.ActorDefs_ProfileViewDetailed, error) {
	profiles := []*bsky.ActorDefs_ProfileViewDetailed{}
	for _, chunk := range lo.Chunk(actors, maxActorsPerRequest) {
		resp, err := bsky.ActorGetProfiles(ctx, c.xrpc, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to get profiles: %w", err)
		}
		profiles = append(profiles, resp.Profiles...)
	}
	return profiles, nil
}

// GetProfile resolves a single actor
func (c *Client) GetProfile(ctx context.Context, actor string) (*bsky.ActorDefs_ProfileViewDetailed, error) {
	profile, err := bsky.ActorGetProfile(ctx, c.xrpc, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// Directory exposes Bluesky accounts as directory users.
// User ids are DIDs and usernames are handles.
type Directory struct {
	client *Client
}

func NewDirectory(client *Client) *Directory {
	return &Directory{client: client}
}

func profileToUser(p *bsky.ActorDefs_ProfileViewDetailed) directory.User {
	user := directory.User{
		Id:              p.Did,
		ProfileImageUrl: lo.FromPtr(p.Avatar),
	}
	if p.Handle != "" && p.Handle != invalidHandle {
		user.Username = lo.ToPtr(p.Handle)
	}
	if p.DisplayName != nil {
		user.FirstName = p.DisplayName
	}
	if p.CreatedAt != nil {
		if createdAt, err := time.Parse(time.RFC3339, *p.CreatedAt); err == nil {
			user.CreatedAt = createdAt
		}
	}
	return user
}

func (d *Directory) GetUserList(ctx context.Context, params directory.UserListParams) ([]directory.User, error) {
	// The AppView charges every actor against the per-request limit, so
	// repeated ids are only sent once.
	actors := lo.Uniq(params.UserIds)
	limit := params.Limit
	if limit <= 0 || limit > directory.MaxLimit {
		limit = directory.MaxLimit
	}
	if len(actors) > limit {
		actors = actors[:limit]
	}

	log.WithFields(log.Fields{
		"actors": len(actors),
	}).Debug("Fetching Bluesky profiles")

	profiles, err := d.client.GetProfiles(ctx, actors)
	if err != nil {
		return nil, err
	}

	return lo.Map(profiles, func(p *bsky.ActorDefs_ProfileViewDetailed, _ int) directory.User {
		return profileToUser(p)
	}), nil
}

func (d *Directory) GetUserByUsername(ctx context.Context, username string) (*directory.User, error) {
	profile, err := d.client.GetProfile(ctx, username)
	if err != nil {
		var xerr *xrpc.Error
		if errors.As(err, &xerr) && xerr.StatusCode == http.StatusBadRequest {
			return nil, directory.ErrUserNotFound
		}
		return nil, err
	}
	user := profileToUser(profile)
	return &user, nil
}

var _ directory.Directory = (*Directory)(nil)
