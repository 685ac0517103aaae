package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"chirp/config"
	"chirp/directory"
	"chirp/models"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestRootAppCommands(t *testing.T) {
	names := lo.Map(RootApp().Commands, func(c *cli.Command, _ int) string { return c.Name })
	assert.ElementsMatch(t, []string{"serve", "migrate", "rollback", "feed", "post"}, names)
}

func TestNewDirectory(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TomlDirectory
		secret  string
		wantErr bool
	}{
		{name: "static", cfg: config.TomlDirectory{Provider: config.ProviderStatic}},
		{name: "bluesky", cfg: config.TomlDirectory{Provider: config.ProviderBluesky, BlueskyHost: "https://public.api.bsky.app"}},
		{name: "clerk", cfg: config.TomlDirectory{Provider: config.ProviderClerk, ApiUrl: "https://api.clerk.com"}, secret: "sk_test"},
		{name: "clerk without secret", cfg: config.TomlDirectory{Provider: config.ProviderClerk}, wantErr: true},
		{name: "unknown", cfg: config.TomlDirectory{Provider: "ldap"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, err := newDirectory(tt.cfg, tt.secret)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &directory.Instrumented{}, dir)
		})
	}
}

func TestStaticDirectoryFromConfig(t *testing.T) {
	dir, err := newDirectory(config.TomlDirectory{
		Provider: config.ProviderStatic,
		Profiles: []config.TomlProfile{{Id: "u1", Username: "ada"}},
	}, "")
	require.NoError(t, err)

	user, err := dir.GetUserByUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.Id)
}

func TestPrintEntries(t *testing.T) {
	var buf bytes.Buffer
	err := printEntries(&buf, []models.FeedEntry{
		{Post: models.Post{Id: "p1", AuthorId: "u1", Content: "hi", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}},
		{Post: models.Post{Id: "p2", AuthorId: "u1", Content: "two"}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":"p1"`)
	assert.Contains(t, lines[0], `"createdAt":"2024-05-01T12:00:00Z"`)
	assert.Contains(t, lines[1], `"content":"two"`)
}
