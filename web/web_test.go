package web_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"chirp/models"
	"chirp/posts"
	"chirp/web"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newRenderer(t *testing.T) *web.Renderer {
	t.Helper()
	r, err := web.NewWithClock(func() time.Time { return now })
	require.NoError(t, err)
	return r
}

func render(t *testing.T, r *web.Renderer, name string, data interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, data))
	return buf.String()
}

func TestIndexAnonymousShowsSignIn(t *testing.T) {
	html := render(t, newRenderer(t), "index", web.IndexPage{SignInUrl: "https://accounts.example.com/sign-in"})

	assert.Contains(t, html, `href="https://accounts.example.com/sign-in"`)
	assert.NotContains(t, html, `id="composer"`)
	assert.Contains(t, html, `data-src="/partials/feed"`)
	assert.Contains(t, html, `class="loading"`)
}

func TestIndexSignedInShowsComposer(t *testing.T) {
	html := render(t, newRenderer(t), "index", web.IndexPage{
		SignInUrl: "/sign-in",
		Composer:  &web.Composer{AvatarUrl: "https://img/u1.png"},
	})

	assert.Contains(t, html, `id="composer"`)
	assert.Contains(t, html, `src="https://img/u1.png"`)
	assert.Contains(t, html, `<button type="submit" hidden>`, "submit is hidden while the input is empty")
	assert.NotContains(t, html, "Sign in")
	assert.Contains(t, html, web.GenericPostError)
}

func TestIndexComposerKeepsInputAndNotification(t *testing.T) {
	html := render(t, newRenderer(t), "index", web.IndexPage{
		Composer: &web.Composer{Input: "<b>hi</b>", Notification: "Post must contain at most 280 character(s)"},
	})

	assert.Contains(t, html, `value="&lt;b&gt;hi&lt;/b&gt;"`)
	assert.Contains(t, html, "Post must contain at most 280 character(s)")
	assert.Contains(t, html, `<button type="submit">`)
}

func TestFeedRendersEntries(t *testing.T) {
	entries := []models.FeedEntry{
		{
			Post:   models.Post{Id: "p1", AuthorId: "u1", Content: "hi", CreatedAt: now.Add(-3 * time.Minute)},
			Author: models.AuthorProfile{Id: "u1", Username: lo.ToPtr("ada"), ProfileImageUrl: "https://img/u1.png"},
		},
		{
			Post:   models.Post{Id: "p2", AuthorId: "u2", Content: "<script>alert(1)</script>", CreatedAt: now.Add(-2 * time.Hour)},
			Author: models.AuthorProfile{Id: "u2", ProfileImageUrl: "https://img/u2.png"},
		},
	}

	html := render(t, newRenderer(t), "feed", web.FeedView{Entries: entries})

	assert.Contains(t, html, `href="/@ada"`)
	assert.Contains(t, html, "@ada ")
	assert.Contains(t, html, `href="/post/p1"`)
	assert.Contains(t, html, "3 minutes ago")
	assert.Contains(t, html, "2 hours ago")
	assert.Contains(t, html, `alt="@ada's profile image"`)
	assert.Contains(t, html, "@u2", "authors without username fall back to their id")
	assert.NotContains(t, html, `href="/@u2"`, "only usernames resolve to a profile page")
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestFeedError(t *testing.T) {
	html := render(t, newRenderer(t), "feed_error", nil)
	assert.Contains(t, html, web.LoadError)
}

func TestProfilePage(t *testing.T) {
	html := render(t, newRenderer(t), "profile", web.ProfilePage{
		Profile: models.AuthorProfile{Id: "u1", Username: lo.ToPtr("ada"), ProfileImageUrl: "https://img/u1.png"},
		Entries: []models.FeedEntry{{
			Post:   models.Post{Id: "p1", AuthorId: "u1", Content: "hello", CreatedAt: now},
			Author: models.AuthorProfile{Id: "u1", Username: lo.ToPtr("ada")},
		}},
	})

	assert.Contains(t, html, "<h1>@ada</h1>")
	assert.Contains(t, html, "hello")
	assert.Contains(t, html, "now")
}

func TestCreateErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "first content message",
			err:      &posts.ValidationError{FieldErrors: map[string][]string{"content": {"Post content is required", "second"}}},
			expected: "Post content is required",
		},
		{
			name:     "validation error without content messages",
			err:      &posts.ValidationError{FieldErrors: map[string][]string{}},
			expected: web.GenericPostError,
		},
		{
			name:     "unclassified",
			err:      errors.New("boom"),
			expected: web.GenericPostError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, web.CreateErrorMessage(tt.err))
		})
	}
}

func TestStaticAssets(t *testing.T) {
	f, err := web.Static().Open("app.js")
	require.NoError(t, err)
	defer f.Close()

	_, err = web.Static().Open("style.css")
	assert.NoError(t, err)
}

func TestIndexWithoutSignInUrlHidesLink(t *testing.T) {
	html := render(t, newRenderer(t), "index", web.IndexPage{})
	assert.NotContains(t, html, "Sign in")
	assert.NotContains(t, html, `href=""`)
}

func TestIndexRendersFeedForNoScript(t *testing.T) {
	r := newRenderer(t)
	html := render(t, r, "index", web.IndexPage{
		Entries: []models.FeedEntry{{
			Post:   models.Post{Id: "p1", AuthorId: "u1", Content: "visible without scripts", CreatedAt: now},
			Author: models.AuthorProfile{Id: "u1", Username: lo.ToPtr("ada")},
		}},
	})

	feed := html[strings.LastIndex(html, "<noscript>"):]
	assert.Contains(t, feed, "visible without scripts")
	assert.Contains(t, feed, `href="/post/p1"`)
	assert.Contains(t, html, `class="loading"`, "scripts still replace the placeholder")

	failed := render(t, r, "index", web.IndexPage{FeedFailed: true})
	assert.Contains(t, failed[strings.LastIndex(failed, "<noscript>"):], web.LoadError)
}
