// Package web renders the HTML pages of the feed: the composer, the post
// list, single posts and author profiles.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"chirp/models"
	"chirp/posts"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static/*
var static embed.FS

const (
	// GenericPostError is shown when a create fails without a field message
	GenericPostError = "Failed to post! Please try again later."
	// LoadError is shown when the feed cannot be loaded
	LoadError = "Something went wrong!"
)

// Composer is the post form shown to signed in visitors
type Composer struct {
	AvatarUrl    string
	Input        string
	Notification string
}

type IndexPage struct {
	// empty hides the sign-in link
	SignInUrl string
	// nil for anonymous visitors
	Composer *Composer

	// Rendered for visitors without scripts
	Entries    []models.FeedEntry
	FeedFailed bool
}

type FeedView struct {
	Entries []models.FeedEntry
}

type PostPage struct {
	Entry models.FeedEntry
}

type ProfilePage struct {
	Profile models.AuthorProfile
	Entries []models.FeedEntry
}

type ErrorPage struct {
	Status  int
	Message string
}

type Renderer struct {
	templates *template.Template
	now       func() time.Time
}

func New() (*Renderer, error) {
	return NewWithClock(time.Now)
}

// NewWithClock uses now as the reference for relative timestamps
func NewWithClock(now func() time.Time) (*Renderer, error) {
	r := &Renderer{now: now}
	tmpl, err := template.New("").Funcs(r.funcs()).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.templates = tmpl
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"fromNow":  r.FromNow,
		"username": func(a models.AuthorProfile) string { return a.DisplayName() },
		"genericPostError": func() string {
			return GenericPostError
		},
		"loadError": func() string {
			return LoadError
		},
	}
}

// FromNow formats t relative to the renderer clock, e.g. "3 minutes ago"
func (r *Renderer) FromNow(t time.Time) string {
	return humanize.RelTime(t, r.now(), "ago", "from now")
}

// Render executes the named template into w
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// Static returns the embedded assets (script, stylesheet)
func Static() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// CreateErrorMessage picks the notification for a failed create: the first
// content message of a validation error, otherwise the generic message
func CreateErrorMessage(err error) string {
	if message, ok := posts.FirstFieldError(err, "content"); ok {
		return message
	}
	return GenericPostError
}
