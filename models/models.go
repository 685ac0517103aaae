package models

import "time"

// Post is a single user-authored text update as stored in the posts table
type Post struct {
	Id        string    `json:"id"`
	AuthorId  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthorProfile holds the directory fields we expose for a post author.
// Username is optional in the directory and serialises as null when absent.
type AuthorProfile struct {
	Id              string  `json:"id"`
	Username        *string `json:"username"`
	ProfileImageUrl string  `json:"profileImageUrl"`
}

// FeedEntry pairs a post with its resolved author. Never persisted.
type FeedEntry struct {
	Post   Post          `json:"post"`
	Author AuthorProfile `json:"author"`
}

// DisplayName returns the username or the id when no username is set
func (a AuthorProfile) DisplayName() string {
	if a.Username != nil && *a.Username != "" {
		return *a.Username
	}
	return a.Id
}
