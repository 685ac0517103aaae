// Package directory looks up author profiles in the external identity provider.
package directory

import (
	"context"
	"errors"
	"time"

	"chirp/models"
)

// MaxLimit is the largest page the providers are asked for
const MaxLimit = 100

// ErrUserNotFound is returned by GetUserByUsername when no user matches
var ErrUserNotFound = errors.New("user not found")

// EmailAddress is one address attached to a directory user
type EmailAddress struct {
	Id           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// User is the full record returned by a directory provider.
// Only Filter output ever leaves the service.
type User struct {
	Id              string
	Username        *string
	FirstName       *string
	LastName        *string
	ProfileImageUrl string
	EmailAddresses  []EmailAddress
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserListParams selects users by id. Ids may repeat.
type UserListParams struct {
	UserIds []string
	Limit   int
}

// Directory is a batch user lookup against the identity provider
type Directory interface {
	GetUserList(ctx context.Context, params UserListParams) ([]User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// Filter narrows a directory user to the fields shown next to a post
func Filter(user User) models.AuthorProfile {
	return models.AuthorProfile{
		Id:              user.Id,
		Username:        user.Username,
		ProfileImageUrl: user.ProfileImageUrl,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
