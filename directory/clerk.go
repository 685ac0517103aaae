package directory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// clerkUser mirrors the user object of the Clerk backend API
type clerkUser struct {
	Id              string         `json:"id"`
	Username        *string        `json:"username"`
	FirstName       *string        `json:"first_name"`
	LastName        *string        `json:"last_name"`
	ImageUrl        string         `json:"image_url"`
	ProfileImageUrl string         `json:"profile_image_url"`
	EmailAddresses  []EmailAddress `json:"email_addresses"`
	CreatedAt       int64          `json:"created_at"`
	UpdatedAt       int64          `json:"updated_at"`
}

type clerkError struct {
	Errors []struct {
		Message     string `json:"message"`
		LongMessage string `json:"long_message"`
		Code        string `json:"code"`
	} `json:"errors"`
}

func (u clerkUser) toUser() User {
	image := u.ProfileImageUrl
	if image == "" {
		image = u.ImageUrl
	}
	return User{
		Id:              u.Id,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageUrl: image,
		EmailAddresses:  u.EmailAddresses,
		CreatedAt:       time.UnixMilli(u.CreatedAt).UTC(),
		UpdatedAt:       time.UnixMilli(u.UpdatedAt).UTC(),
	}
}

// Clerk queries a Clerk-style backend user API
type Clerk struct {
	client *resty.Client
}

// NewClerk returns a client for the user API at apiUrl authenticated with
// the secret key
func NewClerk(apiUrl string, secretKey string) *Clerk {
	client := resty.New().
		SetBaseURL(apiUrl).
		SetAuthToken(secretKey).
		SetHeader("Accept", "application/json").
		SetError(&clerkError{})

	return &Clerk{client: client}
}

func (c *Clerk) listUsers(ctx context.Context, query url.Values) ([]User, error) {
	var users []clerkUser

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetResult(&users).
		Get("/v1/users")
	if err != nil {
		return nil, fmt.Errorf("user list request failed: %w", err)
	}

	if resp.IsError() {
		message := resp.Status()
		if apiErr, ok := resp.Error().(*clerkError); ok && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}
		log.WithFields(log.Fields{
			"status":  resp.StatusCode(),
			"message": message,
		}).Error("Directory returned an error")
		return nil, fmt.Errorf("user list request failed with status %d: %s", resp.StatusCode(), message)
	}

	return lo.Map(users, func(u clerkUser, _ int) User {
		return u.toUser()
	}), nil
}

func (c *Clerk) GetUserList(ctx context.Context, params UserListParams) ([]User, error) {
	if len(params.UserIds) == 0 {
		return []User{}, nil
	}

	query := url.Values{
		"user_id": params.UserIds,
		"limit":   []string{strconv.Itoa(clampLimit(params.Limit))},
	}
	return c.listUsers(ctx, query)
}

func (c *Clerk) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	users, err := c.listUsers(ctx, url.Values{
		"username": []string{username},
		"limit":    []string{"1"},
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

var _ Directory = (*Clerk)(nil)
