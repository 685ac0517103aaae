package directory

import (
	"context"

	"chirp/config"

	"github.com/samber/lo"
)

// Static serves a fixed list of users, typically from the config file
type Static struct {
	users []User
}

func NewStatic(users []User) *Static {
	return &Static{users: users}
}

// StaticFromConfig builds a Static directory from [[directory.profiles]]
func StaticFromConfig(profiles []config.TomlProfile) *Static {
	return NewStatic(lo.Map(profiles, func(p config.TomlProfile, _ int) User {
		user := User{
			Id:              p.Id,
			ProfileImageUrl: p.ProfileImageUrl,
		}
		if p.Username != "" {
			user.Username = lo.ToPtr(p.Username)
		}
		return user
	}))
}

func (s *Static) GetUserList(ctx context.Context, params UserListParams) ([]User, error) {
	wanted := lo.SliceToMap(params.UserIds, func(id string) (string, struct{}) {
		return id, struct{}{}
	})

	users := lo.Filter(s.users, func(u User, _ int) bool {
		_, ok := wanted[u.Id]
		return ok
	})

	limit := clampLimit(params.Limit)
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *Static) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	user, ok := lo.Find(s.users, func(u User) bool {
		return u.Username != nil && *u.Username == username
	})
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

var _ Directory = (*Static)(nil)
