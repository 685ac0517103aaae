// Package posts implements the feed procedures: listing recent posts joined
// with their authors and creating new posts.
package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chirp/directory"
	"chirp/models"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// FeedLimit bounds every post list
const FeedLimit = 100

// Store is the persistence the service needs
type Store interface {
	ListPosts(ctx context.Context, limit int) ([]models.Post, error)
	ListPostsByAuthor(ctx context.Context, authorId string, limit int) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (models.Post, error)
	CreatePost(ctx context.Context, post models.Post) error
}

type Service struct {
	store     Store
	directory directory.Directory
	rules     Rules

	// Overridable in tests
	now   func() time.Time
	newId func() string
}

func NewService(store Store, dir directory.Directory, rules Rules) *Service {
	return &Service{
		store:     store,
		directory: dir,
		rules:     rules,
		now:       func() time.Time { return time.Now().UTC() },
		newId:     func() string { return uuid.New().String() },
	}
}

// GetAll returns the most recent posts with their authors, newest first
func (s *Service) GetAll(ctx context.Context) ([]models.FeedEntry, error) {
	posts, err := s.store.ListPosts(ctx, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	return s.withAuthors(ctx, posts)
}

// GetByAuthor returns the most recent posts of one author
func (s *Service) GetByAuthor(ctx context.Context, authorId string) ([]models.FeedEntry, error) {
	posts, err := s.store.ListPostsByAuthor(ctx, authorId, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts for %s: %w", authorId, err)
	}
	return s.withAuthors(ctx, posts)
}

// GetById returns a single post with its author
func (s *Service) GetById(ctx context.Context, id string) (models.FeedEntry, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return models.FeedEntry{}, ErrPostNotFound
		}
		return models.FeedEntry{}, fmt.Errorf("failed to load post %s: %w", id, err)
	}

	entries, err := s.withAuthors(ctx, []models.Post{post})
	if err != nil {
		return models.FeedEntry{}, err
	}
	return entries[0], nil
}

// ProfileByUsername looks an author up by username
func (s *Service) ProfileByUsername(ctx context.Context, username string) (models.AuthorProfile, error) {
	user, err := s.directory.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.AuthorProfile{}, ErrUserNotFound
		}
		return models.AuthorProfile{}, fmt.Errorf("failed to look up %s: %w", username, err)
	}
	return directory.Filter(*user), nil
}

// ProfileById looks an author up by id
func (s *Service) ProfileById(ctx context.Context, id string) (models.AuthorProfile, error) {
	users, err := s.directory.GetUserList(ctx, directory.UserListParams{
		UserIds: []string{id},
		Limit:   1,
	})
	if err != nil {
		return models.AuthorProfile{}, fmt.Errorf("failed to look up %s: %w", id, err)
	}
	user, ok := lo.Find(users, func(u directory.User) bool { return u.Id == id })
	if !ok {
		return models.AuthorProfile{}, ErrUserNotFound
	}
	return directory.Filter(user), nil
}

// withAuthors joins posts with their directory profiles. Every post must
// resolve, otherwise the whole batch fails with ErrAuthorNotFound.
func (s *Service) withAuthors(ctx context.Context, posts []models.Post) ([]models.FeedEntry, error) {
	if len(posts) == 0 {
		return []models.FeedEntry{}, nil
	}

	authorIds := lo.Map(posts, func(p models.Post, _ int) string {
		return p.AuthorId
	})

	users, err := s.directory.GetUserList(ctx, directory.UserListParams{
		UserIds: authorIds,
		Limit:   FeedLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up authors: %w", err)
	}

	profiles := lo.Map(users, func(u directory.User, _ int) models.AuthorProfile {
		return directory.Filter(u)
	})

	entries := make([]models.FeedEntry, 0, len(posts))
	for _, post := range posts {
		author, ok := lo.Find(profiles, func(p models.AuthorProfile) bool {
			return p.Id == post.AuthorId
		})
		if !ok {
			log.WithFields(log.Fields{
				"post_id":   post.Id,
				"author_id": post.AuthorId,
			}).Error("Author for post not found")
			return nil, ErrAuthorNotFound
		}
		entries = append(entries, models.FeedEntry{Post: post, Author: author})
	}

	return entries, nil
}

// Create validates content and stores a new post by authorId
func (s *Service) Create(ctx context.Context, authorId string, content string) (models.Post, error) {
	if authorId == "" {
		return models.Post{}, ErrUnauthorized
	}

	if err := s.rules.Validate(content); err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		Id:        s.newId(),
		AuthorId:  authorId,
		Content:   content,
		CreatedAt: s.now(),
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return models.Post{}, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}
