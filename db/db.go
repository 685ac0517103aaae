package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chirp/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// ErrPostNotFound is returned by GetPost when no row matches the id
var ErrPostNotFound = errors.New("post not found")

var postColumns = []string{"id", "author_id", "content", "created_at"}

// DB handles all database operations with a shared connection pool
type DB struct {
	db *sql.DB
}

// New wraps an already opened pool
func New(db *sql.DB) *DB {
	return &DB{db: db}
}

func (db *DB) Close() error {
	return db.db.Close()
}

// Write operations

func (db *DB) CreatePost(ctx context.Context, post models.Post) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	log.WithFields(log.Fields{
		"id":         post.Id,
		"author_id":  post.AuthorId,
		"created_at": post.CreatedAt.Format(time.RFC3339),
	}).Info("Creating post")

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("posts").
		Cols(postColumns...).
		Values(post.Id, post.AuthorId, post.Content, post.CreatedAt)

	query, args := ib.Build()
	if _, err := db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert error: %w", err)
	}

	return nil
}

// Read operations

// listPostsQuery selects the newest posts first. The id is the tie breaker so
// posts created within the same instant keep a stable order.
func listPostsQuery(authorId string, limit int) (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(postColumns...).From("posts")

	if authorId != "" {
		sb.Where(sb.Equal("author_id", authorId))
	}

	sb.OrderBy("created_at DESC", "id DESC")
	sb.Limit(limit)

	return sb.Build()
}

// ListPosts returns at most limit posts, newest first
func (db *DB) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	return db.listPosts(ctx, "", limit)
}

// ListPostsByAuthor returns at most limit posts of one author, newest first
func (db *DB) ListPostsByAuthor(ctx context.Context, authorId string, limit int) ([]models.Post, error) {
	return db.listPosts(ctx, authorId, limit)
}

func (db *DB) listPosts(ctx context.Context, authorId string, limit int) ([]models.Post, error) {
	query, args := listPostsQuery(authorId, limit)

	log.WithFields(log.Fields{
		"sql":  query,
		"args": args,
	}).Debug("Listing posts")

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.Id, &post.AuthorId, &post.Content, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return posts, nil
}

func (db *DB) GetPost(ctx context.Context, id string) (models.Post, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(postColumns...).From("posts").Where(sb.Equal("id", id))
	query, args := sb.Build()

	var post models.Post
	err := db.db.QueryRowContext(ctx, query, args...).
		Scan(&post.Id, &post.AuthorId, &post.Content, &post.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("query error: %w", err)
	}

	return post, nil
}
