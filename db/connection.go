package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// ConnConfig describes how to reach the PostgreSQL database
type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

func (c ConnConfig) connectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name,
	)
}

// URL returns the connection as a postgres:// URL, as golang-migrate expects
func (c ConnConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Connect opens the connection pool and waits for the database to answer a
// ping. Pings are retried with exponential backoff for at most maxWait.
func Connect(ctx context.Context, cfg ConnConfig, maxWait time.Duration) (*DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.connectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(20)           // Allow multiple concurrent requests
	sqlDB.SetMaxIdleConns(10)           // Keep some connections ready
	sqlDB.SetConnMaxLifetime(time.Hour) // Recreate connections after an hour
	sqlDB.SetConnMaxIdleTime(time.Hour) // Close idle connections after an hour

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.Multiplier = 1.5
	bo.MaxElapsedTime = maxWait

	ping := func() error {
		return sqlDB.PingContext(ctx)
	}
	notify := func(err error, next time.Duration) {
		log.WithFields(log.Fields{
			"host":  cfg.Host,
			"port":  cfg.Port,
			"error": err,
			"retry": next,
		}).Warn("Database not reachable yet")
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(bo, ctx), notify); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	log.WithFields(log.Fields{
		"host": cfg.Host,
		"port": cfg.Port,
		"name": cfg.Name,
	}).Info("Connected to database")

	return New(sqlDB), nil
}
