package directory

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_directory_lookups_total",
		Help: "Directory lookups by provider, operation and result",
	}, []string{"provider", "operation", "result"})

	lookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_directory_lookup_duration_seconds",
		Help:    "Latency of directory lookups",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms up to ~10s
	}, []string{"provider", "operation"})

	usersReturned = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_directory_users_returned",
		Help:    "Number of users returned per batch lookup",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	}, []string{"provider"})
)

// Instrumented records Prometheus metrics around another directory
type Instrumented struct {
	provider string
	next     Directory
}

func NewInstrumented(provider string, next Directory) *Instrumented {
	return &Instrumented{provider: provider, next: next}
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (i *Instrumented) GetUserList(ctx context.Context, params UserListParams) ([]User, error) {
	start := time.Now()
	users, err := i.next.GetUserList(ctx, params)
	lookupDuration.WithLabelValues(i.provider, "list").Observe(time.Since(start).Seconds())
	lookups.WithLabelValues(i.provider, "list", result(err)).Inc()
	if err == nil {
		usersReturned.WithLabelValues(i.provider).Observe(float64(len(users)))
	}
	return users, err
}

func (i *Instrumented) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	start := time.Now()
	user, err := i.next.GetUserByUsername(ctx, username)
	lookupDuration.WithLabelValues(i.provider, "by_username").Observe(time.Since(start).Seconds())
	lookups.WithLabelValues(i.provider, "by_username", result(err)).Inc()
	return user, err
}

var _ Directory = (*Instrumented)(nil)
