package directory

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedCountsLookups(t *testing.T) {
	ada := "ada"
	dir := NewInstrumented("test", NewStatic([]User{{Id: "u1", Username: &ada}}))

	okBefore := testutil.ToFloat64(lookups.WithLabelValues("test", "list", "ok"))
	users, err := dir.GetUserList(context.Background(), UserListParams{UserIds: []string{"u1"}, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(lookups.WithLabelValues("test", "list", "ok")))

	missingBefore := testutil.ToFloat64(lookups.WithLabelValues("test", "by_username", "not_found"))
	_, err = dir.GetUserByUsername(context.Background(), "grace")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, missingBefore+1, testutil.ToFloat64(lookups.WithLabelValues("test", "by_username", "not_found")))
}
