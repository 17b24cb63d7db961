//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	redisstore "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit/store/redis"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/testutil/containers"
)

func TestRedisStore_AppendAndListRecent(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	store := redisstore.New(rc.Client, redisstore.WithStream("test:audit"))
	payload := `{"price":1200}`
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, action := range []string{"CREATE", "UPDATE"} {
		require.NoError(t, store.Append(ctx, audit.Record{
			ID:            uuid.New(),
			Action:        action,
			Resource:      "product",
			SourceAddress: "203.0.113.7",
			Outcome:       audit.OutcomeSuccess,
			Changes:       &payload,
			Timestamp:     at,
		}))
	}

	recs, err := store.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "UPDATE", recs[0].Action)
	require.NotNil(t, recs[0].Changes)
	assert.JSONEq(t, payload, *recs[0].Changes)
	assert.True(t, at.Equal(recs[0].Timestamp))

	n, err := rc.Client.XLen(ctx, "test:audit").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
