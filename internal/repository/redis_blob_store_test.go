package repository

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBlobStoreGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisBlobStore(client)

	mock.ExpectGet("sessions").RedisNil()
	mock.ExpectGet("classes").SetVal(`{"version":2,"payload":["a"]}`)

	blob, err := store.Get(context.Background(), "sessions")
	require.NoError(t, err)
	assert.Equal(t, int64(0), blob.Version)

	blob, err = store.Get(context.Background(), "classes")
	require.NoError(t, err)
	assert.Equal(t, int64(2), blob.Version)
	assert.JSONEq(t, `["a"]`, string(blob.Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBlobStoreCompareAndSwapConflict(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisBlobStore(client)

	mock.ExpectWatch("points")
	mock.ExpectGet("points").SetVal(`{"version":3,"payload":[]}`)

	err := store.CompareAndSwap(context.Background(), "points", 1, []byte(`["a"]`))
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBlobStoreCompareAndSwap(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisBlobStore(client)

	mock.ExpectWatch("points")
	mock.ExpectGet("points").RedisNil()
	mock.ExpectTxPipeline()
	mock.ExpectSet("points", `{"version":1,"payload":["a"]}`, 0).SetVal("OK")
	mock.ExpectTxPipelineExec()

	require.NoError(t, store.CompareAndSwap(context.Background(), "points", 0, []byte(`["a"]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
