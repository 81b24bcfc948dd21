package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/pkg/database"
)

func newStoreMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSQLBlobStoreGetMissing(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewSQLBlobStore(db, DialectPostgres, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, payload FROM collections WHERE name = ?")).
		WithArgs("sciclass:sessions").
		WillReturnRows(sqlmock.NewRows([]string{"version", "payload"}))

	blob, err := store.Get(context.Background(), "sciclass:sessions")
	require.NoError(t, err)
	assert.Equal(t, int64(0), blob.Version)
	assert.Empty(t, blob.Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBlobStoreGetExisting(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()

	var observed []string
	store := NewSQLBlobStore(db, DialectPostgres, func(label string, _ time.Duration) { observed = append(observed, label) })

	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, payload FROM collections WHERE name = ?")).
		WithArgs("classes").
		WillReturnRows(sqlmock.NewRows([]string{"version", "payload"}).AddRow(4, `[{"id":"3-1"}]`))

	blob, err := store.Get(context.Background(), "classes")
	require.NoError(t, err)
	assert.Equal(t, int64(4), blob.Version)
	assert.JSONEq(t, `[{"id":"3-1"}]`, string(blob.Payload))
	assert.Equal(t, []string{"collections_get"}, observed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBlobStoreInsertConflict(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewSQLBlobStore(db, DialectPostgres, nil)

	mock.ExpectExec("INSERT INTO collections").
		WithArgs("points", "[]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.CompareAndSwap(context.Background(), "points", 0, []byte("[]"))
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBlobStoreUpdate(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewSQLBlobStore(db, DialectPostgres, nil)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE collections SET version = version + 1")).
		WithArgs(`["x"]`, sqlmock.AnyArg(), "points", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.CompareAndSwap(context.Background(), "points", 3, []byte(`["x"]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBlobStoreMigrate(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewSQLBlobStore(db, DialectPostgres, nil)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS collections .*JSONB").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBlobStoreWithSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLBlobStore(db, DialectSQLite, nil)
	require.NoError(t, store.Migrate(ctx))

	repos := NewRepositories(store, CollectionOptions{KeyPrefix: "it", MaxRetries: 20})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repos.Warnings.Increment(ctx, "SES-1", "S-1", models.MaxWarnings, time.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	w, err := repos.Warnings.Find(ctx, "SES-1", "S-1")
	require.NoError(t, err)
	assert.Equal(t, models.MaxWarnings, w.Count)

	blob, err := store.Get(ctx, "it:warnings")
	require.NoError(t, err)
	assert.Equal(t, int64(models.MaxWarnings), blob.Version)
}
