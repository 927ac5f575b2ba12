package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"jios-backend/pkg/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postColumns = []string{
	"id", "user_id", "type", "num_passes", "price", "gym_id", "start_date_time", "end_date_time",
	"open_to_climb_together", "optional_note", "is_closed", "created_at", "updated_at",
}

// newMockStore returns a store that speaks the postgres placeholder dialect.
func newMockStore(t *testing.T) (*SQLDatabase, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	store := NewSQLDatabase(sqlx.NewDb(raw, DriverPostgres))
	store.now = func() time.Time { return time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC) }
	return store, mock
}

func TestPostgresCreateJioSQL(t *testing.T) {
	store, mock := newMockStore(t)

	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.FixedZone("SGT", 8*3600))
	p := 15.0
	jio := &models.Jio{
		UserID:        "alice",
		Type:          models.JioTypeSeller,
		NumPasses:     2,
		Price:         &p,
		GymID:         1,
		StartDateTime: start,
		EndDateTime:   start.Add(time.Hour),
	}

	mock.ExpectExec(`(?s)INSERT INTO posts \(id, user_id, .*updated_at\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11, \$12, \$13\)`).
		WithArgs(sqlmock.AnyArg(), "alice", "seller", int64(2), 15.0, int64(1),
			start.UTC(), start.Add(time.Hour).UTC(), false, "", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.CreateJio(context.Background(), jio))
	assert.Len(t, jio.ID, 36, "uuid assigned")
	assert.Equal(t, time.UTC, jio.StartDateTime.Location())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPatchJioSQL(t *testing.T) {
	store, mock := newMockStore(t)
	ts := time.Date(2030, 1, 1, 1, 0, 0, 0, time.UTC)

	mock.ExpectExec(`^UPDATE posts SET is_closed = \$1, num_passes = \$2, updated_at = \$3 WHERE id = \$4$`).
		WithArgs(true, int64(4), sqlmock.AnyArg(), "jio-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`(?s)SELECT id, user_id, .* FROM posts WHERE id = \$1`).
		WithArgs("jio-1").
		WillReturnRows(sqlmock.NewRows(postColumns).
			AddRow("jio-1", "alice", "seller", 4, 15.0, 1, ts, ts.Add(time.Hour), false, "", true, ts, ts))

	mock.ExpectQuery(`SELECT id, name, address, website FROM gyms WHERE id IN \(\$1\)`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "website"}).
			AddRow(1, "Ark Bloc", "", ""))

	mock.ExpectQuery(`(?s)FROM timing_post tp\s+JOIN timings t ON t.id = tp.timing_id\s+WHERE tp.post_id IN \(\$1\)`).
		WithArgs("jio-1").
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "id", "name", "start_time", "end_time"}))

	mock.ExpectQuery(`(?s)FROM user_profiles\s+WHERE user_id IN \(\$1\)`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "telegram_handle", "created_at", "updated_at"}).
			AddRow("alice", "alice_climbs", ts, ts))

	updated, err := store.PatchJio(context.Background(), "jio-1", map[string]interface{}{
		"num_passes": 4,
		"is_closed":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.NumPasses)
	assert.True(t, updated.IsClosed)
	require.NotNil(t, updated.Gym)
	assert.Equal(t, "Ark Bloc", updated.Gym.Name)
	require.NotNil(t, updated.CreatorProfile)
	assert.Equal(t, "alice_climbs", updated.CreatorProfile.TelegramHandle)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertProfileSQL(t *testing.T) {
	store, mock := newMockStore(t)
	ts := time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`(?s)INSERT INTO user_profiles \(user_id, telegram_handle, created_at, updated_at\)\s+VALUES \(\$1, \$2, \$3, \$4\)\s+ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs("alice", "alice_climbs", ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM user_profiles WHERE user_id = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "telegram_handle", "created_at", "updated_at"}).
			AddRow("alice", "alice_climbs", ts, ts))

	profile, err := store.UpsertProfile(context.Background(), &models.UserProfile{UserID: "alice", TelegramHandle: "alice_climbs"})
	require.NoError(t, err)
	assert.Equal(t, "alice_climbs", profile.TelegramHandle)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateGymWrapsLookupError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO gyms \(name, address, website\) VALUES \(\$1, \$2, \$3\) ON CONFLICT \(name\) DO NOTHING`).
		WithArgs("Ark Bloc", "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id FROM gyms WHERE name = \$1`).
		WithArgs("Ark Bloc").
		WillReturnError(sql.ErrConnDone)

	err := store.CreateGym(context.Background(), &models.Gym{Name: "Ark Bloc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "failed to read gym id")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPatchMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`^UPDATE posts SET optional_note = \$1, updated_at = \$2 WHERE id = \$3$`).
		WithArgs("hi", sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.PatchJio(context.Background(), "ghost", map[string]interface{}{"optional_note": "hi"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM posts WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetJioByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearchSQL(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2029, 12, 31, 12, 0, 0, 0, time.UTC)
	gymID := int64(1)
	minPasses := 2

	mock.ExpectQuery(`WHERE is_closed = \$1 AND start_date_time >= \$2 AND gym_id = \$3 AND num_passes >= \$4 ORDER BY start_date_time ASC, created_at ASC$`).
		WithArgs(false, now, gymID, int64(minPasses)).
		WillReturnRows(sqlmock.NewRows(postColumns))

	jios, err := store.SearchJios(context.Background(), models.JioFilter{
		GymID:      &gymID,
		StartsFrom: now,
		MinPasses:  &minPasses,
	})
	require.NoError(t, err)
	assert.Empty(t, jios)
	require.NoError(t, mock.ExpectationsWereMet())
}
