package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"jios-backend/pkg/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const jioColumns = `id, user_id, type, num_passes, price, gym_id, start_date_time, end_date_time,
        open_to_climb_together, optional_note, is_closed, created_at, updated_at`

// patchColumns whitelist for PatchJio keys
var patchColumns = map[string]bool{
	"type":                   true,
	"num_passes":             true,
	"price":                  true,
	"gym_id":                 true,
	"start_date_time":        true,
	"end_date_time":          true,
	"open_to_climb_together": true,
	"optional_note":          true,
	"is_closed":              true,
}

// SQLDatabase is the sqlx-backed implementation shared by PostgreSQL and SQLite.
// Queries are written with '?' placeholders and rebound per driver.
type SQLDatabase struct {
	db     *sqlx.DB
	driver string
	now    func() time.Time
}

// NewSQLDatabase wraps an already opened connection.
func NewSQLDatabase(db *sqlx.DB) *SQLDatabase {
	return &SQLDatabase{db: db, driver: db.DriverName(), now: time.Now}
}

// DB exposes the underlying handle (migrations, seeding).
func (s *SQLDatabase) DB() *sqlx.DB { return s.db }

// Driver returns the sqlx driver name.
func (s *SQLDatabase) Driver() string { return s.driver }

// HealthCheck 健康检查
func (s *SQLDatabase) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭连接
func (s *SQLDatabase) Close() error {
	return s.db.Close()
}

// ==== Jios ====

// CreateJio 创建Jio，生成 id 与时间戳
func (s *SQLDatabase) CreateJio(ctx context.Context, jio *models.Jio) error {
	if jio.ID == "" {
		jio.ID = uuid.New().String()
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	jio.CreatedAt = now
	jio.UpdatedAt = now
	jio.StartDateTime = jio.StartDateTime.UTC()
	jio.EndDateTime = jio.EndDateTime.UTC()

	query := s.db.Rebind(`
        INSERT INTO posts (` + jioColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	_, err := s.db.ExecContext(ctx, query,
		jio.ID, jio.UserID, string(jio.Type), jio.NumPasses, jio.Price, jio.GymID,
		jio.StartDateTime, jio.EndDateTime, jio.OpenToClimbTogether, jio.OptionalNote,
		jio.IsClosed, jio.CreatedAt, jio.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create jio: %w", err)
	}
	return nil
}

// GetJioByID 根据ID获取Jio（含 gym / timings / creatorProfile）
func (s *SQLDatabase) GetJioByID(ctx context.Context, id string) (*models.Jio, error) {
	var jio models.Jio
	query := s.db.Rebind(`SELECT ` + jioColumns + ` FROM posts WHERE id = ?`)
	if err := s.db.GetContext(ctx, &jio, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get jio: %w", err)
	}

	jios := []models.Jio{jio}
	if err := s.loadRelations(ctx, jios); err != nil {
		return nil, err
	}
	return &jios[0], nil
}

// ListJiosByUser 获取用户自己的Jio，按创建顺序
func (s *SQLDatabase) ListJiosByUser(ctx context.Context, userID string) ([]models.Jio, error) {
	jios := []models.Jio{}
	query := s.db.Rebind(`SELECT ` + jioColumns + ` FROM posts WHERE user_id = ? ORDER BY created_at ASC, id ASC`)
	if err := s.db.SelectContext(ctx, &jios, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list jios for user: %w", err)
	}
	if err := s.loadRelations(ctx, jios); err != nil {
		return nil, err
	}
	return jios, nil
}

// PatchJio performs a single-statement partial update and returns the fresh row.
func (s *SQLDatabase) PatchJio(ctx context.Context, id string, patch map[string]interface{}) (*models.Jio, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("jio id required")
	}

	setClauses := make([]string, 0, len(patch)+1)
	args := make([]interface{}, 0, len(patch)+2)

	// stable column order keeps the generated SQL deterministic
	for _, col := range sortedKeys(patch) {
		if !patchColumns[col] {
			return nil, fmt.Errorf("unsupported patch field %q", col)
		}
		val := patch[col]
		if t, ok := val.(time.Time); ok {
			val = t.UTC()
		}
		setClauses = append(setClauses, col+" = ?")
		args = append(args, val)
	}
	// Always bump updated_at
	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, s.now().UTC().Truncate(time.Microsecond), id)

	query := s.db.Rebind(fmt.Sprintf("UPDATE posts SET %s WHERE id = ?", strings.Join(setClauses, ", ")))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to patch jio: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrRecordNotFound
	}
	return s.GetJioByID(ctx, id)
}

// SearchJios 搜索即将开始且未关闭的Jio
func (s *SQLDatabase) SearchJios(ctx context.Context, filter models.JioFilter) ([]models.Jio, error) {
	where := []string{"is_closed = ?", "start_date_time >= ?"}
	args := []interface{}{false, filter.StartsFrom.UTC()}

	if filter.GymID != nil {
		where = append(where, "gym_id = ?")
		args = append(args, *filter.GymID)
	}
	if filter.Type != nil {
		where = append(where, "type = ?")
		args = append(args, string(*filter.Type))
	}
	if filter.DayStart != nil && filter.DayEnd != nil {
		where = append(where, "start_date_time >= ?", "start_date_time < ?")
		args = append(args, filter.DayStart.UTC(), filter.DayEnd.UTC())
	}
	if filter.StartAfter != nil {
		where = append(where, "start_date_time >= ?")
		args = append(args, filter.StartAfter.UTC())
	}
	if filter.EndBefore != nil {
		where = append(where, "end_date_time <= ?")
		args = append(args, filter.EndBefore.UTC())
	}
	if filter.OpenToClimbTogether != nil {
		where = append(where, "open_to_climb_together = ?")
		args = append(args, *filter.OpenToClimbTogether)
	}
	if filter.MinPasses != nil {
		where = append(where, "num_passes >= ?")
		args = append(args, *filter.MinPasses)
	}

	query := s.db.Rebind(`SELECT ` + jioColumns + ` FROM posts WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY start_date_time ASC, created_at ASC`)

	jios := []models.Jio{}
	if err := s.db.SelectContext(ctx, &jios, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search jios: %w", err)
	}
	if err := s.loadRelations(ctx, jios); err != nil {
		return nil, err
	}
	return jios, nil
}

// loadRelations fills Gym, Timings and CreatorProfile in place.
func (s *SQLDatabase) loadRelations(ctx context.Context, jios []models.Jio) error {
	if len(jios) == 0 {
		return nil
	}

	gymIDs := make([]int64, 0, len(jios))
	seen := make(map[int64]bool, len(jios))
	postIDs := make([]string, 0, len(jios))
	userIDs := make([]string, 0, len(jios))
	seenUser := make(map[string]bool, len(jios))
	for _, j := range jios {
		if !seen[j.GymID] {
			seen[j.GymID] = true
			gymIDs = append(gymIDs, j.GymID)
		}
		if !seenUser[j.UserID] {
			seenUser[j.UserID] = true
			userIDs = append(userIDs, j.UserID)
		}
		postIDs = append(postIDs, j.ID)
	}

	query, args, err := sqlx.In(`SELECT id, name, address, website FROM gyms WHERE id IN (?)`, gymIDs)
	if err != nil {
		return fmt.Errorf("build gym query: %w", err)
	}
	var gyms []models.Gym
	if err := s.db.SelectContext(ctx, &gyms, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load gyms: %w", err)
	}
	gymByID := make(map[int64]models.Gym, len(gyms))
	for _, g := range gyms {
		gymByID[g.ID] = g
	}

	query, args, err = sqlx.In(`
        SELECT tp.post_id, t.id, t.name, t.start_time, t.end_time
        FROM timing_post tp
        JOIN timings t ON t.id = tp.timing_id
        WHERE tp.post_id IN (?)
        ORDER BY t.id`, postIDs)
	if err != nil {
		return fmt.Errorf("build timing query: %w", err)
	}
	var rows []struct {
		PostID string `db:"post_id"`
		models.Timing
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load timings: %w", err)
	}
	timingsByPost := make(map[string][]models.Timing)
	for _, r := range rows {
		timingsByPost[r.PostID] = append(timingsByPost[r.PostID], r.Timing)
	}

	query, args, err = sqlx.In(`
        SELECT user_id, telegram_handle, created_at, updated_at
        FROM user_profiles
        WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return fmt.Errorf("build profile query: %w", err)
	}
	var profiles []models.UserProfile
	if err := s.db.SelectContext(ctx, &profiles, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	profileByUser := make(map[string]models.UserProfile, len(profiles))
	for _, p := range profiles {
		profileByUser[p.UserID] = p
	}

	for i := range jios {
		if g, ok := gymByID[jios[i].GymID]; ok {
			g := g
			jios[i].Gym = &g
		}
		jios[i].Timings = timingsByPost[jios[i].ID]
		if p, ok := profileByUser[jios[i].UserID]; ok {
			p := p
			jios[i].CreatorProfile = &p
		}
	}
	return nil
}

// ==== Gyms ====

// GetGymByID 根据ID获取健身房
func (s *SQLDatabase) GetGymByID(ctx context.Context, id int64) (*models.Gym, error) {
	var gym models.Gym
	query := s.db.Rebind(`SELECT id, name, address, website FROM gyms WHERE id = ?`)
	if err := s.db.GetContext(ctx, &gym, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get gym: %w", err)
	}
	return &gym, nil
}

// ListGyms 按名称列出全部健身房
func (s *SQLDatabase) ListGyms(ctx context.Context) ([]models.Gym, error) {
	gyms := []models.Gym{}
	if err := s.db.SelectContext(ctx, &gyms, `SELECT id, name, address, website FROM gyms ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("failed to list gyms: %w", err)
	}
	return gyms, nil
}

// CreateGym inserts a gym if its name is not taken yet (seeding helper).
func (s *SQLDatabase) CreateGym(ctx context.Context, gym *models.Gym) error {
	query := s.db.Rebind(`INSERT INTO gyms (name, address, website) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, query, gym.Name, gym.Address, gym.Website); err != nil {
		return fmt.Errorf("failed to create gym: %w", err)
	}
	if err := s.db.GetContext(ctx, &gym.ID, s.db.Rebind(`SELECT id FROM gyms WHERE name = ?`), gym.Name); err != nil {
		return fmt.Errorf("failed to read gym id: %w", err)
	}
	return nil
}

// CreateTiming inserts a timing if its name is not taken yet (seeding helper).
func (s *SQLDatabase) CreateTiming(ctx context.Context, timing *models.Timing) error {
	query := s.db.Rebind(`INSERT INTO timings (name, start_time, end_time) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, query, timing.Name, timing.StartTime, timing.EndTime); err != nil {
		return fmt.Errorf("failed to create timing: %w", err)
	}
	if err := s.db.GetContext(ctx, &timing.ID, s.db.Rebind(`SELECT id FROM timings WHERE name = ?`), timing.Name); err != nil {
		return fmt.Errorf("failed to read timing id: %w", err)
	}
	return nil
}

// ListTimings 列出全部时段
func (s *SQLDatabase) ListTimings(ctx context.Context) ([]models.Timing, error) {
	timings := []models.Timing{}
	if err := s.db.SelectContext(ctx, &timings, `SELECT id, name, start_time, end_time FROM timings ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("failed to list timings: %w", err)
	}
	return timings, nil
}

// AttachTiming links a timing to a jio (operator command, see jiosd timings attach).
func (s *SQLDatabase) AttachTiming(ctx context.Context, postID string, timingID int64) error {
	if _, err := s.GetJioByID(ctx, postID); err != nil {
		return err
	}
	query := s.db.Rebind(`INSERT INTO timing_post (post_id, timing_id) VALUES (?, ?) ON CONFLICT DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, query, postID, timingID); err != nil {
		return fmt.Errorf("failed to attach timing: %w", err)
	}
	return nil
}

// ==== Profiles ====

// GetProfile 获取用户资料
func (s *SQLDatabase) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	query := s.db.Rebind(`SELECT user_id, telegram_handle, created_at, updated_at FROM user_profiles WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// UpsertProfile creates the profile or replaces its handle; created_at is kept.
func (s *SQLDatabase) UpsertProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	now := s.now().UTC().Truncate(time.Microsecond)
	query := s.db.Rebind(`
        INSERT INTO user_profiles (user_id, telegram_handle, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE
        SET telegram_handle = excluded.telegram_handle, updated_at = excluded.updated_at
    `)
	if _, err := s.db.ExecContext(ctx, query, profile.UserID, profile.TelegramHandle, now, now); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return s.GetProfile(ctx, profile.UserID)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
