package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationsFS embed.FS

// Migrate applies all pending up migrations for the given driver.
func Migrate(db *sqlx.DB, driver string) error {
	m, closeFn, err := newMigrator(db, driver)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logrus.WithFields(logrus.Fields{
		"driver":  driver,
		"version": version,
		"dirty":   dirty,
	}).Info("✅ Database migrations up to date")
	return nil
}

// MigrateDown rolls back the given number of migrations (all when steps <= 0).
func MigrateDown(db *sqlx.DB, driver string, steps int) error {
	m, closeFn, err := newMigrator(db, driver)
	if err != nil {
		return err
	}
	defer closeFn()

	if steps <= 0 {
		err = m.Down()
	} else {
		err = m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied schema version; ok is false on an empty schema.
func MigrationVersion(db *sqlx.DB, driver string) (version uint, dirty bool, ok bool, err error) {
	m, closeFn, err := newMigrator(db, driver)
	if err != nil {
		return 0, false, false, err
	}
	defer closeFn()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, true, nil
}

// newMigrator 创建 migrate 实例；closeFn 只释放迁移占用的资源，不关闭 db
func newMigrator(db *sqlx.DB, driver string) (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, nil, fmt.Errorf("load migrations for %s: %w", driver, err)
	}

	var (
		instance migratedb.Driver
		closeFn  = func() { src.Close() }
	)

	switch driver {
	case DriverPostgres:
		// 使用独立连接，关闭时只归还该连接
		conn, err := db.DB.Conn(context.Background())
		if err != nil {
			src.Close()
			return nil, nil, fmt.Errorf("acquire migration connection: %w", err)
		}
		pg, err := postgres.WithConnection(context.Background(), conn, &postgres.Config{})
		if err != nil {
			conn.Close()
			src.Close()
			return nil, nil, fmt.Errorf("init postgres migration driver: %w", err)
		}
		instance = pg
		closeFn = func() {
			pg.Close()
			src.Close()
		}
	case DriverSQLite:
		lite, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			src.Close()
			return nil, nil, fmt.Errorf("init sqlite migration driver: %w", err)
		}
		instance = lite
	default:
		src.Close()
		return nil, nil, fmt.Errorf("unsupported driver %q", driver)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, closeFn, nil
}
