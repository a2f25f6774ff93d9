package database

import (
	"context"
	"embed"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/trezcool/markaz/core"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrations embed.FS

var ErrUnsupportedURL = errors.New("unsupported database url: want postgres://… or sqlite://path")

func init() {
	// modernc registers "sqlite", which sqlx does not know the bindvar type of
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// ParseURL maps DATABASE_URL to a driver name and its data source name.
func ParseURL(dbURL string) (driver, dsn string, err error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", "", errors.Wrap(err, "parsing database url")
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return DriverPostgres, dbURL, nil
	case "sqlite", "sqlite3", "file":
		// sqlite:path | sqlite://relative/path | sqlite:///absolute/path
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		if path == "" {
			return "", "", ErrUnsupportedURL
		}
		q := make(url.Values)
		q.Add("_pragma", "foreign_keys(1)")
		q.Add("_pragma", "busy_timeout(5000)")
		for k, vals := range u.Query() {
			for _, v := range vals {
				q.Add(k, v)
			}
		}
		return DriverSQLite, path + "?" + q.Encode(), nil
	default:
		return "", "", ErrUnsupportedURL
	}
}

// Open opens the pooled connection described by conf and waits for it to answer.
func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	driver, dsn, err := ParseURL(conf.URL)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(conf.MaxOpenConns)
		db.SetMaxIdleConns(conf.MaxIdleConns)
	}
	db.SetConnMaxLifetime(conf.ConnMaxLifetime)

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 20
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

// Dialect returns the goose dialect and migrations dir matching db's driver.
func Dialect(db *sqlx.DB) (dialect, dir string) {
	if db.DriverName() == DriverSQLite {
		return "sqlite3", "migrations/sqlite"
	}
	return "postgres", "migrations/postgres"
}

// PrepareGoose points goose at the embedded migrations of db's dialect and returns their dir.
func PrepareGoose(db *sqlx.DB) (string, error) {
	dialect, dir := Dialect(db)
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return "", errors.Wrap(err, "setting goose dialect")
	}
	return dir, nil
}

// Migrate brings the schema up to date.
func Migrate(db *sqlx.DB) error {
	dir, err := PrepareGoose(db)
	if err != nil {
		return err
	}
	if err = goose.Up(db.DB, dir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// IsUniqueViolation reports whether err was caused by a unique constraint, on either backend.
func IsUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == "23505"
	case *sqlite.Error:
		return e.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
