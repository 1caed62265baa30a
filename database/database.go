package database

import (
	"database/sql"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-form/config"
)

// Open connects to the SQLite file named by cfg.DBUrl and brings its schema
// up to date.
func Open(cfg config.Config) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", dsn(cfg.DBUrl, cfg.LockWait))
	if err != nil {
		return nil, errors.Wrap(err, "db.open")
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "db.migrate")
	}

	return db, nil
}

// dsn sets the per-connection options: foreign keys must be enabled on every
// pooled connection, not once on the first one. Write transactions take the
// lock at BEGIN so that the busy timeout applies to the whole transaction.
func dsn(path string, lockWait time.Duration) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", strconv.FormatInt(lockWait.Milliseconds(), 10))
	params.Set("_txlock", "immediate")

	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params.Encode()
}
