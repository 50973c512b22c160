// Package migrations owns the schema of the SQLite kv engine. The SQL
// files under files/ are embedded and applied with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var files embed.FS

var (
	// ErrUnversioned means the kv table was never created.
	ErrUnversioned = errors.New("kv schema has no version")

	// ErrDirty means an earlier migration stopped half way.
	ErrDirty = errors.New("kv schema is dirty")

	// ErrBehind means the file predates this binary; Up fixes it.
	ErrBehind = errors.New("kv schema is behind")

	// ErrAhead means the file was written by a newer binary.
	ErrAhead = errors.New("kv schema is ahead of this binary")
)

// Status describes the schema version of a data file against the
// migrations compiled into the binary.
type Status struct {
	Current uint
	Latest  uint
	Dirty   bool
}

// Up applies every pending migration. A current schema is left alone.
func Up(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying kv migrations: %w", err)
	}
	return nil
}

// Check returns nil when the schema is exactly at the latest version and
// one of the package errors otherwise.
func Check(db *sql.DB) (Status, error) {
	st, err := Inspect(db)
	if err != nil {
		return st, err
	}
	switch {
	case st.Dirty:
		return st, fmt.Errorf("version %d: %w", st.Current, ErrDirty)
	case st.Current < st.Latest:
		return st, fmt.Errorf("version %d, latest %d: %w", st.Current, st.Latest, ErrBehind)
	case st.Current > st.Latest:
		return st, fmt.Errorf("version %d, latest %d: %w", st.Current, st.Latest, ErrAhead)
	}
	return st, nil
}

// Inspect reads the schema version of db without changing it.
func Inspect(db *sql.DB) (Status, error) {
	latest, err := latestVersion()
	if err != nil {
		return Status{}, err
	}
	st := Status{Latest: latest}

	// The migrate instance is not closed: that would close db.
	m, err := open(db)
	if err != nil {
		return st, err
	}
	current, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return st, ErrUnversioned
	}
	if err != nil {
		return st, fmt.Errorf("reading kv schema version: %w", err)
	}
	st.Current, st.Dirty = current, dirty
	return st, nil
}

func open(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "files")
	if err != nil {
		return nil, fmt.Errorf("loading kv migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing kv migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing kv migrations: %w", err)
	}
	return m, nil
}

func latestVersion() (uint, error) {
	src, err := iofs.New(files, "files")
	if err != nil {
		return 0, fmt.Errorf("loading kv migrations: %w", err)
	}
	defer src.Close()
	return lastVersion(src)
}

// lastVersion follows the source from its first migration to its last.
func lastVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("reading first kv migration: %w", err)
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v, nil
		}
		v = next
	}
}
