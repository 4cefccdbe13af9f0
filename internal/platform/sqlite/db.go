// Package sqlite implements the store interfaces on an embedded SQLite
// database. The driver is pure Go (modernc.org/sqlite), so the module has
// no cgo requirement; the schema is managed by goose migrations embedded in
// the binary.
package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// InMemoryDSN opens a private throwaway database, used by tests.
const InMemoryDSN = "file::memory:"

// Open opens (creating if necessary) the database at the given DSN, applies
// pending migrations, and returns the connection handle. The handle is an
// explicitly owned resource: the caller is responsible for closing it.
func Open(dsn string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// _time_format=sqlite makes the driver store time.Time values in the
	// canonical SQLite text format; together with the UTC normalization in
	// the stores this keeps timestamp comparisons in SQL correct. The
	// foreign_keys pragma is per-connection, so it goes in the DSN where the
	// driver reapplies it to every connection it opens.
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	db, err := sql.Open("sqlite", dsn+sep+"_time_format=sqlite&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The modernc driver serializes access per connection but not across
	// connections; a single connection sidesteps SQLITE_BUSY on concurrent
	// writers and matches the single-logical-actor access model.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// migrate applies all pending schema migrations.
func migrate(db *sql.DB, logger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// slogGooseLogger forwards goose output to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements the goose.Logger Printf method by forwarding messages to slog.
func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "migrations"))
}

// Fatalf implements the goose.Logger Fatalf method. Migration failures also
// surface as errors from goose.Up, so this only logs.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), slog.String("component", "migrations"))
}
