package sqlite

import (
	"fmt"

	"focustrack/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc.org/sqlite registers as "sqlite", which sqlx does not know
	// out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open connects to the SQLite database at path, creating it if needed.
func Open(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)", path)

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// The driver serializes writes anyway; a single connection avoids
	// SQLITE_BUSY between the tracker and the HTTP layer.
	db.SetMaxOpenConns(1)

	return db, nil
}
