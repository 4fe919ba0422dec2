package sqlite

import (
	"log/slog"
	"os"
	"time"

	"github.com/strikenet/strikenet/internal/db"
	"github.com/strikenet/strikenet/pkg/repository"
)

// SQLiteRepo implements the repository interfaces using the internal DB
// wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.SightingRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

// now returns the current time at the precision the store keeps
// (microseconds), so a created row equals its re-read copy.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
