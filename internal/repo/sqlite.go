package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/ansel1/merry"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS operators (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	login      TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL,
	password   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TIMESTAMP NOT NULL,
	operator   TEXT NOT NULL,
	module     TEXT NOT NULL,
	report_id  TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS history_created_at ON history (created_at DESC);`

// SqliteRepository keeps operators and history in a local file. Used by the
// CLI, by the server when no DATABASE_URL is set, and in tests.
type SqliteRepository struct {
	db *sqlx.DB
}

// OpenSqlite opens fileName with a single connection, which also keeps a
// ":memory:" database alive for the life of the pool.
func OpenSqlite(fileName string) (*sqlx.DB, error) {
	conn, err := sql.Open("sqlite3", fileName)
	if err != nil {
		return nil, merry.Prepend(err, "open sqlite")
	}
	conn.SetMaxIdleConns(1)
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)
	return sqlx.NewDb(conn, "sqlite3"), nil
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{db: db}
}

func (r *SqliteRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, sqliteSchema)
	return merry.Wrap(err)
}

func (r *SqliteRepository) CreateOperator(ctx context.Context, login, email, password string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO operators (login, email, password) VALUES (?, ?, ?)`, login, email, password)
	if err != nil {
		return 0, merry.Wrap(err)
	}
	return newInsertedID(res)
}

func (r *SqliteRepository) GetByLogin(ctx context.Context, login string) (int64, string, error) {
	var x struct {
		ID       int64  `db:"id"`
		Password string `db:"password"`
	}
	err := r.db.GetContext(ctx, &x, `SELECT id, password FROM operators WHERE login = ?`, login)
	if err == sql.ErrNoRows {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", merry.Wrap(err)
	}
	return x.ID, x.Password, nil
}

func (r *SqliteRepository) AppendHistory(ctx context.Context, h History) (int64, error) {
	h.Time = h.Time.UTC()
	res, err := r.db.NamedExecContext(ctx, `
INSERT INTO history (created_at, operator, module, report_id)
VALUES (:created_at, :operator, :module, :report_id)`, h)
	if err != nil {
		return 0, merry.Wrap(err)
	}
	return newInsertedID(res)
}

func (r *SqliteRepository) ListHistory(ctx context.Context, f HistoryFilter) ([]History, error) {
	xs := []History{}
	var err error
	if f.Module != "" {
		err = r.db.SelectContext(ctx, &xs, `
SELECT id, created_at, operator, module, report_id FROM history
WHERE module = ? ORDER BY created_at DESC, id DESC LIMIT ?`, f.Module, f.limit())
	} else {
		err = r.db.SelectContext(ctx, &xs, `
SELECT id, created_at, operator, module, report_id FROM history
ORDER BY created_at DESC, id DESC LIMIT ?`, f.limit())
	}
	if err != nil {
		return nil, merry.Wrap(err)
	}
	for i := range xs {
		xs[i].Time = xs[i].Time.In(time.UTC)
	}
	return xs, nil
}

func newInsertedID(r sql.Result) (int64, error) {
	id, err := r.LastInsertId()
	if err != nil {
		return 0, merry.Wrap(err)
	}
	if id <= 0 {
		return 0, merry.New("was not inserted")
	}
	return id, nil
}
