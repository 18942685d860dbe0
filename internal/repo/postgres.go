package repo

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/ansel1/merry"
	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS operators (
	id         SERIAL PRIMARY KEY,
	login      TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL,
	password   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS history (
	id         BIGSERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	operator   TEXT NOT NULL,
	module     TEXT NOT NULL,
	report_id  TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS history_created_at ON history (created_at DESC);`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InitDB opens the Postgres pool named by connStr. TLS is required unless
// the connection string sets sslmode itself.
func InitDB(connStr string) (*sql.DB, error) {
	if connStr == "" {
		connStr = "user=postgres dbname=postgres password=password sslmode=disable"
	}
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			if strings.Contains(connStr, "?") {
				connStr += "&sslmode=require"
			} else {
				connStr += "?sslmode=require"
			}
		} else {
			connStr += " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, merry.Prepend(err, "postgres config")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, merry.Prepend(err, "postgres is not responding")
	}
	return db, nil
}

func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, postgresSchema)
	return merry.Wrap(err)
}

func (r *PostgresRepository) CreateOperator(ctx context.Context, login, email, password string) (int64, error) {
	var id int64
	query := "INSERT INTO operators (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, merry.Wrap(err)
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (int64, string, error) {
	var id int64
	var hash string

	query := "SELECT id, password FROM operators WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", merry.Wrap(err)
	}
	return id, hash, nil
}

func (r *PostgresRepository) AppendHistory(ctx context.Context, h History) (int64, error) {
	var id int64
	query := "INSERT INTO history (created_at, operator, module, report_id) VALUES ($1, $2, $3, $4) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, h.Time.UTC(), h.Operator, h.Module, h.ReportID).Scan(&id)
	return id, merry.Wrap(err)
}

func (r *PostgresRepository) ListHistory(ctx context.Context, f HistoryFilter) ([]History, error) {
	query := "SELECT id, created_at, operator, module, report_id FROM history"
	args := []interface{}{}
	if f.Module != "" {
		args = append(args, f.Module)
		query += " WHERE module=$1"
	}
	args = append(args, f.limit())
	query += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	defer rows.Close()

	xs := []History{}
	for rows.Next() {
		var h History
		if err := rows.Scan(&h.ID, &h.Time, &h.Operator, &h.Module, &h.ReportID); err != nil {
			return nil, merry.Wrap(err)
		}
		xs = append(xs, h)
	}
	return xs, merry.Wrap(rows.Err())
}
