// Package repo stores operators and the append-only analysis history.
package repo

import (
	"context"
	"time"
)

// History records that a report was issued. Rows are never updated or
// deleted.
type History struct {
	ID       int64     `db:"id" json:"id"`
	Time     time.Time `db:"created_at" json:"time"`
	Operator string    `db:"operator" json:"operator"`
	Module   string    `db:"module" json:"module"`
	ReportID string    `db:"report_id" json:"report_id"`
}

type HistoryFilter struct {
	Module string
	Limit  int
}

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

func (f HistoryFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultHistoryLimit
	case f.Limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return f.Limit
	}
}

type Repository interface {
	Migrate(ctx context.Context) error
	CreateOperator(ctx context.Context, login, email, password string) (int64, error)
	// GetByLogin returns a zero id and no error when the login is unknown.
	GetByLogin(ctx context.Context, login string) (int64, string, error)
	AppendHistory(ctx context.Context, h History) (int64, error)
	// ListHistory returns the newest records first.
	ListHistory(ctx context.Context, f HistoryFilter) ([]History, error)
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*SqliteRepository)(nil)
)
