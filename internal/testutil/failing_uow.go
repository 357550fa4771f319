package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/alexanderramin/csrdash/internal/db"
)

// FailingUoW is a UnitOfWork whose transaction returns Err from the FailOn-th
// write (1-based) whose statement contains Match; an empty Match counts every
// write. Reads pass through. Tests use it to prove that a cascade or bulk
// insert interrupted halfway leaves the store unchanged.
type FailingUoW struct {
	DB     *sql.DB
	Match  string
	FailOn int
	Err    error
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingTx{DBTX: tx, uow: u})
	})
}

type failingTx struct {
	db.DBTX
	uow *FailingUoW

	mu      sync.Mutex
	matched int
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.Contains(query, f.uow.Match) {
		f.mu.Lock()
		f.matched++
		hit := f.matched == f.uow.FailOn
		f.mu.Unlock()
		if hit {
			return nil, f.uow.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
