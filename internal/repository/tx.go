package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Runner is the query surface repository methods run on. Both *sqlx.DB and
// *sqlx.Tx satisfy it, so the same method works standalone or inside a
// transaction scope.
type Runner interface {
	sqlx.Ext
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
}

// WithTx runs fn inside a database transaction. Any error (or panic) from fn
// rolls the transaction back; a nil return commits it. This is the single
// transaction boundary used by bid acceptance and checkout.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
