// Package repository implements the lifecycle store interfaces on
// MySQL. Every conditional write follows the same discipline: the
// UPDATE or DELETE carries the previously observed state in its WHERE
// clause, and zero affected rows is resolved into either a not-found or
// a lost optimistic race. The sentinels surfaced to callers are the
// ones defined by the lifecycle package, so handlers deal with a single
// error taxonomy.
package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/rental-lifecycle/internal/lifecycle"
)

// resolveMiss turns a zero-rows conditional write into ErrNotFound when
// the row does not exist at all, and ErrConcurrentModification when it
// exists but no longer matches the observed state.
func resolveMiss(ctx context.Context, db *sql.DB, existsQuery string, args ...interface{}) error {
	var one int
	err := db.QueryRowContext(ctx, existsQuery, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return lifecycle.ErrNotFound
	}
	if err != nil {
		return err
	}
	return lifecycle.ErrConcurrentModification
}

// mapNoRows converts sql.ErrNoRows into the lifecycle not-found
// sentinel and passes everything else through.
func mapNoRows(err error) error {
	if err == sql.ErrNoRows {
		return lifecycle.ErrNotFound
	}
	return err
}
