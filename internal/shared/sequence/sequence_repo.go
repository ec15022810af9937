package sequence

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/sequence_repo_mock.go -package=mock . Repository
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	NextValue(ctx context.Context, scope string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx executes the counter UPSERT on the caller's transaction, so a
// rolled-back create releases its number and the sequence stays gapless.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	// The explicit context forces a statement clone, keeping the pool
	// repository's ConnPool untouched.
	db := r.db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	db.Statement.ConnPool = tx
	return &repository{db: db}
}

// NextValue increments and returns the counter for a scope (e.g. a payroll
// period "202501"). Raw UPSERT so concurrent callers never see duplicates.
func (r *repository) NextValue(ctx context.Context, scope string) (int64, error) {
	var nextValue int64

	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (scope, last_value, updated_at)
		VALUES (?, 1, now())
		ON CONFLICT (scope) DO UPDATE
		SET last_value = sequence_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, scope).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
