package payroll_test

import (
	"context"
	"testing"

	"go-unihr/internal/payroll"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) (payroll.Repository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	assert.NoError(t, err)

	return payroll.NewRepository(gormDB), mock, func() { db.Close() }
}

// A repository bound with WithTx must execute on the transaction
// connection, so a rollback discards its writes together with the rest
// of the unit of work.
func TestRepository_WithTxRidesTheTransaction(t *testing.T) {
	ctx := context.Background()

	repo, poolMock, cleanup := setupRepositoryTest(t)
	defer cleanup()

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	txMock.ExpectBegin()
	tx, err := txDB.Begin()
	assert.NoError(t, err)

	rec := approvedRecord(t)
	txMock.ExpectExec(`UPDATE "payroll_records" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.WithTx(tx).Update(ctx, rec)
	assert.NoError(t, err)

	txMock.ExpectRollback()
	assert.NoError(t, tx.Rollback())

	// The pool connection never saw the write.
	assert.NoError(t, poolMock.ExpectationsWereMet())
	assert.NoError(t, txMock.ExpectationsWereMet())
}

// Binding a transaction must not rewire the pool-backed repository it
// was derived from.
func TestRepository_WithTxLeavesPoolRepositoryIntact(t *testing.T) {
	ctx := context.Background()

	repo, poolMock, cleanup := setupRepositoryTest(t)
	defer cleanup()

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	txMock.ExpectBegin()
	tx, err := txDB.Begin()
	assert.NoError(t, err)
	_ = repo.WithTx(tx)

	rec := approvedRecord(t)
	poolMock.ExpectExec(`UPDATE "payroll_records" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Update(ctx, rec))
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
