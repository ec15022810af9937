package payroll

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type QueryFilter struct {
	Status *PayrollStatus
	Year   *int
	Month  *int
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *PayrollRecord) error
	CreateItems(ctx context.Context, items []PayrollItem) error
	FindByID(ctx context.Context, id string) (*PayrollRecord, error)
	FindAll(ctx context.Context, filter QueryFilter) ([]PayrollRecord, error)
	Update(ctx context.Context, rec *PayrollRecord) error
	ExistsForPeriod(ctx context.Context, employeeID string, year, month int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to an open transaction. gorm executes
// statements through the session's ConnPool, so pointing it at the
// *sql.Tx makes every call ride the caller's transaction until it
// commits or rolls back.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	// The explicit context forces a statement clone, keeping the pool
	// repository's ConnPool untouched.
	db := r.db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	db.Statement.ConnPool = tx
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rec *PayrollRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) CreateItems(ctx context.Context, items []PayrollItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*PayrollRecord, error) {
	var rec PayrollRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) FindAll(ctx context.Context, filter QueryFilter) ([]PayrollRecord, error) {
	db := r.db.WithContext(ctx).Model(&PayrollRecord{})

	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.Year != nil {
		db = db.Where("year = ?", *filter.Year)
	}
	if filter.Month != nil {
		db = db.Where("month = ?", *filter.Month)
	}

	var records []PayrollRecord
	err := db.Order("year DESC, month DESC, payroll_number DESC").Find(&records).Error
	return records, err
}

func (r *repository) Update(ctx context.Context, rec *PayrollRecord) error {
	return r.db.WithContext(ctx).Omit("Items").Save(rec).Error
}

func (r *repository) ExistsForPeriod(ctx context.Context, employeeID string, year, month int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Where("employee_id = ? AND year = ? AND month = ?", employeeID, year, month).
		Where("status NOT IN ?", []PayrollStatus{StatusRejected, StatusCancelled}).
		Count(&count).Error
	return count > 0, err
}
