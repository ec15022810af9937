package payroll_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-unihr/internal/events"
	"go-unihr/internal/messaging/kafka"
	"go-unihr/internal/money"
	"go-unihr/internal/payroll"
	payrollerrors "go-unihr/internal/payroll/errors"
	"go-unihr/internal/shared/sequence"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakePayrollRepository struct {
	withTxFn          func(tx *sql.Tx) payroll.Repository
	createFn          func(ctx context.Context, rec *payroll.PayrollRecord) error
	createItemsFn     func(ctx context.Context, items []payroll.PayrollItem) error
	findByIDFn        func(ctx context.Context, id string) (*payroll.PayrollRecord, error)
	findAllFn         func(ctx context.Context, filter payroll.QueryFilter) ([]payroll.PayrollRecord, error)
	updateFn          func(ctx context.Context, rec *payroll.PayrollRecord) error
	existsForPeriodFn func(ctx context.Context, employeeID string, year, month int) (bool, error)
}

func (f *fakePayrollRepository) WithTx(tx *sql.Tx) payroll.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakePayrollRepository) Create(ctx context.Context, rec *payroll.PayrollRecord) error {
	if f.createFn != nil {
		return f.createFn(ctx, rec)
	}
	return nil
}

func (f *fakePayrollRepository) CreateItems(ctx context.Context, items []payroll.PayrollItem) error {
	if f.createItemsFn != nil {
		return f.createItemsFn(ctx, items)
	}
	return nil
}

func (f *fakePayrollRepository) FindByID(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakePayrollRepository) FindAll(ctx context.Context, filter payroll.QueryFilter) ([]payroll.PayrollRecord, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakePayrollRepository) Update(ctx context.Context, rec *payroll.PayrollRecord) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, rec)
	}
	return nil
}

func (f *fakePayrollRepository) ExistsForPeriod(ctx context.Context, employeeID string, year, month int) (bool, error) {
	if f.existsForPeriodFn != nil {
		return f.existsForPeriodFn(ctx, employeeID, year, month)
	}
	return false, nil
}

type fakeSequenceRepository struct {
	nextValueFn func(ctx context.Context, scope string) (int64, error)
}

func (f *fakeSequenceRepository) WithTx(tx *sql.Tx) sequence.Repository {
	return f
}

func (f *fakeSequenceRepository) NextValue(ctx context.Context, scope string) (int64, error) {
	if f.nextValueFn != nil {
		return f.nextValueFn(ctx, scope)
	}
	return 1, nil
}

type fakeOutboxRepository struct {
	withTxFn func(tx *sql.Tx) kafka.OutboxRepository
	createFn func(ctx context.Context, event kafka.OutboxEvent) error

	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakePayslipGenerator struct {
	generateFn func(rec *payroll.PayrollRecord, employeeName string) (payroll.PayslipArtifact, error)
}

func (f *fakePayslipGenerator) Generate(rec *payroll.PayrollRecord, employeeName string) (payroll.PayslipArtifact, error) {
	if f.generateFn != nil {
		return f.generateFn(rec, employeeName)
	}
	return payroll.PayslipArtifact{Path: "payslips/" + rec.PayrollNumber + ".pdf", SHA256: "deadbeef", Size: 1024}, nil
}

type fakeEmployeeDirectory struct {
	fullNameFn func(ctx context.Context, employeeID string) (string, error)
}

func (f *fakeEmployeeDirectory) FullName(ctx context.Context, employeeID string) (string, error) {
	if f.fullNameFn != nil {
		return f.fullNameFn(ctx, employeeID)
	}
	return "Ayse Yilmaz", nil
}

type payrollServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service payroll.Service
	repo    *fakePayrollRepository
	seq     *fakeSequenceRepository
	outbox  *fakeOutboxRepository
	payslip *fakePayslipGenerator
}

func setupPayrollServiceTest(t *testing.T) *payrollServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakePayrollRepository{}
	seq := &fakeSequenceRepository{}
	outbox := &fakeOutboxRepository{}
	payslipGen := &fakePayslipGenerator{}

	svc := payroll.NewServiceWithConfig(db, repo, seq, outbox, payroll.ServiceConfig{
		Clock:     func() time.Time { return testNow },
		Payslip:   payslipGen,
		Directory: &fakeEmployeeDirectory{},
	})

	return &payrollServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		seq:     seq,
		outbox:  outbox,
		payslip: payslipGen,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestPayrollService_Create(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.seq.nextValueFn = func(ctx context.Context, scope string) (int64, error) {
			assert.Equal(t, "payroll:202503", scope)
			return 7, nil
		}
		deps.repo.createFn = func(ctx context.Context, rec *payroll.PayrollRecord) error {
			assert.Equal(t, "PR-202503-000007", rec.PayrollNumber)
			assert.Equal(t, payroll.StatusDraft, rec.Status)
			assert.Equal(t, "30000", rec.BaseSalary.String())
			return nil
		}

		resp, err := deps.service.Create(ctx, actorID, payroll.CreatePayrollRequest{
			EmployeeID:     employeeID,
			Year:           2025,
			Month:          3,
			BaseSalary:     "30000",
			WorkingDays:    22,
			ActualWorkDays: 20,
			LeaveDays:      2,
		})

		assert.NoError(t, err)
		assert.Equal(t, "PR-202503-000007", resp.PayrollNumber)
		assert.Equal(t, payroll.StatusDraft, resp.Status)
		assert.Equal(t, "TRY", resp.Currency)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("period already taken", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.existsForPeriodFn = func(ctx context.Context, eid string, year, month int) (bool, error) {
			assert.Equal(t, employeeID, eid)
			assert.Equal(t, 2025, year)
			assert.Equal(t, 3, month)
			return true, nil
		}

		_, err := deps.service.Create(ctx, actorID, payroll.CreatePayrollRequest{
			EmployeeID:  employeeID,
			Year:        2025,
			Month:       3,
			BaseSalary:  "30000",
			WorkingDays: 22,
		})

		assert.ErrorIs(t, err, payrollerrors.ErrPayrollPeriodTaken)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid actor id rejected before tx", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, "not-a-uuid", payroll.CreatePayrollRequest{
			EmployeeID:  employeeID,
			Year:        2025,
			Month:       3,
			BaseSalary:  "30000",
			WorkingDays: 22,
		})

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidActorID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_ApplyStatutoryDeductions(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("writes the four statutory lines", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		var created []payroll.PayrollItem
		deps.repo.createItemsFn = func(ctx context.Context, items []payroll.PayrollItem) error {
			created = items
			return nil
		}

		resp, err := deps.service.ApplyStatutoryDeductions(ctx, actorID, rec.ID.String(), payroll.StatutoryDeductionsRequest{
			PremiumDays: 30,
		})

		assert.NoError(t, err)
		assert.Len(t, created, 4)

		// Gross 30000 over 30 premium days: SGK 14% = 4200, unemployment
		// 1% = 300, taxable 25500 lands in the 15% bracket = 2175, stamp
		// duty 0.759% of gross = 227.70.
		byCategory := map[string]string{}
		for _, item := range created {
			assert.Equal(t, payroll.ItemDeduction, item.Kind)
			assert.False(t, item.IsTaxable)
			byCategory[item.Category] = item.Amount.StringFixed(2)
		}
		assert.Equal(t, "4200.00", byCategory[payroll.CategorySGKEmployee])
		assert.Equal(t, "300.00", byCategory[payroll.CategorySGKUnemploymentEmployee])
		assert.Equal(t, "2175.00", byCategory[payroll.CategoryIncomeTax])
		assert.Equal(t, "227.70", byCategory[payroll.CategoryStampDuty])

		assert.Equal(t, payroll.StatusDraft, resp.Status)
		assert.Len(t, resp.Items, 4)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("uninsured employee only owes tax", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		var created []payroll.PayrollItem
		deps.repo.createItemsFn = func(ctx context.Context, items []payroll.PayrollItem) error {
			created = items
			return nil
		}

		insured := false
		_, err := deps.service.ApplyStatutoryDeductions(ctx, actorID, rec.ID.String(), payroll.StatutoryDeductionsRequest{
			PremiumDays: 30,
			Insured:     &insured,
		})

		assert.NoError(t, err)
		// No SGK lines; taxable falls back to the full gross.
		assert.Len(t, created, 2)
		assert.Equal(t, payroll.CategoryIncomeTax, created[0].Category)
		assert.Equal(t, "2850.00", created[0].Amount.StringFixed(2))
		assert.Equal(t, payroll.CategoryStampDuty, created[1].Category)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("second application refused", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		_, err := rec.AddItem(payroll.ItemDeduction, payroll.CategoryIncomeTax, "income tax", money.TRYFromInt(2_175), nil, false, uuid.New(), testNow)
		assert.NoError(t, err)

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		_, err = deps.service.ApplyStatutoryDeductions(ctx, actorID, rec.ID.String(), payroll.StatutoryDeductionsRequest{
			PremiumDays: 30,
		})

		assert.ErrorIs(t, err, payrollerrors.ErrStatutoryAlreadyApplied)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("stamp-duty-only draft cannot be charged twice", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		// Below the first tax bracket and uninsured, so the only
		// statutory line left is stamp duty.
		rec, err := payroll.NewPayrollRecord(
			uuid.New(), 2025, 1,
			money.TRYFromInt(10_000),
			22, 22, 0, 0,
			decimal.Zero,
			43, uuid.New(), testNow,
		)
		assert.NoError(t, err)

		expectTx(t, deps.sqlMock, true)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		var created []payroll.PayrollItem
		deps.repo.createItemsFn = func(ctx context.Context, items []payroll.PayrollItem) error {
			created = items
			return nil
		}

		insured := false
		req := payroll.StatutoryDeductionsRequest{PremiumDays: 30, Insured: &insured}

		_, err = deps.service.ApplyStatutoryDeductions(ctx, actorID, rec.ID.String(), req)
		assert.NoError(t, err)
		assert.Len(t, created, 1)
		assert.Equal(t, payroll.CategoryStampDuty, created[0].Category)
		assert.Equal(t, "75.90", created[0].Amount.StringFixed(2))

		_, err = deps.service.ApplyStatutoryDeductions(ctx, actorID, rec.ID.String(), req)
		assert.ErrorIs(t, err, payrollerrors.ErrStatutoryAlreadyApplied)
		assert.Len(t, rec.Items, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid premium days", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		_, err := deps.service.ApplyStatutoryDeductions(ctx, actorID, rec.ID.String(), payroll.StatutoryDeductionsRequest{
			PremiumDays: 45,
		})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_Calculate(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("derives totals and enqueues the event", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		_, err := rec.AddItem(payroll.ItemDeduction, "ADVANCE", "", money.TRYFromInt(1_250), nil, false, uuid.New(), testNow)
		assert.NoError(t, err)

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		var updated *payroll.PayrollRecord
		deps.repo.updateFn = func(ctx context.Context, r *payroll.PayrollRecord) error {
			updated = r
			return nil
		}

		resp, err := deps.service.Calculate(ctx, actorID, rec.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusCalculated, resp.Status)
		assert.Equal(t, "28750.00", resp.NetSalary)
		assert.NotNil(t, updated)

		assert.Len(t, deps.outbox.created, 1)
		evt := deps.outbox.created[0]
		assert.Equal(t, events.PayrollCalculatedTopic, evt.Topic)
		assert.Equal(t, "payroll", evt.AggregateType)
		assert.Equal(t, rec.ID.String(), evt.AggregateID)

		var payload events.PayrollCalculatedEvent
		assert.NoError(t, json.Unmarshal(evt.Payload, &payload))
		assert.Equal(t, "28750.00", payload.NetSalary)
		assert.Equal(t, rec.PayrollNumber, payload.PayrollNumber)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative net rolls back", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		_, err := rec.AddItem(payroll.ItemDeduction, "GARNISHMENT", "", money.TRYFromInt(50_000), nil, false, uuid.New(), testNow)
		assert.NoError(t, err)

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		_, err = deps.service.Calculate(ctx, actorID, rec.ID.String())

		assert.ErrorIs(t, err, payrollerrors.ErrNegativeNetSalary)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return nil, sql.ErrNoRows
		}

		_, err := deps.service.Calculate(ctx, actorID, uuid.New().String())

		assert.ErrorIs(t, err, payrollerrors.ErrPayrollNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_ApproveAndMarkPaid(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	calculated := func(t *testing.T) *payroll.PayrollRecord {
		t.Helper()
		rec := newDraft(t)
		_, err := rec.Calculate(uuid.New(), testNow)
		assert.NoError(t, err)
		return rec
	}

	t.Run("approve success", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := calculated(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		resp, err := deps.service.Approve(ctx, actorID, rec.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusApproved, resp.Status)
		assert.NotNil(t, resp.ApprovedBy)
		assert.Equal(t, actorID, *resp.ApprovedBy)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, events.PayrollApprovedTopic, deps.outbox.created[0].Topic)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("approve refused on draft", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		_, err := deps.service.Approve(ctx, actorID, rec.ID.String())

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("mark paid generates a reference", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := calculated(t)
		_, err := rec.Approve(uuid.New(), testNow)
		assert.NoError(t, err)

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		resp, err := deps.service.MarkAsPaid(ctx, actorID, rec.ID.String(), payroll.MarkPaidRequest{
			PaymentMethod: "BANK_TRANSFER",
		})

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusPaid, resp.Status)
		assert.Equal(t, "BANK_TRANSFER", resp.PaymentMethod)
		assert.Contains(t, resp.PaymentReference, "PAY-")
		assert.NotNil(t, resp.PaidDate)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, events.PayrollPaidTopic, deps.outbox.created[0].Topic)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_RejectAndCancel(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("reject stores the reason", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		resp, err := deps.service.Reject(ctx, actorID, rec.ID.String(), payroll.RejectPayrollRequest{
			Reason: "incorrect base salary",
		})

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusRejected, resp.Status)
		assert.Equal(t, "incorrect base salary", resp.RejectedReason)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, events.PayrollRejectedTopic, deps.outbox.created[0].Topic)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("cancel emits no event", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		resp, err := deps.service.Cancel(ctx, actorID, rec.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusCancelled, resp.Status)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("update failure aborts the transition", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}
		deps.repo.updateFn = func(ctx context.Context, r *payroll.PayrollRecord) error {
			return errors.New("db error")
		}

		_, err := deps.service.Cancel(ctx, actorID, rec.ID.String())

		assert.EqualError(t, err, "db error")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("filter mapped through", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllFn = func(ctx context.Context, filter payroll.QueryFilter) ([]payroll.PayrollRecord, error) {
			assert.NotNil(t, filter.Status)
			assert.Equal(t, payroll.StatusApproved, *filter.Status)
			assert.NotNil(t, filter.Year)
			assert.Equal(t, 2025, *filter.Year)
			assert.NotNil(t, filter.Month)
			assert.Equal(t, 1, *filter.Month)
			return []payroll.PayrollRecord{*newDraft(t)}, nil
		}

		resp, err := deps.service.GetAll(ctx, payroll.GetPayrollsFilterRequest{
			Status: "APPROVED",
			Year:   2025,
			Month:  1,
		})

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
	})

	t.Run("unknown status refused", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetAll(ctx, payroll.GetPayrollsFilterRequest{Status: "PENDING"})

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusFilter)
	})
}

func TestPayrollService_Payslip(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	approved := func(t *testing.T) *payroll.PayrollRecord {
		t.Helper()
		rec := newDraft(t)
		_, err := rec.Calculate(uuid.New(), testNow)
		assert.NoError(t, err)
		_, err = rec.Approve(uuid.New(), testNow)
		assert.NoError(t, err)
		return rec
	}

	t.Run("request enqueues the event", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := approved(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		err := deps.service.RequestPayslip(ctx, actorID, rec.ID.String())

		assert.NoError(t, err)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, events.PayrollPayslipRequestedTopic, deps.outbox.created[0].Topic)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("request refused on draft", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := newDraft(t)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		err := deps.service.RequestPayslip(ctx, actorID, rec.ID.String())

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusTransition)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("generate renders and attaches", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := approved(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}
		deps.payslip.generateFn = func(r *payroll.PayrollRecord, employeeName string) (payroll.PayslipArtifact, error) {
			assert.Equal(t, "Ayse Yilmaz", employeeName)
			return payroll.PayslipArtifact{Path: "payslips/" + r.PayrollNumber + ".pdf", SHA256: "cafe01", Size: 512}, nil
		}

		resp, err := deps.service.GeneratePayslip(ctx, rec.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, "payslips/"+rec.PayrollNumber+".pdf", resp.Path)
		assert.Equal(t, "cafe01", resp.SHA256)
		assert.Equal(t, int64(512), resp.Size)
		assert.NotNil(t, rec.PayslipGeneratedAt)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("get before generation", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := approved(t)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		_, err := deps.service.GetPayslip(ctx, rec.ID.String())

		assert.ErrorIs(t, err, payrollerrors.ErrPayslipNotGenerated)
	})

	t.Run("get after generation", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		rec := approved(t)
		assert.NoError(t, rec.RecordPayslip("payslips/x.pdf", "cafe01", 512, testNow))
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
			return rec, nil
		}

		resp, err := deps.service.GetPayslip(ctx, rec.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, "payslips/x.pdf", resp.Path)
		assert.Equal(t, "cafe01", resp.SHA256)
	})
}
