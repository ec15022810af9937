package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-unihr/internal/events"
	"go-unihr/internal/messaging/kafka"
	"go-unihr/internal/money"
	payrollerrors "go-unihr/internal/payroll/errors"
	"go-unihr/internal/sgk"
	"go-unihr/internal/shared/contextutil"
	"go-unihr/internal/shared/sequence"
	"go-unihr/internal/tax"
)

// Clock supplies the current UTC time so lifecycle timestamps are
// deterministic in tests.
type Clock func() time.Time

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreatePayrollRequest) (PayrollResponse, error)
	GetAll(ctx context.Context, req GetPayrollsFilterRequest) ([]PayrollResponse, error)
	GetByID(ctx context.Context, id string) (PayrollResponse, error)
	AddItem(ctx context.Context, actorID, id string, req AddItemRequest) (PayrollResponse, error)
	ApplyStatutoryDeductions(ctx context.Context, actorID, id string, req StatutoryDeductionsRequest) (PayrollResponse, error)
	Calculate(ctx context.Context, actorID, id string) (PayrollResponse, error)
	Approve(ctx context.Context, actorID, id string) (PayrollResponse, error)
	Reject(ctx context.Context, actorID, id string, req RejectPayrollRequest) (PayrollResponse, error)
	Cancel(ctx context.Context, actorID, id string) (PayrollResponse, error)
	MarkAsPaid(ctx context.Context, actorID, id string, req MarkPaidRequest) (PayrollResponse, error)
	RequestPayslip(ctx context.Context, actorID, id string) error
	GeneratePayslip(ctx context.Context, id string) (PayslipResponse, error)
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	seq       sequence.Repository
	outbox    kafka.OutboxRepository
	taxCalc   tax.Calculator
	sgkCalc   sgk.Calculator
	clock     Clock
	payslip   PayslipGenerator
	directory EmployeeDirectory
	logger    *zap.Logger
}

// ServiceConfig overrides the fiscal-year defaults, mainly for tests and the
// consumer wiring.
type ServiceConfig struct {
	Tax       *tax.Calculator
	SGK       *sgk.Calculator
	Clock     Clock
	Payslip   PayslipGenerator
	Directory EmployeeDirectory
}

func NewService(db *sql.DB, repo Repository, seq sequence.Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, seq, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	seq sequence.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithConfig(db, repo, seq, outboxRepo, ServiceConfig{}, logger...)
}

func NewServiceWithConfig(
	db *sql.DB,
	repo Repository,
	seq sequence.Repository,
	outboxRepo kafka.OutboxRepository,
	cfg ServiceConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}

	taxCalc := tax.NewCalculator(tax.Turkey2025())
	if cfg.Tax != nil {
		taxCalc = *cfg.Tax
	}
	sgkCalc := sgk.NewCalculator(sgk.Turkey2025())
	if cfg.SGK != nil {
		sgkCalc = *cfg.SGK
	}
	clock := cfg.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	payslip := cfg.Payslip
	if payslip == nil {
		payslip = NewPDFPayslipGenerator(os.Getenv("PAYSLIP_DIR"))
	}

	return &service{
		db:        db,
		repo:      repo,
		seq:       seq,
		outbox:    outboxRepo,
		taxCalc:   taxCalc,
		sgkCalc:   sgkCalc,
		clock:     clock,
		payslip:   payslip,
		directory: cfg.Directory,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreatePayrollRequest) (PayrollResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create payroll requested",
		zap.String("request_id", rid),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidEmployeeID
	}

	baseSalary, err := money.FromString(req.BaseSalary, req.Currency)
	if err != nil {
		return PayrollResponse{}, err
	}
	overtime := decimal.Zero
	if req.OvertimeHours != "" {
		overtime, err = decimal.NewFromString(req.OvertimeHours)
		if err != nil {
			return PayrollResponse{}, payrollerrors.ErrInvalidDayBreakdown
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create payroll begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.ExistsForPeriod(ctx, req.EmployeeID, req.Year, req.Month)
	if err != nil {
		return PayrollResponse{}, err
	}
	if exists {
		return PayrollResponse{}, payrollerrors.ErrPayrollPeriodTaken
	}

	seqVal, err := s.seq.WithTx(tx).NextValue(ctx, fmt.Sprintf("payroll:%04d%02d", req.Year, req.Month))
	if err != nil {
		s.logger.Error("create payroll sequence failed", zap.String("request_id", rid), zap.Error(err))
		return PayrollResponse{}, err
	}

	rec, err := NewPayrollRecord(
		employeeUUID,
		req.Year, req.Month,
		baseSalary,
		req.WorkingDays, req.ActualWorkDays, req.LeaveDays, req.AbsentDays,
		overtime,
		seqVal,
		actorUUID,
		s.clock(),
	)
	if err != nil {
		return PayrollResponse{}, err
	}

	if err := qtx.Create(ctx, rec); err != nil {
		s.logger.Error("create payroll persist failed", zap.String("request_id", rid), zap.Error(err))
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, err
	}

	s.logger.Info("payroll created",
		zap.String("request_id", rid),
		zap.String("payroll_id", rec.ID.String()),
		zap.String("payroll_number", rec.PayrollNumber),
	)
	return mapToResponse(*rec), nil
}

func (s *service) GetAll(ctx context.Context, req GetPayrollsFilterRequest) ([]PayrollResponse, error) {
	filter := QueryFilter{}
	if req.Status != "" {
		status, ok := ParseStatus(req.Status)
		if !ok {
			return nil, payrollerrors.ErrInvalidStatusFilter
		}
		filter.Status = &status
	}
	if req.Year != 0 {
		filter.Year = &req.Year
	}
	if req.Month != 0 {
		if req.Month < 1 || req.Month > 12 {
			return nil, payrollerrors.ErrInvalidMonth
		}
		filter.Month = &req.Month
	}

	records, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(records), nil
}

func (s *service) GetByID(ctx context.Context, id string) (PayrollResponse, error) {
	rec, err := s.loadRecord(ctx, s.repo, id)
	if err != nil {
		return PayrollResponse{}, err
	}
	return mapToResponse(*rec), nil
}

func (s *service) AddItem(ctx context.Context, actorID, id string, req AddItemRequest) (PayrollResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidActorID
	}

	amount, err := money.FromString(req.Amount, "")
	if err != nil {
		return PayrollResponse{}, err
	}
	var quantity *decimal.Decimal
	if req.Quantity != nil && *req.Quantity != "" {
		q, err := decimal.NewFromString(*req.Quantity)
		if err != nil {
			return PayrollResponse{}, payrollerrors.ErrInvalidItemKind
		}
		quantity = &q
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := s.loadRecord(ctx, qtx, id)
	if err != nil {
		return PayrollResponse{}, err
	}

	item, err := rec.AddItem(
		ItemKind(req.Kind),
		req.Category, req.Description,
		amount, quantity, req.IsTaxable,
		actorUUID, s.clock(),
	)
	if err != nil {
		return PayrollResponse{}, err
	}

	if err := qtx.CreateItems(ctx, []PayrollItem{item}); err != nil {
		return PayrollResponse{}, err
	}
	if err := qtx.Update(ctx, rec); err != nil {
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, err
	}
	return mapToResponse(*rec), nil
}

// ApplyStatutoryDeductions runs the SGK and withholding calculators against
// the draft's gross pay and appends their outputs as deduction items. The
// later Calculate step only folds items, so both halves stay independently
// testable. Running it twice would deduct tax twice, hence the category
// guard.
func (s *service) ApplyStatutoryDeductions(
	ctx context.Context,
	actorID, id string,
	req StatutoryDeductionsRequest,
) (PayrollResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidActorID
	}

	insured := true
	if req.Insured != nil {
		insured = *req.Insured
	}
	discount := decimal.Zero
	if req.TaxDiscountRate != "" {
		discount, err = decimal.NewFromString(req.TaxDiscountRate)
		if err != nil {
			return PayrollResponse{}, tax.ErrInvalidDiscountRate
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := s.loadRecord(ctx, qtx, id)
	if err != nil {
		return PayrollResponse{}, err
	}
	for _, item := range rec.Items {
		switch item.Category {
		case CategorySGKEmployee, CategorySGKUnemploymentEmployee, CategoryIncomeTax, CategoryStampDuty:
			return PayrollResponse{}, payrollerrors.ErrStatutoryAlreadyApplied
		}
	}

	gross := rec.BaseSalaryMoney()
	for _, item := range rec.Items {
		if item.Kind == ItemEarning && item.IsTaxable {
			gross, err = gross.Add(item.Money())
			if err != nil {
				return PayrollResponse{}, err
			}
		}
	}

	contribution, err := s.sgkCalc.Compute(gross, req.PremiumDays, insured)
	if err != nil {
		return PayrollResponse{}, err
	}
	withholding, err := s.taxCalc.ComputeWithholding(gross, contribution.EmployeeTotal, discount)
	if err != nil {
		return PayrollResponse{}, err
	}

	now := s.clock()
	lines := []struct {
		category    string
		description string
		amount      money.Money
	}{
		{CategorySGKEmployee, "SGK employee contribution (" + contribution.TariffVersion + ")", contribution.Employee},
		{CategorySGKUnemploymentEmployee, "unemployment insurance, employee share", contribution.EmployeeUnemployment},
		{CategoryIncomeTax, "income tax (" + withholding.TableVersion + ")", withholding.IncomeTax},
		{CategoryStampDuty, "stamp duty", withholding.StampDuty},
	}

	var created []PayrollItem
	for _, line := range lines {
		if !line.amount.IsPositive() {
			continue
		}
		item, err := rec.AddItem(ItemDeduction, line.category, line.description, line.amount, nil, false, actorUUID, now)
		if err != nil {
			return PayrollResponse{}, err
		}
		created = append(created, item)
	}

	if err := qtx.CreateItems(ctx, created); err != nil {
		return PayrollResponse{}, err
	}
	if err := qtx.Update(ctx, rec); err != nil {
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, err
	}

	s.logger.Info("statutory deductions applied",
		zap.String("request_id", rid),
		zap.String("payroll_id", rec.ID.String()),
		zap.Int("premium_days", req.PremiumDays),
		zap.Bool("insured", insured),
		zap.Bool("gross_fallback", withholding.UsedGrossFallback),
	)
	return mapToResponse(*rec), nil
}

func (s *service) Calculate(ctx context.Context, actorID, id string) (PayrollResponse, error) {
	return s.transition(ctx, actorID, id, "calculate", func(rec *PayrollRecord, actor uuid.UUID, now time.Time) (any, string, error) {
		evt, err := rec.Calculate(actor, now)
		return evt, events.PayrollCalculatedTopic, err
	})
}

func (s *service) Approve(ctx context.Context, actorID, id string) (PayrollResponse, error) {
	return s.transition(ctx, actorID, id, "approve", func(rec *PayrollRecord, actor uuid.UUID, now time.Time) (any, string, error) {
		evt, err := rec.Approve(actor, now)
		return evt, events.PayrollApprovedTopic, err
	})
}

func (s *service) Reject(ctx context.Context, actorID, id string, req RejectPayrollRequest) (PayrollResponse, error) {
	return s.transition(ctx, actorID, id, "reject", func(rec *PayrollRecord, actor uuid.UUID, now time.Time) (any, string, error) {
		evt, err := rec.Reject(req.Reason, actor, now)
		return evt, events.PayrollRejectedTopic, err
	})
}

func (s *service) Cancel(ctx context.Context, actorID, id string) (PayrollResponse, error) {
	return s.transition(ctx, actorID, id, "cancel", func(rec *PayrollRecord, actor uuid.UUID, now time.Time) (any, string, error) {
		return nil, "", rec.Cancel(actor, now)
	})
}

func (s *service) MarkAsPaid(ctx context.Context, actorID, id string, req MarkPaidRequest) (PayrollResponse, error) {
	return s.transition(ctx, actorID, id, "pay", func(rec *PayrollRecord, actor uuid.UUID, now time.Time) (any, string, error) {
		if req.PaymentMethod != "" {
			rec.PaymentMethod = req.PaymentMethod
		}
		evt, err := rec.MarkAsPaid(actor, req.PaymentReference, now)
		return evt, events.PayrollPaidTopic, err
	})
}

// transition wraps one guarded lifecycle mutation in a transaction and, when
// the aggregate emitted an event, stores it in the outbox within the same tx.
func (s *service) transition(
	ctx context.Context,
	actorID, id, operation string,
	mutate func(rec *PayrollRecord, actor uuid.UUID, now time.Time) (any, string, error),
) (PayrollResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := s.loadRecord(ctx, qtx, id)
	if err != nil {
		return PayrollResponse{}, err
	}

	evt, topic, err := mutate(rec, actorUUID, s.clock())
	if err != nil {
		return PayrollResponse{}, err
	}

	if err := qtx.Update(ctx, rec); err != nil {
		s.logger.Error("payroll transition persist failed",
			zap.String("request_id", rid),
			zap.String("operation", operation),
			zap.Error(err),
		)
		return PayrollResponse{}, err
	}

	if evt != nil && topic != "" {
		if err := s.enqueueEvent(ctx, tx, rec.ID.String(), topic, evt); err != nil {
			return PayrollResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, err
	}

	s.logger.Info("payroll transition applied",
		zap.String("request_id", rid),
		zap.String("payroll_id", rec.ID.String()),
		zap.String("operation", operation),
		zap.String("status", string(rec.Status)),
	)
	return mapToResponse(*rec), nil
}

func (s *service) RequestPayslip(ctx context.Context, actorID, id string) error {
	rec, err := s.loadRecord(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if rec.Status != StatusApproved && rec.Status != StatusPaid {
		return payrollerrors.TransitionNotAllowed(string(rec.Status), "request a payslip for")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	evt := events.PayrollPayslipRequestedEvent{
		EventType:   "payroll.payslip.requested",
		PayrollID:   rec.ID.String(),
		RequestedBy: actorID,
		OccurredAt:  s.clock(),
	}
	if err := s.enqueueEvent(ctx, tx, rec.ID.String(), events.PayrollPayslipRequestedTopic, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) GetPayslip(ctx context.Context, id string) (PayslipResponse, error) {
	rec, err := s.loadRecord(ctx, s.repo, id)
	if err != nil {
		return PayslipResponse{}, err
	}
	if rec.PayslipPath == nil || rec.PayslipGeneratedAt == nil {
		return PayslipResponse{}, payrollerrors.ErrPayslipNotGenerated
	}

	resp := PayslipResponse{
		PayrollID:     rec.ID.String(),
		PayrollNumber: rec.PayrollNumber,
		Path:          *rec.PayslipPath,
		GeneratedAt:   rec.PayslipGeneratedAt,
	}
	if rec.PayslipSHA256 != nil {
		resp.SHA256 = *rec.PayslipSHA256
	}
	if rec.PayslipSize != nil {
		resp.Size = *rec.PayslipSize
	}
	return resp, nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, aggregateID, topic string, evt any) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll",
		AggregateID:   aggregateID,
		EventType:     topic,
		Topic:         topic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) loadRecord(ctx context.Context, repo Repository, id string) (*PayrollRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrInvalidPayrollID
	}
	rec, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
			return nil, payrollerrors.ErrPayrollNotFound
		}
		return nil, err
	}
	if rec == nil {
		return nil, payrollerrors.ErrPayrollNotFound
	}
	return rec, nil
}
