package payroll

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-unihr/internal/events"
	"go-unihr/internal/money"
	payrollerrors "go-unihr/internal/payroll/errors"
)

type PayrollStatus string

const (
	StatusDraft      PayrollStatus = "DRAFT"
	StatusCalculated PayrollStatus = "CALCULATED"
	StatusApproved   PayrollStatus = "APPROVED"
	StatusPaid       PayrollStatus = "PAID"
	StatusRejected   PayrollStatus = "REJECTED"
	StatusCancelled  PayrollStatus = "CANCELLED"
)

// IsTerminal reports whether no transition leaves the status.
func (s PayrollStatus) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func ParseStatus(v string) (PayrollStatus, bool) {
	switch PayrollStatus(v) {
	case StatusDraft, StatusCalculated, StatusApproved, StatusPaid, StatusRejected, StatusCancelled:
		return PayrollStatus(v), true
	}
	return "", false
}

type ItemKind string

const (
	ItemEarning   ItemKind = "EARNING"
	ItemDeduction ItemKind = "DEDUCTION"
)

// Statutory deduction categories written by ApplyStatutoryDeductions.
const (
	CategorySGKEmployee             = "SGK_EMPLOYEE"
	CategorySGKUnemploymentEmployee = "SGK_UNEMPLOYMENT_EMPLOYEE"
	CategoryIncomeTax               = "INCOME_TAX"
	CategoryStampDuty               = "STAMP_DUTY"
)

// AuditInfo is embedded into aggregates instead of inherited from a base
// entity.
type AuditInfo struct {
	CreatedAt time.Time
	CreatedBy uuid.UUID `gorm:"type:uuid"`
	UpdatedAt time.Time
	UpdatedBy uuid.UUID `gorm:"type:uuid"`
}

func (a *AuditInfo) touch(actorID uuid.UUID, now time.Time) {
	a.UpdatedAt = now
	a.UpdatedBy = actorID
}

// PayrollItem is one earning or deduction line. Items are created only via
// PayrollRecord.AddItem and are immutable afterwards; corrections are made
// by adding offsetting items, never by editing.
type PayrollItem struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayrollID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Kind        ItemKind         `gorm:"type:varchar(20);not null"`
	Category    string           `gorm:"type:varchar(60);not null"`
	Description string           `gorm:"type:varchar(200)"`
	Amount      decimal.Decimal  `gorm:"type:numeric(18,2);not null"`
	Currency    string           `gorm:"type:varchar(3);not null"`
	Quantity    *decimal.Decimal `gorm:"type:numeric(10,2)"`
	IsTaxable   bool             `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

func (i PayrollItem) Money() money.Money {
	return money.New(i.Amount, i.Currency)
}

// PayrollRecord is the aggregate root for one employee's pay period. Its
// totals are always derived from base salary plus items; its status moves
// only through the guarded transitions below.
type PayrollRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayrollNumber string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;index:idx_employee_period,unique"`
	Year          int       `gorm:"not null;index:idx_employee_period,unique"`
	Month         int       `gorm:"not null;index:idx_employee_period,unique"`

	BaseSalary decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency   string          `gorm:"type:varchar(3);not null;default:'TRY'"`

	WorkingDays    int             `gorm:"not null"`
	ActualWorkDays int             `gorm:"not null"`
	LeaveDays      int             `gorm:"not null;default:0"`
	AbsentDays     int             `gorm:"not null;default:0"`
	OvertimeHours  decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	Items []PayrollItem `gorm:"foreignKey:PayrollID"`

	// Derived by Calculate, never written independently.
	TotalEarnings   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	TotalDeductions decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	NetSalary       decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`

	Status PayrollStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	PaymentMethod    string     `gorm:"type:varchar(30)"`
	PaymentReference string     `gorm:"type:varchar(60)"`
	ApprovedBy       *uuid.UUID `gorm:"type:uuid"`
	ApprovedDate     *time.Time
	PaidBy           *uuid.UUID `gorm:"type:uuid"`
	PaidDate         *time.Time
	RejectedReason   string `gorm:"type:varchar(200)"`

	PayslipPath        *string `gorm:"type:varchar(255)"`
	PayslipSHA256      *string `gorm:"type:varchar(64)"`
	PayslipSize        *int64
	PayslipGeneratedAt *time.Time

	Audit AuditInfo `gorm:"embedded"`
}

func (PayrollRecord) TableName() string { return "payroll_records" }

// NewPayrollRecord creates a Draft record. The payroll number is derived from
// period plus a sequence value the caller obtained from the sequence repo.
func NewPayrollRecord(
	employeeID uuid.UUID,
	year, month int,
	baseSalary money.Money,
	workingDays, actualWorkDays, leaveDays, absentDays int,
	overtimeHours decimal.Decimal,
	seq int64,
	actorID uuid.UUID,
	now time.Time,
) (*PayrollRecord, error) {
	if employeeID == uuid.Nil {
		return nil, payrollerrors.ErrInvalidEmployeeID
	}
	if year < 2020 || year > now.Year() {
		return nil, payrollerrors.ErrInvalidYear
	}
	if month < 1 || month > 12 {
		return nil, payrollerrors.ErrInvalidMonth
	}
	if !baseSalary.IsPositive() {
		return nil, payrollerrors.ErrInvalidBaseSalary
	}
	if workingDays < 1 || workingDays > 31 {
		return nil, payrollerrors.ErrInvalidWorkingDays
	}
	if actualWorkDays < 0 || leaveDays < 0 || absentDays < 0 ||
		actualWorkDays+leaveDays+absentDays > workingDays {
		return nil, payrollerrors.ErrInvalidDayBreakdown
	}
	if overtimeHours.IsNegative() {
		return nil, payrollerrors.ErrInvalidDayBreakdown
	}

	return &PayrollRecord{
		ID:             uuid.New(),
		PayrollNumber:  FormatPayrollNumber(year, month, seq),
		EmployeeID:     employeeID,
		Year:           year,
		Month:          month,
		BaseSalary:     baseSalary.Amount(),
		Currency:       baseSalary.Currency(),
		WorkingDays:    workingDays,
		ActualWorkDays: actualWorkDays,
		LeaveDays:      leaveDays,
		AbsentDays:     absentDays,
		OvertimeHours:  overtimeHours,
		Status:         StatusDraft,
		Audit: AuditInfo{
			CreatedAt: now,
			CreatedBy: actorID,
			UpdatedAt: now,
			UpdatedBy: actorID,
		},
	}, nil
}

// FormatPayrollNumber builds the unique human-facing number, e.g.
// PR-202501-000042.
func FormatPayrollNumber(year, month int, seq int64) string {
	return fmt.Sprintf("PR-%04d%02d-%06d", year, month, seq)
}

func (p *PayrollRecord) BaseSalaryMoney() money.Money {
	return money.New(p.BaseSalary, p.Currency)
}

func (p *PayrollRecord) NetSalaryMoney() money.Money {
	return money.New(p.NetSalary, p.Currency)
}

// AddItem appends an immutable earning or deduction line. Allowed only while
// the record is still a draft.
func (p *PayrollRecord) AddItem(
	kind ItemKind,
	category, description string,
	amount money.Money,
	quantity *decimal.Decimal,
	isTaxable bool,
	actorID uuid.UUID,
	now time.Time,
) (PayrollItem, error) {
	if p.Status != StatusDraft {
		return PayrollItem{}, payrollerrors.TransitionNotAllowed(string(p.Status), "add an item to")
	}
	if kind != ItemEarning && kind != ItemDeduction {
		return PayrollItem{}, payrollerrors.ErrInvalidItemKind
	}
	if category == "" {
		return PayrollItem{}, payrollerrors.ErrItemCategoryRequired
	}
	if !amount.IsPositive() {
		return PayrollItem{}, payrollerrors.ErrItemAmountNotPositive
	}
	if amount.Currency() != p.Currency {
		return PayrollItem{}, payrollerrors.ErrItemCurrencyMismatch
	}

	item := PayrollItem{
		ID:          uuid.New(),
		PayrollID:   p.ID,
		Kind:        kind,
		Category:    category,
		Description: description,
		Amount:      amount.Amount(),
		Currency:    amount.Currency(),
		Quantity:    quantity,
		IsTaxable:   isTaxable,
		CreatedAt:   now,
	}
	p.Items = append(p.Items, item)
	p.Audit.touch(actorID, now)
	return item, nil
}

// Calculate derives the totals from base salary plus items and moves the
// record to Calculated. It never runs the statutory calculators itself; their
// outputs arrive earlier as deduction items. A net salary below zero is
// refused rather than clamped, so a draft overloaded with deductions stays a
// draft.
func (p *PayrollRecord) Calculate(actorID uuid.UUID, now time.Time) (events.PayrollCalculatedEvent, error) {
	if p.Status != StatusDraft {
		return events.PayrollCalculatedEvent{}, payrollerrors.TransitionNotAllowed(string(p.Status), "calculate")
	}

	earnings := money.New(p.BaseSalary, p.Currency)
	deductions := money.Zero(p.Currency)
	var err error
	for _, item := range p.Items {
		switch item.Kind {
		case ItemEarning:
			earnings, err = earnings.Add(item.Money())
		case ItemDeduction:
			deductions, err = deductions.Add(item.Money())
		}
		if err != nil {
			return events.PayrollCalculatedEvent{}, err
		}
	}

	net, err := earnings.Sub(deductions)
	if err != nil {
		return events.PayrollCalculatedEvent{}, err
	}
	if net.IsNegative() {
		return events.PayrollCalculatedEvent{}, payrollerrors.ErrNegativeNetSalary
	}

	p.TotalEarnings = earnings.Round().Amount()
	p.TotalDeductions = deductions.Round().Amount()
	p.NetSalary = net.Round().Amount()
	p.Status = StatusCalculated
	p.Audit.touch(actorID, now)

	return events.PayrollCalculatedEvent{
		EventType:     "payroll.calculated",
		PayrollID:     p.ID.String(),
		PayrollNumber: p.PayrollNumber,
		EmployeeID:    p.EmployeeID.String(),
		NetSalary:     p.NetSalary.StringFixed(2),
		Currency:      p.Currency,
		OccurredAt:    now,
	}, nil
}

func (p *PayrollRecord) Approve(approverID uuid.UUID, now time.Time) (events.PayrollApprovedEvent, error) {
	if p.Status != StatusCalculated {
		return events.PayrollApprovedEvent{}, payrollerrors.TransitionNotAllowed(string(p.Status), "approve")
	}
	if approverID == uuid.Nil {
		return events.PayrollApprovedEvent{}, payrollerrors.ErrApproverRequired
	}

	p.Status = StatusApproved
	p.ApprovedBy = &approverID
	p.ApprovedDate = &now
	p.Audit.touch(approverID, now)

	return events.PayrollApprovedEvent{
		EventType:     "payroll.approved",
		PayrollID:     p.ID.String(),
		PayrollNumber: p.PayrollNumber,
		ApprovedBy:    approverID.String(),
		OccurredAt:    now,
	}, nil
}

func (p *PayrollRecord) Reject(reason string, actorID uuid.UUID, now time.Time) (events.PayrollRejectedEvent, error) {
	if p.Status != StatusDraft && p.Status != StatusCalculated {
		return events.PayrollRejectedEvent{}, payrollerrors.TransitionNotAllowed(string(p.Status), "reject")
	}
	if reason == "" {
		return events.PayrollRejectedEvent{}, payrollerrors.ErrRejectReasonRequired
	}

	p.Status = StatusRejected
	p.RejectedReason = reason
	p.Audit.touch(actorID, now)

	return events.PayrollRejectedEvent{
		EventType:     "payroll.rejected",
		PayrollID:     p.ID.String(),
		PayrollNumber: p.PayrollNumber,
		RejectedBy:    actorID.String(),
		Reason:        reason,
		OccurredAt:    now,
	}, nil
}

// MarkAsPaid finalizes an approved record. An empty reference gets an
// auto-generated one.
func (p *PayrollRecord) MarkAsPaid(payerID uuid.UUID, reference string, now time.Time) (events.PayrollPaidEvent, error) {
	if p.Status != StatusApproved {
		return events.PayrollPaidEvent{}, payrollerrors.TransitionNotAllowed(string(p.Status), "pay")
	}
	if reference == "" {
		reference = GeneratePaymentReference("PAY", now)
	}

	p.Status = StatusPaid
	p.PaymentReference = reference
	p.PaidBy = &payerID
	p.PaidDate = &now
	p.Audit.touch(payerID, now)

	return events.PayrollPaidEvent{
		EventType:        "payroll.paid",
		PayrollID:        p.ID.String(),
		PayrollNumber:    p.PayrollNumber,
		PaidBy:           payerID.String(),
		PaymentReference: reference,
		NetSalary:        p.NetSalary.StringFixed(2),
		Currency:         p.Currency,
		OccurredAt:       now,
	}, nil
}

func (p *PayrollRecord) Cancel(actorID uuid.UUID, now time.Time) error {
	if p.Status != StatusDraft {
		return payrollerrors.TransitionNotAllowed(string(p.Status), "cancel")
	}
	p.Status = StatusCancelled
	p.Audit.touch(actorID, now)
	return nil
}

// RecordPayslip stores the rendered payslip's metadata. Rendering happens
// outside the core; only approved or paid records get a payslip.
func (p *PayrollRecord) RecordPayslip(path, sha256 string, size int64, now time.Time) error {
	if p.Status != StatusApproved && p.Status != StatusPaid {
		return payrollerrors.TransitionNotAllowed(string(p.Status), "attach a payslip to")
	}
	p.PayslipPath = &path
	p.PayslipSHA256 = &sha256
	p.PayslipSize = &size
	p.PayslipGeneratedAt = &now
	return nil
}

// GeneratePaymentReference builds references like BATCH-1735689600-a1b2c3d4.
func GeneratePaymentReference(prefix string, now time.Time) string {
	short := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%d-%s", prefix, now.Unix(), short)
}
