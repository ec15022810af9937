package payrollerrors

import (
	"fmt"
	"net/http"

	"go-unihr/internal/shared/apperror"
)

var (
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll record not found",
		http.StatusNotFound,
	)
	ErrInvalidPayrollID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"year must be between 2020 and the current year",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeInvalidInput,
		"month must be between 1 and 12",
		http.StatusBadRequest,
	)
	ErrInvalidBaseSalary = apperror.New(
		apperror.CodeInvalidInput,
		"base salary must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidWorkingDays = apperror.New(
		apperror.CodeInvalidInput,
		"working days must be between 1 and 31",
		http.StatusBadRequest,
	)
	ErrInvalidDayBreakdown = apperror.New(
		apperror.CodeInvalidInput,
		"worked, leave and absent days cannot exceed working days",
		http.StatusBadRequest,
	)
	ErrInvalidItemKind = apperror.New(
		apperror.CodeInvalidInput,
		"item kind must be EARNING or DEDUCTION",
		http.StatusBadRequest,
	)
	ErrItemAmountNotPositive = apperror.New(
		apperror.CodeInvalidInput,
		"item amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrItemCurrencyMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"item currency must match the payroll currency",
		http.StatusBadRequest,
	)
	ErrItemCategoryRequired = apperror.New(
		apperror.CodeInvalidInput,
		"item category is required",
		http.StatusBadRequest,
	)
	ErrApproverRequired = apperror.New(
		apperror.CodeInvalidInput,
		"approver id is required",
		http.StatusBadRequest,
	)
	ErrRejectReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection reason is required",
		http.StatusBadRequest,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll status transition",
		http.StatusConflict,
	)
	ErrNegativeNetSalary = apperror.New(
		apperror.CodeInvalidState,
		"deductions exceed earnings, net salary would be negative",
		http.StatusConflict,
	)
	ErrPayrollPeriodTaken = apperror.New(
		apperror.CodeConflict,
		"a payroll already exists for this employee and period",
		http.StatusConflict,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll status filter",
		http.StatusBadRequest,
	)
	ErrStatutoryAlreadyApplied = apperror.New(
		apperror.CodeConflict,
		"statutory deductions have already been applied to this payroll",
		http.StatusConflict,
	)
	ErrPayslipNotGenerated = apperror.New(
		apperror.CodeNotFound,
		"payslip is not generated yet",
		http.StatusNotFound,
	)
	ErrBatchEmpty = apperror.New(
		apperror.CodeInvalidInput,
		"batch payment requires at least one payroll id",
		http.StatusBadRequest,
	)
)

// TransitionNotAllowed wraps ErrInvalidStatusTransition with the current
// state and the attempted operation, so callers can both errors.Is-match it
// and tell the user what was refused.
func TransitionNotAllowed(currentStatus, operation string) error {
	return apperror.Wrap(
		ErrInvalidStatusTransition,
		apperror.CodeInvalidState,
		fmt.Sprintf("cannot %s a payroll in status %s", operation, currentStatus),
		http.StatusConflict,
	)
}
