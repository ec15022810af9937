package payroll

import (
	"time"
)

type CreatePayrollRequest struct {
	EmployeeID     string `json:"employee_id" binding:"required,uuid"`
	Year           int    `json:"year" binding:"required"`
	Month          int    `json:"month" binding:"required"`
	BaseSalary     string `json:"base_salary" binding:"required"`
	Currency       string `json:"currency"`
	WorkingDays    int    `json:"working_days" binding:"required"`
	ActualWorkDays int    `json:"actual_work_days"`
	LeaveDays      int    `json:"leave_days"`
	AbsentDays     int    `json:"absent_days"`
	OvertimeHours  string `json:"overtime_hours"`
}

type AddItemRequest struct {
	Kind        string  `json:"kind" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
	Amount      string  `json:"amount" binding:"required"`
	Quantity    *string `json:"quantity"`
	IsTaxable   bool    `json:"is_taxable"`
}

type StatutoryDeductionsRequest struct {
	PremiumDays     int    `json:"premium_days" binding:"required"`
	Insured         *bool  `json:"insured"`
	TaxDiscountRate string `json:"tax_discount_rate"`
}

type RejectPayrollRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type MarkPaidRequest struct {
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
}

type BatchPaymentRequest struct {
	PayrollIDs []string `json:"payroll_ids" binding:"required,min=1,dive,uuid"`
	Notes      string   `json:"notes"`
}

type GetPayrollsFilterRequest struct {
	Status string `form:"status"`
	Year   int    `form:"year"`
	Month  int    `form:"month"`
}

type PayrollItemResponse struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency"`
	Quantity    *string `json:"quantity,omitempty"`
	IsTaxable   bool    `json:"is_taxable"`
}

type PayrollResponse struct {
	ID               string                `json:"id"`
	PayrollNumber    string                `json:"payroll_number"`
	EmployeeID       string                `json:"employee_id"`
	Year             int                   `json:"year"`
	Month            int                   `json:"month"`
	BaseSalary       string                `json:"base_salary"`
	Currency         string                `json:"currency"`
	WorkingDays      int                   `json:"working_days"`
	ActualWorkDays   int                   `json:"actual_work_days"`
	LeaveDays        int                   `json:"leave_days"`
	AbsentDays       int                   `json:"absent_days"`
	OvertimeHours    string                `json:"overtime_hours"`
	Items            []PayrollItemResponse `json:"items,omitempty"`
	TotalEarnings    string                `json:"total_earnings"`
	TotalDeductions  string                `json:"total_deductions"`
	NetSalary        string                `json:"net_salary"`
	Status           PayrollStatus         `json:"status"`
	PaymentMethod    string                `json:"payment_method,omitempty"`
	PaymentReference string                `json:"payment_reference,omitempty"`
	ApprovedBy       *string               `json:"approved_by,omitempty"`
	ApprovedDate     *string               `json:"approved_date,omitempty"`
	PaidBy           *string               `json:"paid_by,omitempty"`
	PaidDate         *string               `json:"paid_date,omitempty"`
	RejectedReason   string                `json:"rejected_reason,omitempty"`
}

type PayslipResponse struct {
	PayrollID     string     `json:"payroll_id"`
	PayrollNumber string     `json:"payroll_number"`
	Path          string     `json:"path"`
	SHA256        string     `json:"sha256"`
	Size          int64      `json:"size"`
	GeneratedAt   *time.Time `json:"generated_at"`
}

type BatchPaymentResponse struct {
	TotalProcessed  int       `json:"total_processed"`
	SuccessCount    int       `json:"success_count"`
	FailureCount    int       `json:"failure_count"`
	TotalAmountPaid string    `json:"total_amount_paid"`
	Currency        string    `json:"currency"`
	Errors          []string  `json:"errors,omitempty"`
	ProcessedDate   time.Time `json:"processed_date"`
}

func mapItemToResponse(item PayrollItem) PayrollItemResponse {
	resp := PayrollItemResponse{
		ID:          item.ID.String(),
		Kind:        string(item.Kind),
		Category:    item.Category,
		Description: item.Description,
		Amount:      item.Amount.StringFixed(2),
		Currency:    item.Currency,
		IsTaxable:   item.IsTaxable,
	}
	if item.Quantity != nil {
		q := item.Quantity.String()
		resp.Quantity = &q
	}
	return resp
}

func mapToResponse(rec PayrollRecord) PayrollResponse {
	resp := PayrollResponse{
		ID:               rec.ID.String(),
		PayrollNumber:    rec.PayrollNumber,
		EmployeeID:       rec.EmployeeID.String(),
		Year:             rec.Year,
		Month:            rec.Month,
		BaseSalary:       rec.BaseSalary.StringFixed(2),
		Currency:         rec.Currency,
		WorkingDays:      rec.WorkingDays,
		ActualWorkDays:   rec.ActualWorkDays,
		LeaveDays:        rec.LeaveDays,
		AbsentDays:       rec.AbsentDays,
		OvertimeHours:    rec.OvertimeHours.String(),
		TotalEarnings:    rec.TotalEarnings.StringFixed(2),
		TotalDeductions:  rec.TotalDeductions.StringFixed(2),
		NetSalary:        rec.NetSalary.StringFixed(2),
		Status:           rec.Status,
		PaymentMethod:    rec.PaymentMethod,
		PaymentReference: rec.PaymentReference,
		RejectedReason:   rec.RejectedReason,
	}

	for _, item := range rec.Items {
		resp.Items = append(resp.Items, mapItemToResponse(item))
	}

	if rec.ApprovedBy != nil {
		v := rec.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if rec.ApprovedDate != nil {
		v := rec.ApprovedDate.Format(time.RFC3339)
		resp.ApprovedDate = &v
	}
	if rec.PaidBy != nil {
		v := rec.PaidBy.String()
		resp.PaidBy = &v
	}
	if rec.PaidDate != nil {
		v := rec.PaidDate.Format(time.RFC3339)
		resp.PaidDate = &v
	}

	return resp
}

func mapToListResponse(records []PayrollRecord) []PayrollResponse {
	resp := make([]PayrollResponse, len(records))
	for i, rec := range records {
		resp[i] = mapToResponse(rec)
	}
	return resp
}
