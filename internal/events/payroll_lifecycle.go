package events

import "time"

const (
	PayrollCalculatedTopic = "uni.payroll.calculated.v1"
	PayrollApprovedTopic   = "uni.payroll.approved.v1"
	PayrollRejectedTopic   = "uni.payroll.rejected.v1"
	PayrollPaidTopic       = "uni.payroll.paid.v1"
)

type PayrollCalculatedEvent struct {
	EventType     string    `json:"event_type"`
	PayrollID     string    `json:"payroll_id"`
	PayrollNumber string    `json:"payroll_number"`
	EmployeeID    string    `json:"employee_id"`
	NetSalary     string    `json:"net_salary"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type PayrollApprovedEvent struct {
	EventType     string    `json:"event_type"`
	PayrollID     string    `json:"payroll_id"`
	PayrollNumber string    `json:"payroll_number"`
	ApprovedBy    string    `json:"approved_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type PayrollRejectedEvent struct {
	EventType     string    `json:"event_type"`
	PayrollID     string    `json:"payroll_id"`
	PayrollNumber string    `json:"payroll_number"`
	RejectedBy    string    `json:"rejected_by"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type PayrollPaidEvent struct {
	EventType        string    `json:"event_type"`
	PayrollID        string    `json:"payroll_id"`
	PayrollNumber    string    `json:"payroll_number"`
	PaidBy           string    `json:"paid_by"`
	PaymentReference string    `json:"payment_reference"`
	NetSalary        string    `json:"net_salary"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}
