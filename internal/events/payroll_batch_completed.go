package events

import "time"

const PayrollBatchCompletedTopic = "uni.payroll.batch.completed.v1"

type PayrollBatchCompletedEvent struct {
	EventType       string    `json:"event_type"`
	ProcessedBy     string    `json:"processed_by"`
	TotalProcessed  int       `json:"total_processed"`
	SuccessCount    int       `json:"success_count"`
	FailureCount    int       `json:"failure_count"`
	TotalAmountPaid string    `json:"total_amount_paid"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}
