package events

import "time"

const EmployeeCreatedTopic = "uni.employee.created.v1"

type EmployeeCreatedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	EmployeeID  string    `json:"employee_id"`
	StaffNumber string    `json:"staff_number"`
	OccurredAt  time.Time `json:"occurred_at"`
}
