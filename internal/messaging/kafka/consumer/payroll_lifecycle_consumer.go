package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-unihr/internal/bootstrap"
	"go-unihr/internal/events"
)

// ConsumePayrollLifecycle turns approved, rejected and paid events into audit
// log entries. The reader is expected to subscribe to the lifecycle topics.
func ConsumePayrollLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_lifecycle")
	log.Info("payroll lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll lifecycle consumer stopped")
				return
			}
			log.Error("fetch payroll lifecycle message failed", zap.Error(err))
			continue
		}

		entry, ok := auditEntryFor(msg)
		if !ok {
			log.Warn("unrecognized payroll lifecycle message",
				zap.String("topic", msg.Topic),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		audit.Log(ctx, entry)

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payroll lifecycle message failed", zap.Error(err))
			continue
		}
	}
}

func auditEntryFor(msg kafkago.Message) (bootstrap.AuditLog, bool) {
	switch msg.Topic {
	case events.PayrollApprovedTopic:
		var event events.PayrollApprovedEvent
		if json.Unmarshal(msg.Value, &event) != nil {
			return bootstrap.AuditLog{}, false
		}
		return bootstrap.AuditLog{
			Action:  "PAYROLL_APPROVED",
			Message: "Payroll approved",
			Meta: map[string]any{
				"payroll_id":     event.PayrollID,
				"payroll_number": event.PayrollNumber,
				"approved_by":    event.ApprovedBy,
				"occurred_at":    event.OccurredAt,
			},
		}, true

	case events.PayrollRejectedTopic:
		var event events.PayrollRejectedEvent
		if json.Unmarshal(msg.Value, &event) != nil {
			return bootstrap.AuditLog{}, false
		}
		return bootstrap.AuditLog{
			Action:  "PAYROLL_REJECTED",
			Message: "Payroll rejected",
			Meta: map[string]any{
				"payroll_id":     event.PayrollID,
				"payroll_number": event.PayrollNumber,
				"rejected_by":    event.RejectedBy,
				"reason":         event.Reason,
				"occurred_at":    event.OccurredAt,
			},
		}, true

	case events.PayrollPaidTopic:
		var event events.PayrollPaidEvent
		if json.Unmarshal(msg.Value, &event) != nil {
			return bootstrap.AuditLog{}, false
		}
		return bootstrap.AuditLog{
			Action:  "PAYROLL_PAID",
			Message: "Payroll paid",
			Meta: map[string]any{
				"payroll_id":        event.PayrollID,
				"payroll_number":    event.PayrollNumber,
				"paid_by":           event.PaidBy,
				"payment_reference": event.PaymentReference,
				"net_salary":        event.NetSalary,
				"currency":          event.Currency,
				"occurred_at":       event.OccurredAt,
			},
		}, true
	}

	return bootstrap.AuditLog{}, false
}
