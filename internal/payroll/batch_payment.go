package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-unihr/internal/events"
	"go-unihr/internal/messaging/kafka"
	"go-unihr/internal/money"
	payrollerrors "go-unihr/internal/payroll/errors"
	"go-unihr/internal/shared/contextutil"
)

// BatchPaymentResult is the transient outcome of one batch run; it is
// returned, never persisted.
type BatchPaymentResult struct {
	TotalProcessed  int
	SuccessCount    int
	FailureCount    int
	TotalAmountPaid money.Money
	Errors          []string
	ProcessedDate   time.Time
}

//go:generate mockgen -source=batch_payment.go -destination=mock/batch_processor_mock.go -package=mock
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, processedBy string, req BatchPaymentRequest) (BatchPaymentResult, error)
}

// batchProcessor marks many approved payrolls paid inside a single
// transaction. Items fail independently - a missing or unpayable record
// becomes one line in Errors - but the commit is all-or-nothing: any
// infrastructure error rolls back the whole run, successes included.
type batchProcessor struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	clock  Clock
	logger *zap.Logger
}

func NewBatchProcessor(db *sql.DB, repo Repository, outboxRepo kafka.OutboxRepository, logger ...*zap.Logger) BatchProcessor {
	return NewBatchProcessorWithClock(db, repo, outboxRepo, func() time.Time { return time.Now().UTC() }, logger...)
}

func NewBatchProcessorWithClock(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	clock Clock,
	logger ...*zap.Logger,
) BatchProcessor {
	l := zap.L().Named("payroll.batch")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.batch")
	}
	return &batchProcessor{db: db, repo: repo, outbox: outboxRepo, clock: clock, logger: l}
}

func (b *batchProcessor) ProcessBatch(
	ctx context.Context,
	processedBy string,
	req BatchPaymentRequest,
) (BatchPaymentResult, error) {
	rid := contextutil.GetRequestID(ctx)

	payerUUID, err := uuid.Parse(processedBy)
	if err != nil {
		return BatchPaymentResult{}, payrollerrors.ErrInvalidActorID
	}
	if len(req.PayrollIDs) == 0 {
		return BatchPaymentResult{}, payrollerrors.ErrBatchEmpty
	}

	now := b.clock()
	result := BatchPaymentResult{
		TotalProcessed:  len(req.PayrollIDs),
		TotalAmountPaid: money.Zero(money.CurrencyTRY),
		ProcessedDate:   now,
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return BatchPaymentResult{}, err
	}
	defer tx.Rollback()

	qtx := b.repo.WithTx(tx)

	// Ids are processed strictly in caller order; failures are recorded and
	// skipped so one bad record cannot sink the rest of the run.
	for _, id := range req.PayrollIDs {
		if err := ctx.Err(); err != nil {
			return BatchPaymentResult{}, err
		}

		rec, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
				result.FailureCount++
				result.Errors = append(result.Errors, fmt.Sprintf("payroll %s: not found", id))
				continue
			}
			// Repository failure is not a per-item problem; abort the batch.
			return BatchPaymentResult{}, err
		}
		if rec == nil {
			result.FailureCount++
			result.Errors = append(result.Errors, fmt.Sprintf("payroll %s: not found", id))
			continue
		}

		reference := GeneratePaymentReference("BATCH", now)
		if _, err := rec.MarkAsPaid(payerUUID, reference, now); err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, fmt.Sprintf("payroll %s: %v", id, err))
			continue
		}

		if err := qtx.Update(ctx, rec); err != nil {
			return BatchPaymentResult{}, err
		}

		paid, err := result.TotalAmountPaid.Add(rec.NetSalaryMoney())
		if err != nil {
			return BatchPaymentResult{}, err
		}
		result.TotalAmountPaid = paid
		result.SuccessCount++
	}

	if err := b.enqueueCompletedEvent(ctx, tx, processedBy, result); err != nil {
		return BatchPaymentResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return BatchPaymentResult{}, err
	}

	b.logger.Info("batch payment processed",
		zap.String("request_id", rid),
		zap.String("processed_by", processedBy),
		zap.Int("total", result.TotalProcessed),
		zap.Int("success", result.SuccessCount),
		zap.Int("failure", result.FailureCount),
		zap.String("total_paid", result.TotalAmountPaid.String()),
	)
	return result, nil
}

func (b *batchProcessor) enqueueCompletedEvent(
	ctx context.Context,
	tx *sql.Tx,
	processedBy string,
	result BatchPaymentResult,
) error {
	if b.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.PayrollBatchCompletedEvent{
		EventType:       "payroll.batch.completed",
		ProcessedBy:     processedBy,
		TotalProcessed:  result.TotalProcessed,
		SuccessCount:    result.SuccessCount,
		FailureCount:    result.FailureCount,
		TotalAmountPaid: result.TotalAmountPaid.Amount().StringFixed(2),
		Currency:        result.TotalAmountPaid.Currency(),
		OccurredAt:      result.ProcessedDate,
	})
	if err != nil {
		return err
	}

	return b.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll_batch",
		AggregateID:   uuid.New().String(),
		EventType:     events.PayrollBatchCompletedTopic,
		Topic:         events.PayrollBatchCompletedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func mapBatchResultToResponse(result BatchPaymentResult) BatchPaymentResponse {
	return BatchPaymentResponse{
		TotalProcessed:  result.TotalProcessed,
		SuccessCount:    result.SuccessCount,
		FailureCount:    result.FailureCount,
		TotalAmountPaid: result.TotalAmountPaid.Amount().StringFixed(2),
		Currency:        result.TotalAmountPaid.Currency(),
		Errors:          result.Errors,
		ProcessedDate:   result.ProcessedDate,
	}
}
