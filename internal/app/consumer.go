package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-unihr/internal/bootstrap"
	"go-unihr/internal/events"
	"go-unihr/internal/messaging/kafka/consumer"
	"go-unihr/internal/payroll"
	"go-unihr/internal/shared/connection"
	"go-unihr/internal/shared/sequence"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	payrollRepo := payroll.NewRepository(gormDB)
	seqRepo := sequence.NewRepository(gormDB)
	payrollService := payroll.NewService(sqlDB, payrollRepo, seqRepo)

	payslipReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.PayrollPayslipRequestedTopic,
		GroupID:        "go-unihr-payslip",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer payslipReader.Close()

	lifecycleReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{kafkaBroker},
		GroupTopics: []string{
			events.PayrollApprovedTopic,
			events.PayrollRejectedTopic,
			events.PayrollPaidTopic,
		},
		GroupID:        "go-unihr-payroll-audit",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer lifecycleReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumePayrollPayslipRequested(ctx, payslipReader, payrollService, logger)
	go consumer.ConsumePayrollLifecycle(ctx, lifecycleReader, bootstrap.NewStdoutAuditLogger(), logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
