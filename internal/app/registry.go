package app

import (
	"database/sql"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-unihr/internal/auth"
	"go-unihr/internal/employee"
	"go-unihr/internal/messaging/kafka"
	"go-unihr/internal/payroll"
	"go-unihr/internal/rbac"
	"go-unihr/internal/rbac/infra"
	"go-unihr/internal/rbac/rbac_http"
	"go-unihr/internal/shared/connection"
	"go-unihr/internal/shared/sequence"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	seqRepo := sequence.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)
	if err := rbacService.ReloadPolicy(); err != nil {
		return err
	}

	// --- Services ---
	var employeeService employee.Service
	if os.Getenv("EMPLOYEE_EVENTS_MODE") == "direct" {
		// Publish straight to kafka instead of going through the outbox.
		writer, err := connection.ConnectKafkaWithRetry(os.Getenv("KAFKA_BROKER"), 5)
		if err != nil {
			return err
		}
		employeeService = employee.NewServiceWithPublisher(
			db, employeeRepo, seqRepo,
			employee.NewKafkaEventPublisher(writer),
			rdb,
		)
	} else {
		employeeService = employee.NewServiceWithOutbox(db, employeeRepo, seqRepo, outboxRepo, rdb)
	}

	authService := auth.NewService(authRepo, rbacService, employeeRepo)
	payrollService := payroll.NewServiceWithConfig(
		db, payrollRepo, seqRepo, outboxRepo,
		payroll.ServiceConfig{Directory: employeeService},
	)
	batchProcessor := payroll.NewBatchProcessor(db, payrollRepo, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, batchProcessor, rdb)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler, rbacService, logger)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb)
		rbac_http.RegisterRoutes(api, rbacHandler, rbacService)
	}

	return nil
}
