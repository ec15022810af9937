package payroll

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"go-unihr/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService, rdb *redis.Client) {
	payrolls := r.Group("/payrolls")
	payrolls.Use(middleware.AuthMiddleware())
	{
		payrolls.POST("", middleware.RBACAuthorize(rbacService, "payroll", "create"), middleware.Idempotency(rdb), h.Create)
		payrolls.GET("", middleware.RBACAuthorize(rbacService, "payroll", "read"), h.GetAll)
		payrolls.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll", "read"), h.GetById)
		payrolls.POST("/:id/items", middleware.RBACAuthorize(rbacService, "payroll", "update"), h.AddItem)
		payrolls.POST("/:id/statutory-deductions", middleware.RBACAuthorize(rbacService, "payroll", "update"), h.ApplyStatutoryDeductions)
		payrolls.POST("/:id/calculate", middleware.RBACAuthorize(rbacService, "payroll", "update"), h.Calculate)
		payrolls.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "payroll", "approve"), h.Approve)
		payrolls.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "payroll", "approve"), h.Reject)
		payrolls.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "payroll", "update"), h.Cancel)
		payrolls.POST("/:id/pay", middleware.RBACAuthorize(rbacService, "payroll", "pay"), h.MarkAsPaid)
		payrolls.POST("/:id/payslip", middleware.RBACAuthorize(rbacService, "payslip", "create"), h.RequestPayslip)
		payrolls.GET("/:id/payslip", middleware.RBACAuthorize(rbacService, "payslip", "read"), h.GetPayslip)

		payrolls.POST("/batch-payments", middleware.RBACAuthorize(rbacService, "payroll", "pay"), middleware.Idempotency(rdb), h.ProcessBatch)
	}
}
