package payroll

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"go-unihr/internal/shared/apperror"
	"go-unihr/internal/shared/response"
)

type Handler struct {
	service Service
	batch   BatchProcessor
	rdb     *redis.Client
}

func NewHandler(service Service, batch BatchProcessor) *Handler {
	return &Handler{service: service, batch: batch}
}

func NewHandlerWithRedis(service Service, batch BatchProcessor, rdb *redis.Client) *Handler {
	return &Handler{service: service, batch: batch, rdb: rdb}
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("employee_id")
	if actorID == "" {
		actorID = c.GetString("user_id_validated")
	}
	return actorID
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return false
	}
	return true
}

// releaseIdempotencyLock and cacheIdempotentResponse pair with the
// middleware that set the keys; both are no-ops without redis.
func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if lk, ok := c.Get("idempotency_lock_key"); ok {
		if key, ok := lk.(string); ok && key != "" {
			_ = h.rdb.Del(c.Request.Context(), key).Err()
		}
	}
}

func (h *Handler) cacheIdempotentResponse(c *gin.Context, payload any) {
	if h.rdb == nil {
		return
	}
	if ck, ok := c.Get("idempotency_cache_key"); ok {
		if key, ok := ck.(string); ok && key != "" {
			if raw, err := json.Marshal(payload); err == nil {
				_ = h.rdb.Set(c.Request.Context(), key, raw, 24*time.Hour).Err()
			}
		}
	}
}

func (h *Handler) Create(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)

	var req CreatePayrollRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.cacheIdempotentResponse(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	var filterReq GetPayrollsFilterRequest
	if err := c.ShouldBindQuery(&filterReq); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.GetAll(c.Request.Context(), filterReq)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.AddItem(c.Request.Context(), getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ApplyStatutoryDeductions(c *gin.Context) {
	var req StatutoryDeductionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.ApplyStatutoryDeductions(c.Request.Context(), getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Calculate(c *gin.Context) {
	resp, err := h.service.Calculate(c.Request.Context(), getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	resp, err := h.service.Approve(c.Request.Context(), getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	var req RejectPayrollRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	resp, err := h.service.Cancel(c.Request.Context(), getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) MarkAsPaid(c *gin.Context) {
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.MarkAsPaid(c.Request.Context(), getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ProcessBatch(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)

	var req BatchPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.batch.ProcessBatch(c.Request.Context(), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := mapBatchResultToResponse(result)
	h.cacheIdempotentResponse(c, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RequestPayslip(c *gin.Context) {
	if err := h.service.RequestPayslip(c.Request.Context(), getActorID(c), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"status": "requested"}, nil)
}

func (h *Handler) GetPayslip(c *gin.Context) {
	resp, err := h.service.GetPayslip(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
