package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-unihr/internal/money"
	"go-unihr/internal/payroll"
	payrollerrors "go-unihr/internal/payroll/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayrollService struct {
	createFn          func(ctx context.Context, actorID string, req payroll.CreatePayrollRequest) (payroll.PayrollResponse, error)
	getAllFn          func(ctx context.Context, req payroll.GetPayrollsFilterRequest) ([]payroll.PayrollResponse, error)
	getByIDFn         func(ctx context.Context, id string) (payroll.PayrollResponse, error)
	addItemFn         func(ctx context.Context, actorID, id string, req payroll.AddItemRequest) (payroll.PayrollResponse, error)
	applyStatutoryFn  func(ctx context.Context, actorID, id string, req payroll.StatutoryDeductionsRequest) (payroll.PayrollResponse, error)
	calculateFn       func(ctx context.Context, actorID, id string) (payroll.PayrollResponse, error)
	approveFn         func(ctx context.Context, actorID, id string) (payroll.PayrollResponse, error)
	rejectFn          func(ctx context.Context, actorID, id string, req payroll.RejectPayrollRequest) (payroll.PayrollResponse, error)
	cancelFn          func(ctx context.Context, actorID, id string) (payroll.PayrollResponse, error)
	markPaidFn        func(ctx context.Context, actorID, id string, req payroll.MarkPaidRequest) (payroll.PayrollResponse, error)
	requestPayslipFn  func(ctx context.Context, actorID, id string) error
	generatePayslipFn func(ctx context.Context, id string) (payroll.PayslipResponse, error)
	getPayslipFn      func(ctx context.Context, id string) (payroll.PayslipResponse, error)
}

func (f *fakePayrollService) Create(ctx context.Context, actorID string, req payroll.CreatePayrollRequest) (payroll.PayrollResponse, error) {
	return f.createFn(ctx, actorID, req)
}

func (f *fakePayrollService) GetAll(ctx context.Context, req payroll.GetPayrollsFilterRequest) ([]payroll.PayrollResponse, error) {
	return f.getAllFn(ctx, req)
}

func (f *fakePayrollService) GetByID(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakePayrollService) AddItem(ctx context.Context, actorID, id string, req payroll.AddItemRequest) (payroll.PayrollResponse, error) {
	return f.addItemFn(ctx, actorID, id, req)
}

func (f *fakePayrollService) ApplyStatutoryDeductions(ctx context.Context, actorID, id string, req payroll.StatutoryDeductionsRequest) (payroll.PayrollResponse, error) {
	return f.applyStatutoryFn(ctx, actorID, id, req)
}

func (f *fakePayrollService) Calculate(ctx context.Context, actorID, id string) (payroll.PayrollResponse, error) {
	return f.calculateFn(ctx, actorID, id)
}

func (f *fakePayrollService) Approve(ctx context.Context, actorID, id string) (payroll.PayrollResponse, error) {
	return f.approveFn(ctx, actorID, id)
}

func (f *fakePayrollService) Reject(ctx context.Context, actorID, id string, req payroll.RejectPayrollRequest) (payroll.PayrollResponse, error) {
	return f.rejectFn(ctx, actorID, id, req)
}

func (f *fakePayrollService) Cancel(ctx context.Context, actorID, id string) (payroll.PayrollResponse, error) {
	return f.cancelFn(ctx, actorID, id)
}

func (f *fakePayrollService) MarkAsPaid(ctx context.Context, actorID, id string, req payroll.MarkPaidRequest) (payroll.PayrollResponse, error) {
	return f.markPaidFn(ctx, actorID, id, req)
}

func (f *fakePayrollService) RequestPayslip(ctx context.Context, actorID, id string) error {
	return f.requestPayslipFn(ctx, actorID, id)
}

func (f *fakePayrollService) GeneratePayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	return f.generatePayslipFn(ctx, id)
}

func (f *fakePayrollService) GetPayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	return f.getPayslipFn(ctx, id)
}

type fakeBatchProcessor struct {
	processBatchFn func(ctx context.Context, processedBy string, req payroll.BatchPaymentRequest) (payroll.BatchPaymentResult, error)
}

func (f *fakeBatchProcessor) ProcessBatch(ctx context.Context, processedBy string, req payroll.BatchPaymentRequest) (payroll.BatchPaymentResult, error) {
	return f.processBatchFn(ctx, processedBy, req)
}

func TestPayrollHandler_Create(t *testing.T) {
	actorID := uuid.New().String()
	employeeID := uuid.New().String()

	svc := &fakePayrollService{
		createFn: func(ctx context.Context, aid string, req payroll.CreatePayrollRequest) (payroll.PayrollResponse, error) {
			assert.Equal(t, actorID, aid)
			assert.Equal(t, employeeID, req.EmployeeID)
			assert.Equal(t, 2025, req.Year)
			return payroll.PayrollResponse{ID: uuid.New().String(), Status: payroll.StatusDraft, EmployeeID: req.EmployeeID}, nil
		},
	}

	h := payroll.NewHandler(svc, &fakeBatchProcessor{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"employee_id":"` + employeeID + `","year":2025,"month":3,"base_salary":"30000","working_days":22,"actual_work_days":20}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("employee_id", actorID)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPayrollHandler_Create_ValidationError(t *testing.T) {
	called := false
	svc := &fakePayrollService{
		createFn: func(ctx context.Context, aid string, req payroll.CreatePayrollRequest) (payroll.PayrollResponse, error) {
			called = true
			return payroll.PayrollResponse{}, nil
		},
	}

	h := payroll.NewHandler(svc, &fakeBatchProcessor{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls", strings.NewReader(`{"employee_id":"not-a-uuid"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("employee_id", uuid.New().String())

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
}

func TestPayrollHandler_Calculate_InvalidState(t *testing.T) {
	svc := &fakePayrollService{
		calculateFn: func(ctx context.Context, actorID, id string) (payroll.PayrollResponse, error) {
			return payroll.PayrollResponse{}, payrollerrors.TransitionNotAllowed("PAID", "calculate")
		},
	}

	h := payroll.NewHandler(svc, &fakeBatchProcessor{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/"+id+"/calculate", nil)
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("employee_id", uuid.New().String())

	h.Calculate(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestPayrollHandler_ApproveAndMarkPaid(t *testing.T) {
	actorID := uuid.New().String()
	id := uuid.New().String()

	svc := &fakePayrollService{
		approveFn: func(ctx context.Context, aid, pid string) (payroll.PayrollResponse, error) {
			assert.Equal(t, actorID, aid)
			assert.Equal(t, id, pid)
			return payroll.PayrollResponse{ID: id, Status: payroll.StatusApproved}, nil
		},
		markPaidFn: func(ctx context.Context, aid, pid string, req payroll.MarkPaidRequest) (payroll.PayrollResponse, error) {
			assert.Empty(t, req.PaymentReference)
			return payroll.PayrollResponse{ID: id, Status: payroll.StatusPaid}, nil
		},
	}

	h := payroll.NewHandler(svc, &fakeBatchProcessor{})

	wApprove := httptest.NewRecorder()
	cApprove, _ := gin.CreateTestContext(wApprove)
	cApprove.Request = httptest.NewRequest(http.MethodPost, "/payrolls/"+id+"/approve", nil)
	cApprove.Params = []gin.Param{{Key: "id", Value: id}}
	cApprove.Set("employee_id", actorID)
	h.Approve(cApprove)
	assert.Equal(t, http.StatusOK, wApprove.Code)

	// An empty body is fine for mark-paid; reference and method are optional.
	wPaid := httptest.NewRecorder()
	cPaid, _ := gin.CreateTestContext(wPaid)
	cPaid.Request = httptest.NewRequest(http.MethodPost, "/payrolls/"+id+"/pay", nil)
	cPaid.Params = []gin.Param{{Key: "id", Value: id}}
	cPaid.Set("employee_id", actorID)
	h.MarkAsPaid(cPaid)
	assert.Equal(t, http.StatusOK, wPaid.Code)
}

func TestPayrollHandler_Reject_RequiresReason(t *testing.T) {
	svc := &fakePayrollService{
		rejectFn: func(ctx context.Context, actorID, id string, req payroll.RejectPayrollRequest) (payroll.PayrollResponse, error) {
			t.Fatal("service must not be called without a reason")
			return payroll.PayrollResponse{}, nil
		},
	}

	h := payroll.NewHandler(svc, &fakeBatchProcessor{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/"+id+"/reject", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("employee_id", uuid.New().String())

	h.Reject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayrollHandler_GetAll_Paginated(t *testing.T) {
	responses := make([]payroll.PayrollResponse, 15)
	for i := range responses {
		responses[i] = payroll.PayrollResponse{ID: uuid.New().String(), Status: payroll.StatusDraft}
	}

	svc := &fakePayrollService{
		getAllFn: func(ctx context.Context, req payroll.GetPayrollsFilterRequest) ([]payroll.PayrollResponse, error) {
			assert.Equal(t, "DRAFT", req.Status)
			return responses, nil
		},
	}

	h := payroll.NewHandler(svc, &fakeBatchProcessor{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/payrolls?status=DRAFT&page=2&page_size=10", nil)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)

	var page []payroll.PayrollResponse
	assert.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page, 5)
}

func TestPayrollHandler_ProcessBatch(t *testing.T) {
	actorID := uuid.New().String()
	ids := []string{uuid.New().String(), uuid.New().String()}

	batch := &fakeBatchProcessor{
		processBatchFn: func(ctx context.Context, processedBy string, req payroll.BatchPaymentRequest) (payroll.BatchPaymentResult, error) {
			assert.Equal(t, actorID, processedBy)
			assert.Equal(t, ids, req.PayrollIDs)
			return payroll.BatchPaymentResult{
				TotalProcessed:  2,
				SuccessCount:    1,
				FailureCount:    1,
				TotalAmountPaid: money.TRYFromInt(30_000),
				Errors:          []string{"payroll " + ids[1] + ": not found"},
				ProcessedDate:   time.Now().UTC(),
			}, nil
		},
	}

	h := payroll.NewHandler(&fakePayrollService{}, batch)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, err := json.Marshal(payroll.BatchPaymentRequest{PayrollIDs: ids})
	assert.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/batch-payments", strings.NewReader(string(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("employee_id", actorID)

	h.ProcessBatch(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)

	var resp payroll.BatchPaymentResponse
	assert.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 1, resp.SuccessCount)
	assert.Equal(t, "30000.00", resp.TotalAmountPaid)
	assert.Equal(t, "TRY", resp.Currency)
	assert.Len(t, resp.Errors, 1)
}

func TestPayrollHandler_Payslip(t *testing.T) {
	id := uuid.New().String()

	t.Run("request accepted", func(t *testing.T) {
		svc := &fakePayrollService{
			requestPayslipFn: func(ctx context.Context, actorID, pid string) error {
				assert.Equal(t, id, pid)
				return nil
			},
		}

		h := payroll.NewHandler(svc, &fakeBatchProcessor{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/"+id+"/payslip", nil)
		c.Params = []gin.Param{{Key: "id", Value: id}}
		c.Set("employee_id", uuid.New().String())

		h.RequestPayslip(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("get not generated", func(t *testing.T) {
		svc := &fakePayrollService{
			getPayslipFn: func(ctx context.Context, pid string) (payroll.PayslipResponse, error) {
				return payroll.PayslipResponse{}, payrollerrors.ErrPayslipNotGenerated
			},
		}

		h := payroll.NewHandler(svc, &fakeBatchProcessor{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/payrolls/"+id+"/payslip", nil)
		c.Params = []gin.Param{{Key: "id", Value: id}}

		h.GetPayslip(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}
