package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/payroll"
	"github.com/kenzahr/workforce-ledger-go/internal/handler/http/response"
)

type PayrollHandler interface {
	Compute(w http.ResponseWriter, r *http.Request)
	RequestApproval(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	ListEntries(w http.ResponseWriter, r *http.Request)
	GetEntry(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.Service
}

func NewPayrollHandler(payrollService payroll.Service) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

// Compute implements PayrollHandler.
func (h *payrollHandlerImpl) Compute(w http.ResponseWriter, r *http.Request) {
	var req payroll.ComputeRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	run, err := h.payrollService.ComputeRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run computed", run)
}

// RequestApproval implements PayrollHandler.
func (h *payrollHandlerImpl) RequestApproval(w http.ResponseWriter, r *http.Request) {
	var req payroll.RequestApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	run, err := h.payrollService.RequestApproval(r.Context(), chi.URLParam(r, "id"), req.ApproverIDs)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval requested", run)
}

// MarkPaid implements PayrollHandler.
func (h *payrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	run, err := h.payrollService.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run marked paid", run)
}

// GetRun implements PayrollHandler.
func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.payrollService.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, run)
}

// ListRuns implements PayrollHandler.
func (h *payrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	var year *int
	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = &y
		}
	}

	runs, err := h.payrollService.ListRuns(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, runs)
}

// ListEntries implements PayrollHandler.
func (h *payrollHandlerImpl) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.payrollService.ListEntries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}

// GetEntry implements PayrollHandler.
func (h *payrollHandlerImpl) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.payrollService.GetEntry(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entry)
}
