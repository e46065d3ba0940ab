package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/approval"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/handler/http/response"
)

type ApprovalHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type approvalHandlerImpl struct {
	engine approval.Engine
}

func NewApprovalHandler(engine approval.Engine) ApprovalHandler {
	return &approvalHandlerImpl{engine: engine}
}

// Get implements ApprovalHandler.
func (h *approvalHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.engine.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, a)
}

// ListPending implements ApprovalHandler. The approver is always the caller;
// nobody browses someone else's queue.
func (h *approvalHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing or invalid token")
		return
	}

	approvals, err := h.engine.ListPendingForApprover(r.Context(), actor.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, approvals)
}

// Approve implements ApprovalHandler.
func (h *approvalHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Reject implements ApprovalHandler.
func (h *approvalHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *approvalHandlerImpl) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing or invalid token")
		return
	}

	var req approval.DecisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	var (
		a   approval.Approval
		err error
	)
	if approve {
		a, err = h.engine.ApproveStep(r.Context(), chi.URLParam(r, "id"), actor.ID, req.Comments)
	} else {
		a, err = h.engine.RejectStep(r.Context(), chi.URLParam(r, "id"), actor.ID, req.Comments)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Decision recorded", a)
}
