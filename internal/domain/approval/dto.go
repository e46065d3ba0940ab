package approval

// DecisionRequest carries the optional comment on an approve or reject. The
// acting approver is always the authenticated caller, never a body field.
type DecisionRequest struct {
	Comments *string `json:"comments,omitempty"`
}
