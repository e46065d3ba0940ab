package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	t.Parallel()

	steps := func(statuses ...StepStatus) []Step {
		out := make([]Step, len(statuses))
		for i, s := range statuses {
			out[i] = Step{StepOrder: i, Status: s}
		}
		return out
	}

	tests := []struct {
		name        string
		steps       []Step
		wantStatus  Status
		wantCurrent int
	}{
		{"all pending", steps(StepPending, StepPending), StatusPending, 0},
		{"first approved", steps(StepApproved, StepPending), StatusPending, 1},
		{"all approved", steps(StepApproved, StepApproved), StatusApproved, 2},
		{"rejection is terminal", steps(StepApproved, StepRejected, StepPending), StatusRejected, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, current := Derive(tt.steps)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCurrent, current)
		})
	}
}
