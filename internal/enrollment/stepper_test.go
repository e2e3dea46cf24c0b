package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

func TestSteps(t *testing.T) {
	tests := []struct {
		name       string
		in         Input
		wantActive int
		wantDone   [5]bool
	}{
		{
			name:       "nothing done activates apply",
			in:         Input{Status: models.StatusPending},
			wantActive: 0,
			wantDone:   [5]bool{},
		},
		{
			name:       "submitted activates approval",
			in:         Input{Status: models.StatusPending, HasSubmitted: true, HasApplied: true},
			wantActive: 1,
			wantDone:   [5]bool{true, false, false, false, false},
		},
		{
			name:       "approved activates payment",
			in:         Input{Status: models.StatusApproved, PaymentStatus: models.PaymentUnpaid, HasSubmitted: true, HasApplied: true},
			wantActive: 2,
			wantDone:   [5]bool{true, true, false, false, false},
		},
		{
			name:       "uploaded receipt activates verification",
			in:         Input{Status: models.StatusApproved, PaymentStatus: models.PaymentPendingVerification, HasSubmitted: true, HasApplied: true},
			wantActive: 3,
			wantDone:   [5]bool{true, true, true, false, false},
		},
		{
			name:       "verified activates enrollment",
			in:         Input{Status: models.StatusApproved, PaymentStatus: models.PaymentVerified, HasSubmitted: true, HasApplied: true},
			wantActive: 4,
			wantDone:   [5]bool{true, true, true, true, false},
		},
		{
			name:       "fully enrolled clamps at the last step",
			in:         Input{Status: models.StatusApproved, PaymentStatus: models.PaymentVerified, HasSubmitted: true, HasApplied: true, HasSubjects: true},
			wantActive: 4,
			wantDone:   [5]bool{true, true, true, true, true},
		},
		{
			name:       "denied after submitting keeps approval active",
			in:         Input{Status: models.StatusDenied, HasSubmitted: true, HasApplied: true},
			wantActive: 1,
			wantDone:   [5]bool{true, false, false, false, false},
		},
		{
			name:       "first name alone counts as applied",
			in:         Input{Status: models.StatusPending, HasApplied: true},
			wantActive: 1,
			wantDone:   [5]bool{true, false, false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Steps(tt.in)
			assert.Equal(t, tt.wantActive, p.ActiveIndex)
			for i, step := range p.Steps {
				assert.Equal(t, tt.wantDone[i], step.Done, "step %d done", i)
				assert.Equal(t, StepLabels[i], step.Label)
			}
		})
	}
}

func TestStepsActiveFlagIsExclusive(t *testing.T) {
	p := Steps(Input{Status: models.StatusApproved, PaymentStatus: models.PaymentUnpaid, HasSubmitted: true, HasApplied: true})
	activeCount := 0
	for _, step := range p.Steps {
		if step.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
	assert.True(t, p.Steps[2].Active)
}
