package enrollment

import "github.com/dbtc-edu/enrollment-portal/internal/models"

// StepLabels are the five stages of the enrollment progress indicator.
var StepLabels = [5]string{"Apply", "Approved", "Pay", "Verified", "Enrolled"}

// Step is one rendered stage of the progress indicator.
type Step struct {
	Label  string
	Done   bool
	Active bool
}

// Progress is the computed stepper.
type Progress struct {
	Steps       [5]Step
	ActiveIndex int
}

// Steps computes the progress indicator. A step is done when its completion
// predicate holds; the active step is the one after the last done step,
// clamped to the final step.
func Steps(in Input) Progress {
	done := [5]bool{
		in.HasApplied,
		in.Status == models.StatusApproved,
		in.PaymentStatus != models.PaymentUnpaid && in.PaymentStatus != "",
		in.PaymentStatus == models.PaymentVerified,
		in.HasSubjects,
	}

	lastDone := -1
	for i, d := range done {
		if d {
			lastDone = i
		}
	}
	active := lastDone + 1
	if active > len(done)-1 {
		active = len(done) - 1
	}

	p := Progress{ActiveIndex: active}
	for i := range p.Steps {
		p.Steps[i] = Step{
			Label:  StepLabels[i],
			Done:   done[i],
			Active: !done[i] && i == active,
		}
	}
	return p
}
