// Package enrollment derives what a student sees from their application
// state. Derivation is pure: the banner, the form lock, and the progress
// stepper are all recomputed from the server-supplied fields on every render.
package enrollment

import "github.com/dbtc-edu/enrollment-portal/internal/models"

// ViewKind names the single banner/state a student dashboard shows.
type ViewKind int

const (
	// ViewApplying: nothing submitted yet, the form is open.
	ViewApplying ViewKind = iota
	// ViewDenied: application denied; reason shown, full re-edit allowed.
	ViewDenied
	// ViewLocked: submitted and under review (or approved); form read-only.
	ViewLocked
	// ViewAwaitPayment: approved, tuition not yet paid; upload call to action.
	ViewAwaitPayment
	// ViewAwaitVerification: receipt uploaded, registrar has not verified it.
	ViewAwaitVerification
	// ViewAwaitAssignment: payment verified, no subjects assigned yet.
	ViewAwaitAssignment
	// ViewEnrolled: fully enrolled; subjects table and printable form.
	ViewEnrolled
)

// Input is the server state the derivation runs on.
type Input struct {
	Status        string
	PaymentStatus string
	HasSubjects   bool
	// HasSubmitted (first and last name present) drives the form lock.
	HasSubmitted bool
	// HasApplied (first name present) is the looser predicate the progress
	// stepper counts as "applied".
	HasApplied bool
}

// View is the derived student-facing state.
type View struct {
	Kind ViewKind
	// Editable reports whether the application form accepts changes.
	Editable bool
	// DenialReason / RejectionReason are carried through for display.
	DenialReason    string
	RejectionReason string
}

// InputFor builds an Input from a profile and its assignments.
func InputFor(profile *models.Student, subjects []models.EnrolledSubject) Input {
	in := Input{}
	if profile != nil {
		in.Status = profile.Status
		in.PaymentStatus = profile.PaymentStatus
		in.HasSubmitted = profile.HasSubmitted()
		in.HasApplied = profile.FirstName != ""
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = models.PaymentUnpaid
	}
	in.HasSubjects = len(subjects) > 0
	return in
}

// Derive resolves the view state. Priority order, first match wins:
// denied, locked-under-review, awaiting payment, awaiting verification,
// awaiting assignment, enrolled.
func Derive(in Input) View {
	if in.Status == models.StatusDenied {
		return View{Kind: ViewDenied, Editable: true}
	}

	approved := in.Status == models.StatusApproved
	locked := (in.Status == models.StatusPending || approved) && in.HasSubmitted

	if approved {
		switch in.PaymentStatus {
		case models.PaymentUnpaid, "":
			return View{Kind: ViewAwaitPayment, Editable: !locked}
		case models.PaymentPendingVerification:
			return View{Kind: ViewAwaitVerification, Editable: !locked}
		case models.PaymentVerified:
			if !in.HasSubjects {
				return View{Kind: ViewAwaitAssignment, Editable: !locked}
			}
			return View{Kind: ViewEnrolled, Editable: !locked}
		}
	}

	if locked {
		return View{Kind: ViewLocked, Editable: false}
	}

	return View{Kind: ViewApplying, Editable: true}
}

// DeriveFor is Derive plus the reason strings screens display.
func DeriveFor(profile *models.Student, subjects []models.EnrolledSubject) View {
	v := Derive(InputFor(profile, subjects))
	if profile != nil {
		v.DenialReason = profile.DenialReason
		v.RejectionReason = profile.PaymentRejectionReason
	}
	return v
}
