package models

import "time"

// Application statuses as served by the upstream API.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// Payment statuses.
const (
	PaymentUnpaid              = "unpaid"
	PaymentPendingVerification = "pending_verification"
	PaymentVerified            = "verified"
)

// Enrollment types.
const (
	EnrollNew        = "NEW_ENROLLEE"
	EnrollTransferee = "TRANSFEREE"
	EnrollReEnrollee = "RE_ENROLLEE"
)

// Transferee credit statuses.
const (
	CreditPending     = "pending"
	CreditCredited    = "credited"
	CreditNotCredited = "not_credited"
)

// TransfereeSubject is one prior-school subject declared by a transferee.
type TransfereeSubject struct {
	SubjectName  string `json:"subject_name"`
	SubjectCode  string `json:"subject_code,omitempty"`
	Units        string `json:"units,omitempty"`
	Grade        string `json:"grade,omitempty"`
	CreditStatus string `json:"credit_status,omitempty"`
}

// Student is the full application record served by the upstream API. The
// portal never persists it; it lives only for the duration of a render.
type Student struct {
	ID             int    `json:"id"`
	UserID         int    `json:"user_id"`
	StudentNumber  string `json:"student_number,omitempty"`
	Status         string `json:"status"`
	EnrollmentType string `json:"enrollment_type,omitempty"`

	// Grade level and school information.
	SchoolYear              string `json:"school_year,omitempty"`
	Semester                string `json:"semester,omitempty"`
	LRN                     string `json:"lrn,omitempty"`
	IsReturningStudent      *bool  `json:"is_returning_student,omitempty"`
	GradeLevelToEnroll      string `json:"grade_level_to_enroll,omitempty"`
	LastGradeLevelCompleted string `json:"last_grade_level_completed,omitempty"`
	LastSchoolYearCompleted string `json:"last_school_year_completed,omitempty"`
	LastSchoolAttended      string `json:"last_school_attended,omitempty"`
	SchoolType              string `json:"school_type,omitempty"`
	Strand                  string `json:"strand,omitempty"`
	SchoolToEnrollIn        string `json:"school_to_enroll_in,omitempty"`
	SchoolAddress           string `json:"school_address,omitempty"`

	// Student information.
	PSABirthCertificateNo string `json:"psa_birth_certificate_no,omitempty"`
	LRNLearnerRefNo       string `json:"lrn_learner_ref_no,omitempty"`
	StudentPhotoPath      string `json:"student_photo_path,omitempty"`
	LastName              string `json:"last_name,omitempty"`
	FirstName             string `json:"first_name,omitempty"`
	MiddleName            string `json:"middle_name,omitempty"`
	Suffix                string `json:"suffix,omitempty"`
	Birthday              string `json:"birthday,omitempty"`
	Age                   *int   `json:"age,omitempty"`
	Sex                   string `json:"sex,omitempty"`
	MotherTongue          string `json:"mother_tongue,omitempty"`
	Religion              string `json:"religion,omitempty"`

	// Address.
	Province         string `json:"province,omitempty"`
	CityMunicipality string `json:"city_municipality,omitempty"`
	Barangay         string `json:"barangay,omitempty"`
	HouseNoStreet    string `json:"house_no_street,omitempty"`
	Region           string `json:"region,omitempty"`

	// Parent / guardian.
	FatherFullName   string `json:"father_full_name,omitempty"`
	FatherContact    string `json:"father_contact,omitempty"`
	MotherFullName   string `json:"mother_full_name,omitempty"`
	MotherContact    string `json:"mother_contact,omitempty"`
	GuardianFullName string `json:"guardian_full_name,omitempty"`
	GuardianContact  string `json:"guardian_contact,omitempty"`

	// Documents.
	DocumentsPath          []string `json:"documents_path,omitempty"`
	GradesPath             string   `json:"grades_path,omitempty"`
	VoucherPath            string   `json:"voucher_path,omitempty"`
	PSABirthCertPath       string   `json:"psa_birth_cert_path,omitempty"`
	TransferCredentialPath string   `json:"transfer_credential_path,omitempty"`
	GoodMoralPath          string   `json:"good_moral_path,omitempty"`

	// Payment.
	PaymentReceiptPath     string     `json:"payment_receipt_path,omitempty"`
	PaymentStatus          string     `json:"payment_status"`
	PaymentVerifiedAt      *time.Time `json:"payment_verified_at,omitempty"`
	PaymentRejectionReason string     `json:"payment_rejection_reason,omitempty"`

	// Enrollment supplement, set on first approval.
	EnrollmentDate string `json:"enrollment_date,omitempty"`
	PlaceOfBirth   string `json:"place_of_birth,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	CivilStatus    string `json:"civil_status,omitempty"`

	DenialReason string `json:"denial_reason,omitempty"`

	TransfereeSubjects []TransfereeSubject `json:"transferee_subjects,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email string `json:"email,omitempty"`
}

// FullName joins the name parts that are present.
func (s *Student) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{s.FirstName, s.MiddleName, s.LastName, s.Suffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	name := parts[0]
	for _, p := range parts[1:] {
		name += " " + p
	}
	return name
}

// HasSubmitted reports whether the application has been submitted at least
// once. The upstream creates a blank record at registration, so presence of a
// name is the submission marker.
func (s *Student) HasSubmitted() bool {
	return s != nil && s.FirstName != "" && s.LastName != ""
}

// StudentList is the paginated admin/registrar list payload.
type StudentList struct {
	Students []Student `json:"students"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
}

// StudentStatus is the lightweight payload of GET /students/me/status.
type StudentStatus struct {
	StudentNumber string `json:"student_number,omitempty"`
	Status        string `json:"status"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	PaymentStatus string `json:"payment_status"`
}

// EnrollmentRecord is one row of a student's enrollment history.
type EnrollmentRecord struct {
	ID            int       `json:"id"`
	SchoolYear    string    `json:"school_year"`
	Semester      string    `json:"semester"`
	GradeLevel    string    `json:"grade_level,omitempty"`
	Strand        string    `json:"strand,omitempty"`
	StudentNumber string    `json:"student_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
