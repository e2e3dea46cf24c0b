package forms

import (
	"strings"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
)

// ApplicationForm is the full enrollment application as posted from the
// profile screen. Everything is optional at the binding level; Validate
// enforces the submission rules.
type ApplicationForm struct {
	EnrollmentType          string `form:"enrollment_type"`
	SchoolYear              string `form:"school_year"`
	Semester                string `form:"semester"`
	LRN                     string `form:"lrn"`
	IsReturningStudent      string `form:"is_returning_student"`
	GradeLevelToEnroll      string `form:"grade_level_to_enroll"`
	LastGradeLevelCompleted string `form:"last_grade_level_completed"`
	LastSchoolYearCompleted string `form:"last_school_year_completed"`
	LastSchoolAttended      string `form:"last_school_attended"`
	SchoolType              string `form:"school_type"`
	Strand                  string `form:"strand"`
	SchoolToEnrollIn        string `form:"school_to_enroll_in"`
	SchoolAddress           string `form:"school_address"`

	PSABirthCertificateNo string `form:"psa_birth_certificate_no"`
	LRNLearnerRefNo       string `form:"lrn_learner_ref_no"`
	LastName              string `form:"last_name"`
	FirstName             string `form:"first_name"`
	MiddleName            string `form:"middle_name"`
	Suffix                string `form:"suffix"`
	Birthday              string `form:"birthday"`
	Sex                   string `form:"sex"`
	MotherTongue          string `form:"mother_tongue"`
	Religion              string `form:"religion"`

	Province         string `form:"province"`
	CityMunicipality string `form:"city_municipality"`
	Barangay         string `form:"barangay"`
	HouseNoStreet    string `form:"house_no_street"`
	Region           string `form:"region"`

	FatherFullName   string `form:"father_full_name"`
	FatherContact    string `form:"father_contact"`
	MotherFullName   string `form:"mother_full_name"`
	MotherContact    string `form:"mother_contact"`
	GuardianFullName string `form:"guardian_full_name"`
	GuardianContact  string `form:"guardian_contact"`

	// Parallel arrays from the transferee subject rows.
	TransfereeSubjectNames  []string `form:"transferee_subject_name"`
	TransfereeSubjectCodes  []string `form:"transferee_subject_code"`
	TransfereeSubjectUnits  []string `form:"transferee_subject_units"`
	TransfereeSubjectGrades []string `form:"transferee_subject_grade"`
}

// requiredFields maps payload keys to the labels shown in the validation
// notice, in display order.
var requiredFields = []struct {
	key   string
	label string
}{
	{"first_name", "First Name"},
	{"last_name", "Last Name"},
	{"enrollment_type", "Enrollment Type"},
	{"grade_level_to_enroll", "Grade Level to Enroll"},
	{"semester", "Semester"},
	{"strand", "Strand"},
	{"birthday", "Birthday"},
	{"sex", "Sex"},
}

// Validate enforces the submission rules: the shared required fields, the
// transferee-specific ones, and at least one named prior subject for
// transferees. A failure here blocks the submission client-side; nothing is
// sent upstream.
func (f *ApplicationForm) Validate() error {
	values := f.fieldValues()

	missing := make([]string, 0)
	for _, rf := range requiredFields {
		if strings.TrimSpace(values[rf.key]) == "" {
			missing = append(missing, rf.label)
		}
	}
	if f.EnrollmentType == models.EnrollTransferee && strings.TrimSpace(f.LastSchoolAttended) == "" {
		missing = append(missing, "Last School Attended")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "Please fill in: "+strings.Join(missing, ", "))
	}

	if f.EnrollmentType == models.EnrollTransferee && len(f.TransfereeSubjects()) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "Please add at least one subject from your previous school")
	}

	return nil
}

// TransfereeSubjects gathers the subject rows, dropping unnamed blanks.
func (f *ApplicationForm) TransfereeSubjects() []models.TransfereeSubject {
	subjects := make([]models.TransfereeSubject, 0, len(f.TransfereeSubjectNames))
	for i, name := range f.TransfereeSubjectNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		subject := models.TransfereeSubject{SubjectName: name, CreditStatus: models.CreditPending}
		if i < len(f.TransfereeSubjectCodes) {
			subject.SubjectCode = strings.TrimSpace(f.TransfereeSubjectCodes[i])
		}
		if i < len(f.TransfereeSubjectUnits) {
			subject.Units = strings.TrimSpace(f.TransfereeSubjectUnits[i])
		}
		if i < len(f.TransfereeSubjectGrades) {
			subject.Grade = strings.TrimSpace(f.TransfereeSubjectGrades[i])
		}
		subjects = append(subjects, subject)
	}
	return subjects
}

// Payload builds the sparse update body: only filled-in fields are sent,
// matching the upstream's partial-update contract.
func (f *ApplicationForm) Payload() map[string]interface{} {
	payload := map[string]interface{}{}
	for key, value := range f.fieldValues() {
		if strings.TrimSpace(value) != "" {
			payload[key] = value
		}
	}
	if f.IsReturningStudent != "" {
		payload["is_returning_student"] = f.IsReturningStudent == "true" || f.IsReturningStudent == "on"
	}
	if subjects := f.TransfereeSubjects(); len(subjects) > 0 {
		payload["transferee_subjects"] = subjects
	}
	return payload
}

func (f *ApplicationForm) fieldValues() map[string]string {
	return map[string]string{
		"enrollment_type":            f.EnrollmentType,
		"school_year":                f.SchoolYear,
		"semester":                   f.Semester,
		"lrn":                        f.LRN,
		"grade_level_to_enroll":      f.GradeLevelToEnroll,
		"last_grade_level_completed": f.LastGradeLevelCompleted,
		"last_school_year_completed": f.LastSchoolYearCompleted,
		"last_school_attended":       f.LastSchoolAttended,
		"school_type":                f.SchoolType,
		"strand":                     f.Strand,
		"school_to_enroll_in":        f.SchoolToEnrollIn,
		"school_address":             f.SchoolAddress,
		"psa_birth_certificate_no":   f.PSABirthCertificateNo,
		"lrn_learner_ref_no":         f.LRNLearnerRefNo,
		"last_name":                  f.LastName,
		"first_name":                 f.FirstName,
		"middle_name":                f.MiddleName,
		"suffix":                     f.Suffix,
		"birthday":                   f.Birthday,
		"sex":                        f.Sex,
		"mother_tongue":              f.MotherTongue,
		"religion":                   f.Religion,
		"province":                   f.Province,
		"city_municipality":          f.CityMunicipality,
		"barangay":                   f.Barangay,
		"house_no_street":            f.HouseNoStreet,
		"region":                     f.Region,
		"father_full_name":           f.FatherFullName,
		"father_contact":             f.FatherContact,
		"mother_full_name":           f.MotherFullName,
		"mother_contact":             f.MotherContact,
		"guardian_full_name":         f.GuardianFullName,
		"guardian_contact":           f.GuardianContact,
	}
}
