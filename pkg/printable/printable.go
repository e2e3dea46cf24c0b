// Package printable renders the documents the portal lets users download:
// the official enrollment form for a student and the class list roster.
package printable

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

const schoolName = "Don Bosco Technical College"

// EnrollmentForm renders the printable enrollment form for a fully enrolled
// student: personal details, guardian information, and the assigned subjects.
func EnrollmentForm(student *models.Student, subjects []models.EnrolledSubject) ([]byte, error) {
	if student == nil {
		return nil, fmt.Errorf("enrollment form requires a student")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, schoolName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "Official Enrollment Form", "", 1, "C", false, 0, "")
	if student.SchoolYear != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("School Year %s - %s", student.SchoolYear, student.Semester), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	sectionTitle(pdf, "Student Information")
	field(pdf, "Student Number", student.StudentNumber)
	field(pdf, "Name", student.FullName())
	field(pdf, "Grade Level", student.GradeLevelToEnroll)
	field(pdf, "Strand", student.Strand)
	field(pdf, "Enrollment Type", strings.ReplaceAll(student.EnrollmentType, "_", " "))
	field(pdf, "Birthday", student.Birthday)
	field(pdf, "Sex", student.Sex)
	field(pdf, "LRN", student.LRNLearnerRefNo)
	field(pdf, "Email", student.Email)
	pdf.Ln(4)

	sectionTitle(pdf, "Parent / Guardian")
	field(pdf, "Father", student.FatherFullName)
	field(pdf, "Mother", student.MotherFullName)
	field(pdf, "Guardian", student.GuardianFullName)
	field(pdf, "Guardian Contact", student.GuardianContact)
	pdf.Ln(4)

	sectionTitle(pdf, "Assigned Subjects")
	subjectTable(pdf, subjects)

	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(90, 6, "_______________________", "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 6, "_______________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(90, 5, "Student Signature", "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 5, "Registrar", "", 1, "C", false, 0, "")

	return output(pdf)
}

// ClassList renders the roster of enrolled students for one strand and grade
// level.
func ClassList(strand, gradeLevel, semester string, students []models.Student) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, schoolName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	title := fmt.Sprintf("Class List - %s %s", strand, gradeLevel)
	if semester != "" {
		title += " (" + semester + ")"
	}
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(12, 8, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Student No.", "1", 0, "C", false, 0, "")
	pdf.CellFormat(88, 8, "Name", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Contact", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, s := range students {
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, s.StudentNumber, "1", 0, "", false, 0, "")
		pdf.CellFormat(88, 7, s.FullName(), "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, s.GuardianContact, "1", 1, "", false, 0, "")
	}
	if len(students) == 0 {
		pdf.CellFormat(180, 7, "No enrolled students", "1", 1, "C", false, 0, "")
	}

	return output(pdf)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, title, "B", 1, "", false, 0, "")
	pdf.Ln(1)
}

func field(pdf *gofpdf.Fpdf, label, value string) {
	if value == "" {
		value = "-"
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(45, 6, label+":", "", 0, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, value, "", 1, "", false, 0, "")
}

func subjectTable(pdf *gofpdf.Fpdf, subjects []models.EnrolledSubject) {
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(30, 7, "Code", "1", 0, "C", false, 0, "")
	pdf.CellFormat(90, 7, "Subject", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 7, "Units", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, "Schedule", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	total := 0
	for _, s := range subjects {
		pdf.CellFormat(30, 6, s.SubjectCode, "1", 0, "", false, 0, "")
		pdf.CellFormat(90, 6, s.SubjectName, "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", s.Units), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, s.Schedule, "1", 1, "", false, 0, "")
		total += s.Units
	}
	if len(subjects) == 0 {
		pdf.CellFormat(180, 6, "No subjects assigned yet", "1", 1, "C", false, 0, "")
		return
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(120, 6, "Total Units", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 6, fmt.Sprintf("%d", total), "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "", "1", 1, "", false, 0, "")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
