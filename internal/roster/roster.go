// Package roster manages the student table: single adds, bulk imports from
// CSV or XLSX uploads, and deletions.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"classlink-portal/internal/models"
	"classlink-portal/internal/pagination"
	"classlink-portal/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// StudentInput is a normalised add request.
type StudentInput struct {
	Name            string `validate:"required,max=200"`
	AdmissionNumber string `validate:"required,max=100"`
	ClassName       string `validate:"max=100"`
}

// ImportSummary counts what happened to each row of an upload.
type ImportSummary struct {
	Rows     int
	Inserted int
	Skipped  int
	Rejected int
	Short    int
	Header   bool
}

type StudentPage struct {
	Students []*models.Student
	Meta     pagination.Meta
}

type Manager struct {
	store    *models.Store
	validate *validator.Validate
}

func NewManager(store *models.Store) *Manager {
	return &Manager{store: store, validate: validator.New()}
}

// AddStudent inserts one student. An admission number that already exists
// yields SkippedDuplicate and a nil error.
func (m *Manager) AddStudent(ctx context.Context, name, admissionNumber, className string) (models.InsertResult, error) {
	in := StudentInput{
		Name:            util.NormalizeField(name),
		AdmissionNumber: util.NormalizeField(admissionNumber),
		ClassName:       util.NormalizeField(className),
	}
	if err := m.validateInput(in); err != nil {
		return models.Rejected, err
	}

	res, err := m.store.InsertStudent(ctx, &models.Student{
		Name:            in.Name,
		AdmissionNumber: in.AdmissionNumber,
		ClassName:       in.ClassName,
	})
	if err != nil {
		return res, err
	}

	entry := logrus.WithFields(logrus.Fields{
		"admission_number": in.AdmissionNumber,
		"class_name":       in.ClassName,
	})
	if res == models.SkippedDuplicate {
		entry.Info("Duplicate admission number skipped")
	} else {
		entry.Info("Student added")
	}
	return res, nil
}

func (m *Manager) validateInput(in StudentInput) error {
	err := m.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := "is invalid"
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "max":
			msg = "is too long"
		}
		return models.NewValidationError(fieldName(fe.Field()), msg)
	}
	return models.NewValidationError("", err.Error())
}

func fieldName(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "AdmissionNumber":
		return "admission_number"
	case "ClassName":
		return "class_name"
	}
	return strings.ToLower(structField)
}

// ImportFile picks the parser from the upload's file extension.
func (m *Manager) ImportFile(ctx context.Context, filename string, r io.Reader) (ImportSummary, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return m.ImportXLSX(ctx, r)
	}
	return m.ImportCSV(ctx, r)
}

// ImportCSV reads rows of name, admission number, class name. Every row is
// attempted independently: short rows are skipped, rows that fail to parse or
// are not valid UTF-8 are rejected, duplicates skipped. Store failures do not stop the import; they are
// returned together once every row has been attempted.
func (m *Manager) ImportCSV(ctx context.Context, r io.Reader) (ImportSummary, error) {
	var summary ImportSummary
	var storeErrs []error

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	// Quotes inside unquoted fields are kept as text: Ada "Ace" Obi is a name.
	reader.LazyQuotes = true

	for first := true; ; first = false {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				summary.Rows++
				summary.Rejected++
				logrus.WithError(err).Warn("Malformed CSV row rejected")
				continue
			}
			return summary, fmt.Errorf("failed to read csv: %w", err)
		}
		if err := m.importRow(ctx, &summary, record, first); err != nil {
			storeErrs = append(storeErrs, err)
		}
	}

	logSummary("csv", summary)
	return summary, errors.Join(storeErrs...)
}

// ImportXLSX applies the CSV row rules to the first sheet of a workbook.
func (m *Manager) ImportXLSX(ctx context.Context, r io.Reader) (ImportSummary, error) {
	var summary ImportSummary

	f, err := excelize.OpenReader(r)
	if err != nil {
		return summary, models.NewValidationError("file", "is not a readable xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return summary, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return summary, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	var storeErrs []error
	for i, row := range rows {
		if err := m.importRow(ctx, &summary, row, i == 0); err != nil {
			storeErrs = append(storeErrs, err)
		}
	}

	logSummary("xlsx", summary)
	return summary, errors.Join(storeErrs...)
}

func (m *Manager) importRow(ctx context.Context, summary *ImportSummary, record []string, first bool) error {
	summary.Rows++
	if len(record) < 3 {
		summary.Short++
		return nil
	}
	if !util.ValidText(record[0], record[1], record[2]) {
		summary.Rejected++
		logrus.WithField("row", summary.Rows).Warn("Row with invalid UTF-8 rejected")
		return nil
	}
	if first && isHeader(record) {
		summary.Header = true
		return nil
	}

	res, err := m.AddStudent(ctx, record[0], record[1], record[2])
	switch {
	case err != nil && models.IsValidationError(err):
		summary.Rejected++
		logrus.WithField("row", summary.Rows).WithError(err).Debug("Row rejected")
		return nil
	case err != nil:
		summary.Rejected++
		return fmt.Errorf("row %d: %w", summary.Rows, err)
	case res == models.SkippedDuplicate:
		summary.Skipped++
	default:
		summary.Inserted++
	}
	return nil
}

func isHeader(record []string) bool {
	name := strings.ToLower(util.NormalizeField(record[0]))
	admission := strings.ToLower(util.NormalizeField(record[1]))
	return name == "name" && strings.Contains(admission, "admission")
}

func logSummary(format string, s ImportSummary) {
	logrus.WithFields(logrus.Fields{
		"format":   format,
		"rows":     s.Rows,
		"inserted": s.Inserted,
		"skipped":  s.Skipped,
		"rejected": s.Rejected,
		"short":    s.Short,
	}).Info("Roster import finished")
}

// DeleteStudent removes the student with the given admission number. A
// missing student is not an error.
func (m *Manager) DeleteStudent(ctx context.Context, admissionNumber string) (int64, error) {
	admissionNumber = util.NormalizeField(admissionNumber)
	n, err := m.store.DeleteStudentByAdmission(ctx, admissionNumber)
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{"admission_number": admissionNumber, "deleted": n}).Info("Student delete")
	return n, nil
}

func (m *Manager) DeleteAllStudents(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteAllStudents(ctx)
	if err != nil {
		return 0, err
	}
	logrus.WithField("deleted", n).Info("All students deleted")
	return n, nil
}

// ListStudents returns one page of students, filtered by class when className is set.
func (m *Manager) ListStudents(ctx context.Context, className string, p pagination.Params) (*StudentPage, error) {
	total, err := m.store.CountStudents(ctx, className)
	if err != nil {
		return nil, err
	}
	students, err := m.store.ListStudents(ctx, className, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return &StudentPage{Students: students, Meta: pagination.BuildMeta(total, p)}, nil
}
