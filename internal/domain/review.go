package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinYear is the earliest year a review may cover.
const MinYear = 2000

var validate = validator.New()

// Review is a yearly performance review of one employee.
// Fields are only reachable through validating setters; id is zero until the
// review is first saved.
type Review struct {
	id       int64
	year     int
	summary  string
	employee *Employee
}

// ReviewRow is the flat shape of a reviews table row.
type ReviewRow struct {
	ID         int64  `json:"id"`
	Year       int    `json:"year"`
	Summary    string `json:"summary"`
	EmployeeID int64  `json:"employee_id"`
}

// NewReview validates every field and returns an unsaved review.
func NewReview(ctx context.Context, employees EmployeeFinder, year int, summary string, emp *Employee) (*Review, error) {
	r := &Review{}
	if err := r.SetYear(year); err != nil {
		return nil, err
	}
	if err := r.SetSummary(summary); err != nil {
		return nil, err
	}
	if err := r.SetEmployee(ctx, employees, emp); err != nil {
		return nil, err
	}
	return r, nil
}

// RestoreReview builds a persisted review from a row whose employee has
// already been resolved by the caller.
func RestoreReview(id int64, year int, summary string, emp *Employee) (*Review, error) {
	r := &Review{}
	if err := r.Refresh(year, summary, emp); err != nil {
		return nil, err
	}
	r.id = id
	return r, nil
}

func (r *Review) ID() (int64, bool)   { return r.id, r.id != 0 }
func (r *Review) Year() int           { return r.year }
func (r *Review) Summary() string     { return r.summary }
func (r *Review) Employee() *Employee { return r.employee }
func (r *Review) Persisted() bool     { return r.id != 0 }

func (r *Review) String() string {
	var empID int64
	if r.employee != nil {
		empID = r.employee.ID
	}
	return fmt.Sprintf("<Review %d: %d, %s, Employee: %d>", r.id, r.year, r.summary, empID)
}

// Row flattens the review for storage.
func (r *Review) Row() ReviewRow {
	row := ReviewRow{ID: r.id, Year: r.year, Summary: r.summary}
	if r.employee != nil {
		row.EmployeeID = r.employee.ID
	}
	return row
}

func (r *Review) SetYear(year int) error {
	if err := ValidateYear(year); err != nil {
		return err
	}
	r.year = year
	return nil
}

func (r *Review) SetSummary(summary string) error {
	s, err := NormalizeSummary(summary)
	if err != nil {
		return err
	}
	r.summary = s
	return nil
}

// SetEmployee re-fetches emp through employees; a locally valid but deleted
// employee is rejected.
func (r *Review) SetEmployee(ctx context.Context, employees EmployeeFinder, emp *Employee) error {
	if err := checkEmployeeRef(emp); err != nil {
		return err
	}
	if _, err := employees.FindByID(ctx, emp.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ValidationError{Field: "employee", Reason: fmt.Sprintf("employee with id %d not found", emp.ID)}
		}
		return fmt.Errorf("lookup employee %d: %w", emp.ID, err)
	}
	r.employee = emp
	return nil
}

// Refresh overwrites all fields at once. emp must come from a fresh lookup.
// Nothing is changed when any value is invalid.
func (r *Review) Refresh(year int, summary string, emp *Employee) error {
	if err := ValidateYear(year); err != nil {
		return err
	}
	s, err := NormalizeSummary(summary)
	if err != nil {
		return err
	}
	if err := checkEmployeeRef(emp); err != nil {
		return err
	}
	r.year, r.summary, r.employee = year, s, emp
	return nil
}

// AssignID records the database-assigned key after an insert.
func (r *Review) AssignID(id int64) { r.id = id }

// Detach clears the id after the row is deleted.
func (r *Review) Detach() { r.id = 0 }

func ValidateYear(year int) error {
	if err := validate.Var(year, fmt.Sprintf("gte=%d", MinYear)); err != nil {
		return &ValidationError{Field: "year", Reason: fmt.Sprintf("must be an integer >= %d", MinYear)}
	}
	return nil
}

// NormalizeSummary trims summary and rejects it when nothing is left.
func NormalizeSummary(summary string) (string, error) {
	s := strings.TrimSpace(summary)
	if err := validate.Var(s, "required"); err != nil {
		return "", &ValidationError{Field: "summary", Reason: "must be a non-empty string"}
	}
	return s, nil
}

func checkEmployeeRef(emp *Employee) error {
	if emp == nil {
		return &ValidationError{Field: "employee", Reason: "must be an Employee"}
	}
	if emp.ID == 0 {
		return &ValidationError{Field: "employee", Reason: "must be saved to the database"}
	}
	return nil
}
