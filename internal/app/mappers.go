package app

import (
	"review_mapper/internal/domain"
)

// ReviewView is the read model handed to transports.
type ReviewView struct {
	ID           int64  `json:"id" yaml:"id"`
	Year         int    `json:"year" yaml:"year"`
	Summary      string `json:"summary" yaml:"summary"`
	EmployeeID   int64  `json:"employee_id" yaml:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty" yaml:"employee_name,omitempty"`
}

// CreateReview carries the fields of a new review.
type CreateReview struct {
	Year       int    `json:"year"`
	Summary    string `json:"summary"`
	EmployeeID int64  `json:"employee_id"`
}

// UpdateReview is a patch; nil fields are left alone.
type UpdateReview struct {
	Year       *int    `json:"year,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	EmployeeID *int64  `json:"employee_id,omitempty"`
}

func (u UpdateReview) Empty() bool {
	return u.Year == nil && u.Summary == nil && u.EmployeeID == nil
}

func toView(r *domain.Review) ReviewView {
	row := r.Row()
	v := ReviewView{ID: row.ID, Year: row.Year, Summary: row.Summary, EmployeeID: row.EmployeeID}
	if e := r.Employee(); e != nil {
		v.EmployeeName = e.Name
	}
	return v
}

func toViews(rs []*domain.Review) []ReviewView {
	out := make([]ReviewView, 0, len(rs))
	for _, r := range rs {
		out = append(out, toView(r))
	}
	return out
}
