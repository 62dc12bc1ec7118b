package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"review_mapper/internal/domain"
)

// EmployeeLookup is a read-only view of the employees table. Employee
// persistence belongs to another component.
type EmployeeLookup struct{ db *sql.DB }

func NewEmployeeLookup(db *sql.DB) *EmployeeLookup { return &EmployeeLookup{db: db} }

func (l *EmployeeLookup) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var (
		e        domain.Employee
		name     sql.NullString
		jobTitle sql.NullString
	)
	err := l.db.QueryRowContext(ctx, selectEmployeeSQL, id).Scan(&e.ID, &name, &jobTitle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find employee %d: %w", id, err)
	}
	e.Name = name.String
	e.JobTitle = jobTitle.String
	return &e, nil
}
