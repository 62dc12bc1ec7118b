package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrNotPersisted         = errors.New("review has not been saved")
	ErrValidation           = errors.New("validation failed")
	ErrReferentialIntegrity = errors.New("referential integrity violated")
)

// ValidationError is returned by Review setters and constructors. It never
// reaches the database layer.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReferentialIntegrityError means a stored review points at an employee that
// no longer exists.
type ReferentialIntegrityError struct {
	ReviewID   int64
	EmployeeID int64
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("review %d: employee %d not found", e.ReviewID, e.EmployeeID)
}

func (e *ReferentialIntegrityError) Is(target error) bool { return target == ErrReferentialIntegrity }
