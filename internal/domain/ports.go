package domain

import "context"

// EmployeeFinder is the only thing reviews need from the employee store.
// FindByID returns ErrNotFound when the id does not exist.
type EmployeeFinder interface {
	FindByID(ctx context.Context, id int64) (*Employee, error)
}

type ReviewRepository interface {
	CreateTable(ctx context.Context) error
	DropTable(ctx context.Context) error

	Create(ctx context.Context, year int, summary string, emp *Employee) (*Review, error)
	Save(ctx context.Context, r *Review) error
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, r *Review) error

	FindByID(ctx context.Context, id int64) (*Review, error)
	GetAll(ctx context.Context) ([]*Review, error)
}

// RowCache holds raw review rows keyed by id. Implementations report a miss
// with ok=false and a nil error.
type RowCache interface {
	GetRow(ctx context.Context, id int64) (row ReviewRow, ok bool, err error)
	SetRow(ctx context.Context, row ReviewRow) error
	DelRow(ctx context.Context, id int64) error
	// Flush drops every cached row.
	Flush(ctx context.Context) error
}
