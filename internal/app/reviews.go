package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"review_mapper/internal/domain"
)

// ReviewService is the entry point for transports. The mapper and its
// identity map are not safe for concurrent use, so every call holds mu.
type ReviewService struct {
	mu        sync.Mutex
	repo      domain.ReviewRepository
	employees domain.EmployeeFinder
}

func NewReviewService(r domain.ReviewRepository, employees domain.EmployeeFinder) *ReviewService {
	return &ReviewService{repo: r, employees: employees}
}

func (s *ReviewService) CreateSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.CreateTable(ctx)
}

func (s *ReviewService) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.DropTable(ctx)
}

func (s *ReviewService) Create(ctx context.Context, in CreateReview) (ReviewView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, err := s.employee(ctx, in.EmployeeID)
	if err != nil {
		return ReviewView{}, err
	}
	r, err := s.repo.Create(ctx, in.Year, in.Summary, emp)
	if err != nil {
		return ReviewView{}, err
	}
	return toView(r), nil
}

func (s *ReviewService) Get(ctx context.Context, id int64) (ReviewView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ReviewView{}, err
	}
	return toView(r), nil
}

func (s *ReviewService) List(ctx context.Context) ([]ReviewView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return toViews(rs), nil
}

// Update applies a patch to the shared instance. On any failure, whether a
// rejected field or a failed save, the instance is put back the way it was.
func (s *ReviewService) Update(ctx context.Context, id int64, in UpdateReview) (ReviewView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ReviewView{}, err
	}
	if in.Empty() {
		return toView(r), nil
	}

	var emp *domain.Employee
	if in.EmployeeID != nil {
		if emp, err = s.employee(ctx, *in.EmployeeID); err != nil {
			return ReviewView{}, err
		}
	}

	prevYear, prevSummary, prevEmp := r.Year(), r.Summary(), r.Employee()
	if err := s.apply(ctx, r, in, emp); err != nil {
		restore(r, prevYear, prevSummary, prevEmp)
		return ReviewView{}, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		restore(r, prevYear, prevSummary, prevEmp)
		return ReviewView{}, err
	}
	return toView(r), nil
}

func (s *ReviewService) apply(ctx context.Context, r *domain.Review, in UpdateReview, emp *domain.Employee) error {
	if in.Year != nil {
		if err := r.SetYear(*in.Year); err != nil {
			return err
		}
	}
	if in.Summary != nil {
		if err := r.SetSummary(*in.Summary); err != nil {
			return err
		}
	}
	if emp != nil {
		if err := r.SetEmployee(ctx, s.employees, emp); err != nil {
			return err
		}
	}
	return nil
}

// restore puts back values the instance already held, so Refresh cannot
// reject them.
func restore(r *domain.Review, year int, summary string, emp *domain.Employee) {
	_ = r.Refresh(year, summary, emp)
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, r)
}

// employee resolves an id from a request. Unknown ids are the caller's
// mistake, so they surface as validation errors.
func (s *ReviewService) employee(ctx context.Context, id int64) (*domain.Employee, error) {
	if id == 0 {
		return nil, &domain.ValidationError{Field: "employee", Reason: "must be saved to the database"}
	}
	emp, err := s.employees.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.ValidationError{Field: "employee", Reason: fmt.Sprintf("employee with id %d not found", id)}
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}
