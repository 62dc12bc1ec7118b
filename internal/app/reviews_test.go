package app_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"review_mapper/internal/app"
	"review_mapper/internal/domain"
	"review_mapper/internal/storage/sqldb"
)

// ---- fixtures ----

func newService(t *testing.T) (*app.ReviewService, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	db, d, err := sqldb.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT, job_title TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO employees (id, name, job_title) VALUES (1, 'Lee', 'Manager'), (2, 'Ana', 'Engineer')`)
	require.NoError(t, err)

	employees := sqldb.NewEmployeeLookup(db)
	svc := app.NewReviewService(sqldb.New(db, d, employees), employees)
	require.NoError(t, svc.CreateSchema(ctx))
	return svc, db
}

func ptr[T any](v T) *T { return &v }

// ---- tests ----

func TestReviewService_CreateGetList(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, app.CreateReview{Year: 2023, Summary: "Great performance", EmployeeID: 1})
	require.NoError(t, err)
	require.Equal(t, app.ReviewView{ID: 1, Year: 2023, Summary: "Great performance", EmployeeID: 1, EmployeeName: "Lee"}, v)

	got, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, v, got)

	_, err = svc.Create(ctx, app.CreateReview{Year: 2024, Summary: "  Steady  ", EmployeeID: 2})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Steady", all[1].Summary)
	require.Equal(t, "Ana", all[1].EmployeeName)
}

func TestReviewService_CreateRejectsUnknownEmployee(t *testing.T) {
	svc, _ := newService(t)

	for _, id := range []int64{0, 77} {
		_, err := svc.Create(context.Background(), app.CreateReview{Year: 2023, Summary: "ok", EmployeeID: id})
		require.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestReviewService_UpdateIsAllOrNothing(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, app.CreateReview{Year: 2023, Summary: "Great performance", EmployeeID: 1})
	require.NoError(t, err)

	_, err = svc.Update(ctx, v.ID, app.UpdateReview{Year: ptr(2025), Summary: ptr("   ")})
	require.ErrorIs(t, err, domain.ErrValidation)
	got, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, 2023, got.Year)

	_, err = svc.Update(ctx, v.ID, app.UpdateReview{Year: ptr(2025), EmployeeID: ptr(int64(9))})
	require.ErrorIs(t, err, domain.ErrValidation)

	up, err := svc.Update(ctx, v.ID, app.UpdateReview{Year: ptr(2025), EmployeeID: ptr(int64(2))})
	require.NoError(t, err)
	require.Equal(t, 2025, up.Year)
	require.Equal(t, "Great performance", up.Summary)
	require.Equal(t, int64(2), up.EmployeeID)

	var empID int64
	require.NoError(t, db.QueryRow(`SELECT employee_id FROM reviews WHERE id = ?`, v.ID).Scan(&empID))
	require.Equal(t, int64(2), empID)
}

// failingSave lets every call through to the mapper except Save, which
// keeps the instance it was handed and reports an error.
type failingSave struct {
	domain.ReviewRepository
	saved *domain.Review
}

var errSaveFailed = errors.New("connection lost")

func (f *failingSave) Save(_ context.Context, r *domain.Review) error {
	f.saved = r
	return errSaveFailed
}

func TestReviewService_UpdateRestoresOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	db, d, err := sqldb.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT, job_title TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO employees (id, name, job_title) VALUES (1, 'Lee', 'Manager'), (2, 'Ana', 'Engineer')`)
	require.NoError(t, err)

	employees := sqldb.NewEmployeeLookup(db)
	repo := &failingSave{ReviewRepository: sqldb.New(db, d, employees)}
	svc := app.NewReviewService(repo, employees)
	require.NoError(t, svc.CreateSchema(ctx))

	v, err := svc.Create(ctx, app.CreateReview{Year: 2023, Summary: "Great performance", EmployeeID: 1})
	require.NoError(t, err)

	_, err = svc.Update(ctx, v.ID, app.UpdateReview{Year: ptr(2025), Summary: ptr("Changed"), EmployeeID: ptr(int64(2))})
	require.ErrorIs(t, err, errSaveFailed)

	r := repo.saved
	require.NotNil(t, r)
	require.Equal(t, 2023, r.Year())
	require.Equal(t, "Great performance", r.Summary())
	require.Equal(t, int64(1), r.Employee().ID)
}

func TestReviewService_Delete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, app.CreateReview{Year: 2023, Summary: "Great performance", EmployeeID: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, v.ID))
	_, err = svc.Get(ctx, v.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, v.ID), domain.ErrNotFound)
}

func TestReviewService_ConcurrentCallers(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := svc.Create(ctx, app.CreateReview{Year: 2020 + i, Summary: "parallel", EmployeeID: 1})
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			if _, err := svc.Get(ctx, v.ID); err != nil {
				t.Errorf("get: %v", err)
			}
		}(i)
	}
	wg.Wait()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 8)
}
