package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"review_mapper/internal/adapters/observability"
	"review_mapper/internal/domain"
)

// Mapper persists Reviews in the reviews table. Every write runs in its own
// transaction and is committed before the call returns. A Mapper does no
// locking; callers sharing one across goroutines must serialise access.
type Mapper struct {
	db        *sql.DB
	dialect   Dialect
	employees domain.EmployeeFinder
	identity  *IdentityMap
	cache     domain.RowCache
	log       zerolog.Logger
}

type Option func(*Mapper)

// WithIdentityMap makes several mappers hand out the same instances.
func WithIdentityMap(im *IdentityMap) Option { return func(m *Mapper) { m.identity = im } }

// WithRowCache puts a read-through cache in front of FindByID.
func WithRowCache(c domain.RowCache) Option { return func(m *Mapper) { m.cache = c } }

func WithLogger(l zerolog.Logger) Option { return func(m *Mapper) { m.log = l } }

func New(db *sql.DB, d Dialect, employees domain.EmployeeFinder, opts ...Option) *Mapper {
	m := &Mapper{db: db, dialect: d, employees: employees, log: zerolog.Nop()}
	for _, o := range opts {
		o(m)
	}
	if m.identity == nil {
		m.identity = NewIdentityMap()
	}
	return m
}

func (m *Mapper) IdentityMap() *IdentityMap { return m.identity }

func (m *Mapper) CreateTable(ctx context.Context) error {
	_, err := m.execCommit(ctx, "create_table", m.dialect.createReviewsSQL)
	if err != nil {
		return fmt.Errorf("create reviews table: %w", err)
	}
	return nil
}

// DropTable also forgets every cached instance and row; none of them exist
// any more.
func (m *Mapper) DropTable(ctx context.Context) error {
	_, err := m.execCommit(ctx, "drop_table", dropReviewsSQL)
	if err != nil {
		return fmt.Errorf("drop reviews table: %w", err)
	}
	m.identity.Reset()
	observability.ObserveIdentity("reset")
	if m.cache != nil {
		if err := m.cache.Flush(ctx); err != nil {
			return fmt.Errorf("drop reviews table: flush row cache: %w", err)
		}
	}
	return nil
}

// Create validates the values and inserts them in one step.
func (m *Mapper) Create(ctx context.Context, year int, summary string, emp *domain.Employee) (*domain.Review, error) {
	r, err := domain.NewReview(ctx, m.employees, year, summary, emp)
	if err != nil {
		return nil, err
	}
	if err := m.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Save inserts an unsaved review and registers it in the identity map.
// A persisted review is updated instead.
func (m *Mapper) Save(ctx context.Context, r *domain.Review) error {
	if r.Persisted() {
		return m.Update(ctx, r)
	}
	row := r.Row()
	res, err := m.execCommit(ctx, "insert", insertReviewSQL, row.Year, row.Summary, row.EmployeeID)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert review: last insert id: %w", err)
	}
	r.AssignID(id)
	m.identity.Put(id, r)
	observability.ObserveIdentity("put")
	m.cacheRow(ctx, r.Row())
	m.log.Debug().Int64("id", id).Int("year", row.Year).Int64("employee_id", row.EmployeeID).Msg("review inserted")
	return nil
}

// Update writes every field of a persisted review. When the row was deleted
// behind the mapper's back it returns domain.ErrNotFound and forgets the id.
func (m *Mapper) Update(ctx context.Context, r *domain.Review) error {
	id, ok := r.ID()
	if !ok {
		return domain.ErrNotPersisted
	}
	row := r.Row()
	res, err := m.execCommit(ctx, "update", updateReviewSQL, row.Year, row.Summary, row.EmployeeID, id)
	if err != nil {
		return fmt.Errorf("update review %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review %d: rows affected: %w", id, err)
	}
	if n == 0 {
		m.forget(ctx, id)
		m.log.Warn().Int64("id", id).Msg("update matched no row")
		return fmt.Errorf("update review %d: %w", id, domain.ErrNotFound)
	}
	m.cacheRow(ctx, row)
	m.log.Debug().Int64("id", id).Msg("review updated")
	return nil
}

// Delete removes the row, forgets the instance and clears its id.
func (m *Mapper) Delete(ctx context.Context, r *domain.Review) error {
	id, ok := r.ID()
	if !ok {
		return domain.ErrNotPersisted
	}
	if _, err := m.execCommit(ctx, "delete", deleteReviewSQL, id); err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	m.forget(ctx, id)
	r.Detach()
	m.log.Debug().Int64("id", id).Msg("review deleted")
	return nil
}

// FindByID returns domain.ErrNotFound when no row has this id, and a
// *domain.ReferentialIntegrityError when the row's employee is gone.
func (m *Mapper) FindByID(ctx context.Context, id int64) (*domain.Review, error) {
	row, ok := m.cachedRow(ctx, id)
	if !ok {
		var err error
		row, err = scanRow(m.db.QueryRowContext(ctx, selectReviewSQL, id))
		if errors.Is(err, sql.ErrNoRows) {
			observability.ObserveDB("select", "not_found")
			return nil, domain.ErrNotFound
		}
		if err != nil {
			observability.ObserveDB("select", "error")
			return nil, fmt.Errorf("find review %d: %w", id, err)
		}
		observability.ObserveDB("select", "ok")
		m.cacheRow(ctx, row)
	}
	return m.hydrate(ctx, row)
}

func (m *Mapper) GetAll(ctx context.Context) ([]*domain.Review, error) {
	rows, err := m.loadRows(ctx)
	if err != nil {
		observability.ObserveDB("select_all", "error")
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	observability.ObserveDB("select_all", "ok")

	out := make([]*domain.Review, 0, len(rows))
	for _, row := range rows {
		r, err := m.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// loadRows reads and closes the result set before any hydration runs; the
// employee lookup needs the same single connection.
func (m *Mapper) loadRows(ctx context.Context) ([]domain.ReviewRow, error) {
	rows, err := m.db.QueryContext(ctx, selectReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReviewRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// hydrate resolves the employee, then refreshes the cached instance in place
// or registers a new one. The latest load wins.
func (m *Mapper) hydrate(ctx context.Context, row domain.ReviewRow) (*domain.Review, error) {
	emp, err := m.resolveEmployee(ctx, row)
	if err != nil {
		return nil, err
	}
	if r, ok := m.identity.Get(row.ID); ok {
		observability.ObserveIdentity("hit")
		if err := r.Refresh(row.Year, row.Summary, emp); err != nil {
			return nil, fmt.Errorf("refresh review %d: %w", row.ID, err)
		}
		return r, nil
	}
	observability.ObserveIdentity("miss")
	r, err := domain.RestoreReview(row.ID, row.Year, row.Summary, emp)
	if err != nil {
		return nil, fmt.Errorf("load review %d: %w", row.ID, err)
	}
	m.identity.Put(row.ID, r)
	observability.ObserveIdentity("put")
	return r, nil
}

func (m *Mapper) resolveEmployee(ctx context.Context, row domain.ReviewRow) (*domain.Employee, error) {
	dangling := &domain.ReferentialIntegrityError{ReviewID: row.ID, EmployeeID: row.EmployeeID}
	if row.EmployeeID == 0 {
		return nil, dangling
	}
	emp, err := m.employees.FindByID(ctx, row.EmployeeID)
	if errors.Is(err, domain.ErrNotFound) {
		m.log.Warn().Int64("id", row.ID).Int64("employee_id", row.EmployeeID).Msg("review references missing employee")
		return nil, dangling
	}
	if err != nil {
		return nil, fmt.Errorf("resolve employee for review %d: %w", row.ID, err)
	}
	return emp, nil
}

func (m *Mapper) execCommit(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	res, err := func() (sql.Result, error) {
		tx, err := m.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		return res, tx.Commit()
	}()
	observability.ObserveDB(op, observability.Result(err))
	return res, err
}

// forget drops id from the identity map and the row cache.
func (m *Mapper) forget(ctx context.Context, id int64) {
	m.identity.Remove(id)
	observability.ObserveIdentity("remove")
	if m.cache != nil {
		if err := m.cache.DelRow(ctx, id); err != nil {
			m.log.Warn().Err(err).Int64("id", id).Msg("row cache delete failed")
		}
	}
}

func (m *Mapper) cachedRow(ctx context.Context, id int64) (domain.ReviewRow, bool) {
	if m.cache == nil {
		return domain.ReviewRow{}, false
	}
	row, ok, err := m.cache.GetRow(ctx, id)
	if err != nil {
		m.log.Warn().Err(err).Int64("id", id).Msg("row cache read failed")
		return domain.ReviewRow{}, false
	}
	return row, ok
}

func (m *Mapper) cacheRow(ctx context.Context, row domain.ReviewRow) {
	if m.cache == nil {
		return
	}
	if err := m.cache.SetRow(ctx, row); err != nil {
		m.log.Warn().Err(err).Int64("id", row.ID).Msg("row cache write failed")
	}
}

type rowScanner interface{ Scan(dest ...any) error }

// scanRow tolerates NULL columns; validation and the employee lookup reject
// the resulting zero values during hydration.
func scanRow(s rowScanner) (domain.ReviewRow, error) {
	var (
		row        domain.ReviewRow
		year       sql.NullInt64
		summary    sql.NullString
		employeeID sql.NullInt64
	)
	if err := s.Scan(&row.ID, &year, &summary, &employeeID); err != nil {
		return domain.ReviewRow{}, err
	}
	row.Year = int(year.Int64)
	row.Summary = summary.String
	row.EmployeeID = employeeID.Int64
	return row, nil
}

var _ domain.ReviewRepository = (*Mapper)(nil)
