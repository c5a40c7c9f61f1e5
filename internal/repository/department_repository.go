package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/org-admin/internal/domain"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	ListWithCounts(ctx context.Context) ([]domain.DepartmentSummary, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, description, location)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Description,
		dept.Location,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, description=$2, location=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Description,
		dept.Location,
		dept.ID,
	).Scan(&dept.CreatedAt, &dept.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	const query = `
        SELECT id, name, description, location, created_at, updated_at
        FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Description,
		&dept.Location,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	const query = `
        SELECT id, name, description, location, created_at, updated_at
        FROM departments ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Description, &dept.Location, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) ListWithCounts(ctx context.Context) ([]domain.DepartmentSummary, error) {
	const query = `
        SELECT d.id, d.name, d.description, d.location, d.created_at, d.updated_at, COUNT(e.id)
        FROM departments d
        LEFT JOIN employees e ON e.department_id = d.id
        GROUP BY d.id
        ORDER BY d.name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DepartmentSummary
	for rows.Next() {
		var s domain.DepartmentSummary
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Description,
			&s.Location,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.EmployeeCount,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *departmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&n)
	return n, err
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
