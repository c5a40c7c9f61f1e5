package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/org-admin/internal/domain"
)

// EmployeeFilter narrows employee queries. Search and JobTitle are
// case-insensitive regular expressions; the ID fields are equality matches.
// A zero Limit returns every matching row.
type EmployeeFilter struct {
	Search       string
	JobTitle     string
	DepartmentID string
	SupervisorID string
	ExcludeID    string
	Limit        int
	Offset       int
}

// EmployeeRepository encapsulates employee persistence.
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	Update(ctx context.Context, emp *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	Count(ctx context.Context, filter EmployeeFilter) (int64, error)
	DistinctJobTitles(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeSelect = `
        SELECT e.id, e.first_name, e.last_name, e.email, e.phone, e.job_title,
               e.department_id, e.supervisor_id, e.salary::text, e.hire_date,
               e.location_country, e.location_state, e.location_city, e.status,
               e.created_at, e.updated_at,
               d.name, s.first_name, s.last_name
        FROM employees e
        JOIN departments d ON d.id = e.department_id
        LEFT JOIN employees s ON s.id = e.supervisor_id`

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	const query = `
        INSERT INTO employees (first_name, last_name, email, phone, job_title, department_id, supervisor_id,
            salary, hire_date, location_country, location_state, location_city, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8::numeric,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		emp.FirstName,
		emp.LastName,
		emp.Email,
		emp.Phone,
		emp.JobTitle,
		emp.DepartmentID,
		emp.SupervisorID,
		salaryParam(emp.Salary),
		emp.HireDate,
		emp.Location.Country,
		emp.Location.State,
		emp.Location.City,
		emp.Status,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	const query = `
        UPDATE employees SET first_name=$1, last_name=$2, email=$3, phone=$4, job_title=$5,
            department_id=$6, supervisor_id=$7, salary=$8::numeric, hire_date=$9,
            location_country=$10, location_state=$11, location_city=$12, status=$13, updated_at=NOW()
        WHERE id=$14
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		emp.FirstName,
		emp.LastName,
		emp.Email,
		emp.Phone,
		emp.JobTitle,
		emp.DepartmentID,
		emp.SupervisorID,
		salaryParam(emp.Salary),
		emp.HireDate,
		emp.Location.Country,
		emp.Location.State,
		emp.Location.City,
		emp.Status,
		emp.ID,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	emp, err := scanEmployee(r.pool.QueryRow(ctx, employeeSelect+` WHERE e.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return emp, err
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	where, args := employeeWhere(filter)
	query := employeeSelect + where + ` ORDER BY e.last_name, e.first_name, e.id`
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *emp)
	}
	return result, rows.Err()
}

func (r *employeeRepository) Count(ctx context.Context, filter EmployeeFilter) (int64, error) {
	where, args := employeeWhere(filter)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees e`+where, args...).Scan(&n)
	return n, err
}

func (r *employeeRepository) DistinctJobTitles(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT job_title FROM employees ORDER BY job_title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// employeeWhere builds the WHERE clause for filter. It only references the
// employees table (alias e) so it can be shared by List and Count.
func employeeWhere(filter EmployeeFilter) (string, []any) {
	args := []any{}
	clauses := []string{}

	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(e.first_name ~* $%d OR e.last_name ~* $%d OR e.email ~* $%d)", n, n, n))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("e.department_id=$%d", len(args)))
	}
	if filter.JobTitle != "" {
		args = append(args, filter.JobTitle)
		clauses = append(clauses, fmt.Sprintf("e.job_title ~* $%d", len(args)))
	}
	if filter.SupervisorID != "" {
		args = append(args, filter.SupervisorID)
		clauses = append(clauses, fmt.Sprintf("e.supervisor_id=$%d", len(args)))
	}
	if filter.ExcludeID != "" {
		args = append(args, filter.ExcludeID)
		clauses = append(clauses, fmt.Sprintf("e.id<>$%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func salaryParam(salary *decimal.Decimal) *string {
	if salary == nil {
		return nil
	}
	s := salary.String()
	return &s
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		emp            domain.Employee
		salary         *string
		deptName       string
		supFirst       *string
		supLast        *string
		country, state string
		city           string
	)
	if err := row.Scan(
		&emp.ID,
		&emp.FirstName,
		&emp.LastName,
		&emp.Email,
		&emp.Phone,
		&emp.JobTitle,
		&emp.DepartmentID,
		&emp.SupervisorID,
		&salary,
		&emp.HireDate,
		&country,
		&state,
		&city,
		&emp.Status,
		&emp.CreatedAt,
		&emp.UpdatedAt,
		&deptName,
		&supFirst,
		&supLast,
	); err != nil {
		return nil, err
	}

	emp.Location = domain.Location{Country: country, State: state, City: city}
	if salary != nil {
		d, err := decimal.NewFromString(*salary)
		if err != nil {
			return nil, fmt.Errorf("parse salary %q: %w", *salary, err)
		}
		emp.Salary = &d
	}
	emp.Department = &domain.DepartmentRef{ID: emp.DepartmentID, Name: deptName}
	if emp.SupervisorID != nil && supFirst != nil {
		emp.Supervisor = &domain.EmployeeRef{
			ID:        *emp.SupervisorID,
			FirstName: *supFirst,
			LastName:  deref(supLast),
		}
	}
	return &emp, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
