// Package repotest provides in-memory repository implementations that mimic
// the Postgres repositories closely enough for service and handler tests,
// including unique and foreign-key violations reported as *pgconn.PgError.
package repotest

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/repository"
)

// Store holds every table. Repositories returned by its methods share state.
type Store struct {
	mu          sync.Mutex
	users       map[string]domain.User
	departments map[string]domain.Department
	employees   map[string]domain.Employee
	now         func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:       map[string]domain.User{},
		departments: map[string]domain.Department{},
		employees:   map[string]domain.Employee{},
		now:         time.Now,
	}
}

// Users returns a UserRepository backed by the store.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Departments returns a DepartmentRepository backed by the store.
func (s *Store) Departments() repository.DepartmentRepository { return &departmentRepo{s} }

// Employees returns an EmployeeRepository backed by the store.
func (s *Store) Employees() repository.EmployeeRepository { return &employeeRepo{s} }

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint, Message: "violates foreign key constraint"}
}

func invalidRegex() error {
	return &pgconn.PgError{Code: "2201B", Message: "invalid regular expression"}
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return uniqueViolation("users_email_key")
		}
		if u.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	r.s.users[id] = u
	return nil
}

type departmentRepo struct{ s *Store }

func (r *departmentRepo) nameTaken(name, exceptID string) bool {
	for _, d := range r.s.departments {
		if d.ID != exceptID && strings.EqualFold(d.Name, name) {
			return true
		}
	}
	return false
}

func (r *departmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(dept.Name, "") {
		return uniqueViolation("departments_name_key")
	}
	dept.ID = uuid.NewString()
	dept.CreatedAt = r.s.now()
	dept.UpdatedAt = dept.CreatedAt
	r.s.departments[dept.ID] = *dept
	return nil
}

func (r *departmentRepo) Update(_ context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.departments[dept.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(dept.Name, dept.ID) {
		return uniqueViolation("departments_name_key")
	}
	dept.CreatedAt = existing.CreatedAt
	dept.UpdatedAt = r.s.now()
	r.s.departments[dept.ID] = *dept
	return nil
}

func (r *departmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *departmentRepo) sorted() []domain.Department {
	out := make([]domain.Department, 0, len(r.s.departments))
	for _, d := range r.s.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *departmentRepo) List(_ context.Context) ([]domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(), nil
}

func (r *departmentRepo) ListWithCounts(_ context.Context) ([]domain.DepartmentSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	depts := r.sorted()
	out := make([]domain.DepartmentSummary, 0, len(depts))
	for _, d := range depts {
		var n int64
		for _, e := range r.s.employees {
			if e.DepartmentID == d.ID {
				n++
			}
		}
		out = append(out, domain.DepartmentSummary{Department: d, EmployeeCount: n})
	}
	return out, nil
}

func (r *departmentRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.departments)), nil
}

func (r *departmentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[id]; !ok {
		return repository.ErrNotFound
	}
	for _, e := range r.s.employees {
		if e.DepartmentID == id {
			return foreignKeyViolation("employees_department_id_fkey")
		}
	}
	delete(r.s.departments, id)
	return nil
}

type employeeRepo struct{ s *Store }

func (r *employeeRepo) checkRefs(emp *domain.Employee) error {
	for _, e := range r.s.employees {
		if e.ID != emp.ID && e.Email == emp.Email {
			return uniqueViolation("employees_email_key")
		}
	}
	if _, ok := r.s.departments[emp.DepartmentID]; !ok {
		return foreignKeyViolation("employees_department_id_fkey")
	}
	if emp.SupervisorID != nil {
		if _, ok := r.s.employees[*emp.SupervisorID]; !ok {
			return foreignKeyViolation("employees_supervisor_id_fkey")
		}
	}
	return nil
}

func (r *employeeRepo) Create(_ context.Context, emp *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkRefs(emp); err != nil {
		return err
	}
	emp.ID = uuid.NewString()
	emp.CreatedAt = r.s.now()
	emp.UpdatedAt = emp.CreatedAt
	stored := *emp
	stored.Department, stored.Supervisor = nil, nil
	r.s.employees[emp.ID] = stored
	return nil
}

func (r *employeeRepo) Update(_ context.Context, emp *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.employees[emp.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.checkRefs(emp); err != nil {
		return err
	}
	emp.CreatedAt = existing.CreatedAt
	emp.UpdatedAt = r.s.now()
	stored := *emp
	stored.Department, stored.Supervisor = nil, nil
	r.s.employees[emp.ID] = stored
	return nil
}

func (r *employeeRepo) populate(e domain.Employee) domain.Employee {
	if d, ok := r.s.departments[e.DepartmentID]; ok {
		e.Department = &domain.DepartmentRef{ID: d.ID, Name: d.Name}
	}
	if e.SupervisorID != nil {
		if s, ok := r.s.employees[*e.SupervisorID]; ok {
			e.Supervisor = &domain.EmployeeRef{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName}
		}
	}
	return e
}

func (r *employeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = r.populate(e)
	return &e, nil
}

func (r *employeeRepo) match(filter repository.EmployeeFilter) ([]domain.Employee, error) {
	var search, title *regexp.Regexp
	var err error
	if filter.Search != "" {
		if search, err = regexp.Compile("(?i)" + filter.Search); err != nil {
			return nil, invalidRegex()
		}
	}
	if filter.JobTitle != "" {
		if title, err = regexp.Compile("(?i)" + filter.JobTitle); err != nil {
			return nil, invalidRegex()
		}
	}

	var out []domain.Employee
	for _, e := range r.s.employees {
		if search != nil && !search.MatchString(e.FirstName) && !search.MatchString(e.LastName) && !search.MatchString(e.Email) {
			continue
		}
		if title != nil && !title.MatchString(e.JobTitle) {
			continue
		}
		if filter.DepartmentID != "" && e.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.SupervisorID != "" && (e.SupervisorID == nil || *e.SupervisorID != filter.SupervisorID) {
			continue
		}
		if filter.ExcludeID != "" && e.ID == filter.ExcludeID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *employeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all, err := r.match(filter)
	if err != nil {
		return nil, err
	}
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(all) {
			start = len(all)
		}
		end := start + filter.Limit
		if end > len(all) {
			end = len(all)
		}
		all = all[start:end]
	}
	out := make([]domain.Employee, 0, len(all))
	for _, e := range all {
		out = append(out, r.populate(e))
	}
	return out, nil
}

func (r *employeeRepo) Count(_ context.Context, filter repository.EmployeeFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all, err := r.match(filter)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *employeeRepo) DistinctJobTitles(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]struct{}{}
	var titles []string
	for _, e := range r.s.employees {
		if _, ok := seen[e.JobTitle]; ok {
			continue
		}
		seen[e.JobTitle] = struct{}{}
		titles = append(titles, e.JobTitle)
	}
	sort.Strings(titles)
	return titles, nil
}

func (r *employeeRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return repository.ErrNotFound
	}
	for _, e := range r.s.employees {
		if e.SupervisorID != nil && *e.SupervisorID == id {
			return foreignKeyViolation("employees_supervisor_id_fkey")
		}
	}
	delete(r.s.employees, id)
	return nil
}
