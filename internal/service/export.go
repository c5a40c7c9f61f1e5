package service

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/org-admin/internal/domain"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

const exportSheet = "Employees"

var exportHeader = []interface{}{
	"First Name", "Last Name", "Email", "Phone", "Job Title", "Department",
	"Supervisor", "Salary", "Hire Date", "Country", "State", "City", "Status",
}

// Export renders every employee matching q as an xlsx workbook.
func (s *EmployeeService) Export(ctx context.Context, q EmployeeQuery) ([]byte, error) {
	items, err := s.ListAll(ctx, q)
	if err != nil {
		return nil, err
	}
	data, err := employeesWorkbook(items)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return data, nil
}

func employeesWorkbook(items []domain.Employee) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, emp := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := exportRow(emp)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "M", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportRow(emp domain.Employee) []interface{} {
	department, supervisor, salary := "", "", ""
	if emp.Department != nil {
		department = emp.Department.Name
	}
	if emp.Supervisor != nil {
		supervisor = emp.Supervisor.FullName()
	}
	if emp.Salary != nil {
		salary = emp.Salary.StringFixed(2)
	}
	return []interface{}{
		emp.FirstName,
		emp.LastName,
		emp.Email,
		emp.Phone,
		emp.JobTitle,
		department,
		supervisor,
		salary,
		emp.HireDate.Format("2006-01-02"),
		emp.Location.Country,
		emp.Location.State,
		emp.Location.City,
		string(emp.Status),
	}
}
