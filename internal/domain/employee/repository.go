package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetActive returns employees eligible for sweeps and payroll runs.
	GetActive(ctx context.Context) ([]Employee, error)
}

type SalaryStructureRepository interface {
	// GetByEmployeeID returns the structure effective for the employee,
	// ErrSalaryStructureNotFound when none exists.
	GetByEmployeeID(ctx context.Context, employeeID string) (SalaryStructure, error)
}
