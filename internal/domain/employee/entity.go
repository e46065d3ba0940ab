package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	UserID           *string
	FullName         string
	EmployeeCode     string
	Timezone         string
	ShiftStart       string // "15:04" local wall-clock shift start
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusResigned EmploymentStatus = "resigned"
)

// SalaryStructure is the pay contract payroll computes from.
type SalaryStructure struct {
	ID                 string
	EmployeeID         string
	BaseMonthly        decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	Components         []SalaryComponent
	EffectiveDate      time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type ComponentType string

const (
	ComponentTypeAllowance ComponentType = "allowance"
	ComponentTypeDeduction ComponentType = "deduction"
)

type ComponentCalc string

const (
	ComponentCalcFixed   ComponentCalc = "fixed"
	ComponentCalcPercent ComponentCalc = "percent" // percentage of base
)

type SalaryComponent struct {
	Name   string          `json:"name"`
	Type   ComponentType   `json:"type"`
	Calc   ComponentCalc   `json:"calc"`
	Amount decimal.Decimal `json:"amount"`
}
