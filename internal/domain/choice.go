package domain

// EmployeeChoice is the explicit "specific employee or any available" selection
// used by availability and booking. Modelled as a tagged value instead of a
// bare nullable ID so that the choice can never be ambiguous in stored state:
// an AnyAvailable choice must be resolved to a concrete employee before an
// appointment is persisted.
type EmployeeChoice struct {
	employeeID int64
	specific   bool
}

// SpecificEmployee selects one concrete employee
func SpecificEmployee(id int64) EmployeeChoice {
	return EmployeeChoice{employeeID: id, specific: true}
}

// AnyAvailableEmployee selects whichever active employee is free
func AnyAvailableEmployee() EmployeeChoice {
	return EmployeeChoice{}
}

// IsAny returns true for the "any available employee" choice
func (c EmployeeChoice) IsAny() bool {
	return !c.specific
}

// EmployeeID returns the concrete employee ID and true for a specific choice
func (c EmployeeChoice) EmployeeID() (int64, bool) {
	return c.employeeID, c.specific
}
