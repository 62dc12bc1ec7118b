package domain

// Employee is owned by the employee store; reviews only hold a reference.
// A zero ID means the employee was never saved.
type Employee struct {
	ID       int64
	Name     string
	JobTitle string
}
