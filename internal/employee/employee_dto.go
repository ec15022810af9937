package employee

type CreateEmployeeRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	StaffNumber string `json:"staff_number"`
	Department  string `json:"department"`
	Position    string `json:"position"`
	HireDate    string `json:"hire_date" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department"`
	Position   string `json:"position"`
	HireDate   string `json:"hire_date" binding:"required"`
}

type EmployeeResponse struct {
	ID          string `json:"id"`
	StaffNumber string `json:"staff_number"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Department  string `json:"department,omitempty"`
	Position    string `json:"position,omitempty"`
	HireDate    string `json:"hire_date"`
	IsActive    bool   `json:"is_active"`
}
