package domain

const MailTypeEmployeeCreated = "employee_created"

type MailMessage struct {
	Type string           `json:"type"`
	To   string           `json:"to"`
	Data EmployeeMailData `json:"data"`
}

type EmployeeMailData struct {
	Name       string  `json:"name"`
	Department *string `json:"department"`
	Role       *string `json:"role"`
	DateJoined string  `json:"dateJoined"`
}
