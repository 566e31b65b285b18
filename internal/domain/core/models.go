package core

import "time"

type Employee struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	DepartmentID string `json:"departmentId"`
	SupervisorID string `json:"supervisorId"`
	JobCategory  string `json:"jobCategory"`
	Status       string `json:"status"`
}

type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Cycle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}
