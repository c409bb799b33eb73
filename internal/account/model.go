package account

import "time"

const (
	// RoleUser is the default role assigned to self-registered accounts.
	RoleUser = "USER"
	// RoleAdmin marks company administrators.
	RoleAdmin = "ADMIN"
)

// User represents a registered account inside a tenant company.
type User struct {
	ID             string
	Email          string
	Name           string
	PasswordHash   []byte
	RoleName       string
	CompanyNo      int64
	DepartmentName string
	CreatedAt      time.Time
	LastLoginAt    time.Time
	Deleted        bool
}

// Role is a named permission grouping shared across accounts.
type Role struct {
	ID   string
	Name string
}
