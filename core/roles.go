package core

// Actor roles carried in auth token claims. Each route area admits
// exactly one of these.
const (
	RoleAdmin     = "admin"
	RoleInstitute = "institute"
	RoleUser      = "user"
)
