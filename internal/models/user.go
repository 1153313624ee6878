package models

// RoleUser is the default role for customer-service agents.
const RoleUser = "user"

// RoleAdmin can manage user accounts in addition to generating replies.
const RoleAdmin = "admin"

type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
