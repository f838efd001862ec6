package models

// Admin "inherits" from User via embedding. The distinguishing field is Role.
// The first run of the application seeds exactly one of these.
type Admin struct {
	User
}

// NewAdmin creates an admin model with Role preset to "admin".
func NewAdmin(username, passwordHash string) *Admin {
	return &Admin{User: User{Username: username, PasswordHash: passwordHash, Role: RoleAdmin}}
}
