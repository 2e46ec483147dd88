package users

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
)

// User is the local account record. Identity is the email address; the
// ExternalUID links it to the account held by the identity provider.
type User struct {
	Email       string
	Role        Role
	ExternalUID string
}

// RequireRole is the authorization check used to gate admin-only operations.
func RequireRole(u User, role Role) bool {
	return u.Role == role
}
