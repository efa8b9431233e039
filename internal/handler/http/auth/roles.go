package auth

import authservice "blog/internal/service/auth"

// Role labels used in metrics and logs.
const (
	RoleStaff     = "staff"
	RoleUser      = "user"
	RoleAnonymous = "anonymous"
)

// roleOf returns the role label for an identity; nil is anonymous.
func roleOf(id *authservice.Identity) string {
	switch {
	case id == nil:
		return RoleAnonymous
	case id.IsStaff:
		return RoleStaff
	default:
		return RoleUser
	}
}
