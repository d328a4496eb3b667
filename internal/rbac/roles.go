package rbac

// Role names. Stored on users and carried in access tokens.
const (
	RoleAdmin   = "admin"
	RoleAgent   = "agent"
	RoleAnalyst = "analyst"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAgent, RoleAnalyst:
		return true
	default:
		return false
	}
}
