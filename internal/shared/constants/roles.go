package constants

// Role is the authorization role carried in access tokens
type Role string

const (
	RoleUser      Role = "USER"
	RoleOrganizer Role = "ORGANIZER"
)

func IsValidRole(role string) bool {
	switch role {
	case string(RoleUser), string(RoleOrganizer):
		return true
	default:
		return false
	}
}
