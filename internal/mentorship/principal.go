package mentorship

import "github.com/garnizeh/mentorship/pkg/models"

// Principal is the authenticated caller as resolved by the access guard.
type Principal struct {
	UserID string
	Role   models.Role
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// owns reports whether p may act on a resource owned by userID.
func (p Principal) owns(userID string) bool { return p.UserID != "" && p.UserID == userID }

func requireAdmin(p Principal, op string) error {
	if !p.IsAdmin() {
		return newError(KindForbidden, "%s requires the admin role", op)
	}
	return nil
}
