package services

import "homebite-api/models"

// Principal identifies the acting user on every service call.
// Services never read an implicit "current user" — the caller (normally the
// auth middleware) resolves the principal and passes it in explicitly.
type Principal struct {
	UserID uint
	Role   models.UserRole
}

func (p Principal) IsCustomer() bool { return p.Role == models.RoleCustomer }
func (p Principal) IsCook() bool     { return p.Role == models.RoleCook }
func (p Principal) IsAdmin() bool    { return p.Role == models.RoleAdmin }
