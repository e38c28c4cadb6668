package models

import "telemed-service/internal/pkg/constvars"

// Principal is the authenticated caller of a core operation.
type Principal struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == constvars.RoleAdmin
}
