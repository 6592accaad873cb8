package models

import (
	"fmt"
	"strings"

	"aayur-gram-api-server/internal/errs"
)

// Role is one of the closed set of account roles.
type Role string

const (
	RoleCollector Role = "collector"
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleLab       Role = "lab"
)

// Roles lists every valid role.
var Roles = []Role{RoleCollector, RoleAdmin, RoleUser, RoleLab}

// ParseRole returns the role named by s. An empty string yields RoleUser,
// anything outside Roles is rejected with errs.ErrInvalidInput.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RoleUser, nil
	}
	if r := Role(s); r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", errs.ErrInvalidInput, s)
}

// Privileged reports whether the role requires a signup secret.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleLab
}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}
