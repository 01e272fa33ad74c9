package auth

import (
	"fmt"
	"strings"
	"time"
)

// RoleName identifies one of the fixed roles known to the service.
type RoleName string

const (
	RoleSuperAdmin RoleName = "SUPER_ADMIN"
	RoleAdmin      RoleName = "ADMIN"
	RoleEmployee   RoleName = "EMPLOYEE"
	RoleCustomer   RoleName = "CUSTOMER"
)

// AllRoleNames lists every role the service recognizes.
var AllRoleNames = []RoleName{RoleSuperAdmin, RoleAdmin, RoleEmployee, RoleCustomer}

// ParseRoleName normalizes raw input to a canonical role name.
func ParseRoleName(raw string) (RoleName, error) {
	name := RoleName(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range AllRoleNames {
		if name == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
}

// PermissionAction is the verb half of a permission.
type PermissionAction string

const (
	ActionCreate PermissionAction = "CREATE"
	ActionRead   PermissionAction = "READ"
	ActionUpdate PermissionAction = "UPDATE"
	ActionDelete PermissionAction = "DELETE"
	ActionAll    PermissionAction = "ALL"
	ActionNone   PermissionAction = "NONE"
)

// PermissionResource is the noun half of a permission.
type PermissionResource string

const (
	ResourceAuth    PermissionResource = "AUTH"
	ResourceRecords PermissionResource = "RECORDS"
	ResourceRoles   PermissionResource = "ROLES"
	ResourceUsers   PermissionResource = "USERS"
	ResourceAll     PermissionResource = "ALL"
	ResourceNone    PermissionResource = "NONE"
)

// Permission is a fine-grained capability attached to a role.
type Permission struct {
	Action   PermissionAction   `json:"action"`
	Resource PermissionResource `json:"resource"`
}

// Role groups permissions under a unique name.
type Role struct {
	ID          string       `json:"id"`
	Name        RoleName     `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// StoredUser is the directory's view of an account. The auth core reads it
// but never persists it.
type StoredUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         RoleName  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Credential carries a login attempt. It is consumed once and never stored.
type Credential struct {
	Username string
	Secret   string
}
