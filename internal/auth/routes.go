package auth

import "fmt"

// RouteRequirement declares the roles allowed to invoke one operation.
// Requirements are static configuration: declared at build time, loaded once
// at startup, immutable thereafter.
type RouteRequirement struct {
	OperationID  string
	AllowedRoles []RoleName
}

// Registry is the read-only operation -> allowed-roles table consulted by
// the authorization engine. Operations absent from the table carry no
// requirement and are treated as public.
type Registry struct {
	requirements map[string][]RoleName
}

// NewRegistry builds the registry from static declarations. Duplicate
// operation IDs and empty role sets are configuration mistakes and are
// rejected outright.
func NewRegistry(reqs ...RouteRequirement) (*Registry, error) {
	table := make(map[string][]RoleName, len(reqs))
	for _, req := range reqs {
		if req.OperationID == "" {
			return nil, fmt.Errorf("%w: operation id is required", ErrInvalidInput)
		}
		if _, dup := table[req.OperationID]; dup {
			return nil, fmt.Errorf("%w: duplicate requirement for %q", ErrInvalidInput, req.OperationID)
		}
		if len(req.AllowedRoles) == 0 {
			return nil, fmt.Errorf("%w: requirement for %q declares no roles", ErrInvalidInput, req.OperationID)
		}
		roles := make([]RoleName, len(req.AllowedRoles))
		copy(roles, req.AllowedRoles)
		table[req.OperationID] = roles
	}
	return &Registry{requirements: table}, nil
}

// Requirement returns the allowed-role set for an operation. ok is false for
// operations without a declared requirement (public operations).
func (r *Registry) Requirement(operationID string) ([]RoleName, bool) {
	roles, ok := r.requirements[operationID]
	if !ok {
		return nil, false
	}
	out := make([]RoleName, len(roles))
	copy(out, roles)
	return out, true
}

// DefaultRequirements is the service's own route table. Login, sign-up,
// logout and refresh are public: the first two by design, the latter two
// because they prove possession of a token themselves. Record operations
// carry no requirement, mirroring current product policy.
func DefaultRequirements() []RouteRequirement {
	return []RouteRequirement{
		{OperationID: "me.get", AllowedRoles: []RoleName{RoleAdmin, RoleEmployee, RoleCustomer}},

		{OperationID: "users.create", AllowedRoles: []RoleName{RoleAdmin, RoleEmployee}},
		{OperationID: "users.get", AllowedRoles: []RoleName{RoleAdmin, RoleEmployee}},
		{OperationID: "users.getByUsername", AllowedRoles: []RoleName{RoleAdmin, RoleEmployee}},
		{OperationID: "users.list", AllowedRoles: []RoleName{RoleAdmin, RoleEmployee}},
		{OperationID: "users.update", AllowedRoles: []RoleName{RoleAdmin}},
		{OperationID: "users.delete", AllowedRoles: []RoleName{RoleAdmin}},

		{OperationID: "roles.create", AllowedRoles: []RoleName{RoleSuperAdmin}},
		{OperationID: "roles.get", AllowedRoles: []RoleName{RoleAdmin, RoleEmployee}},
		{OperationID: "roles.getByName", AllowedRoles: []RoleName{RoleAdmin, RoleEmployee}},
		{OperationID: "roles.list", AllowedRoles: []RoleName{RoleAdmin, RoleEmployee}},
		{OperationID: "roles.update", AllowedRoles: []RoleName{RoleSuperAdmin}},
		{OperationID: "roles.delete", AllowedRoles: []RoleName{RoleSuperAdmin}},
	}
}
