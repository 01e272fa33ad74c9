package auth

import "context"

// Directory is the user-directory collaborator. The auth core treats it as
// read-mostly external storage; implementations must return ErrNotFound for
// unknown users and wrap infrastructure failures in their own errors.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (*StoredUser, error)
	FindByID(ctx context.Context, id string) (*StoredUser, error)
	Create(ctx context.Context, user *StoredUser) error
}

// RoleRegistry is the role/permission collaborator: lookup of a role and the
// actions it allows.
type RoleRegistry interface {
	RoleByName(ctx context.Context, name RoleName) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
}
