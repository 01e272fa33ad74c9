package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"recordvault.org/internal/ids"
)

// MemoryDirectory is an in-memory Directory and RoleRegistry used by tests
// and by cmd/api when no database is configured. It seeds the fixed role
// catalog; users are added through Create or the Seed helper.
type MemoryDirectory struct {
	mu     sync.RWMutex
	byName map[string]*StoredUser
	byID   map[string]*StoredUser
	roles  map[RoleName]*Role
}

var _ Directory = (*MemoryDirectory)(nil)
var _ RoleRegistry = (*MemoryDirectory)(nil)

// NewMemoryDirectory builds an empty directory with the built-in roles.
func NewMemoryDirectory() *MemoryDirectory {
	now := time.Now().UTC()
	roles := map[RoleName]*Role{
		RoleSuperAdmin: {ID: ids.New(), Name: RoleSuperAdmin, Permissions: []Permission{{Action: ActionAll, Resource: ResourceAll}}, CreatedAt: now, UpdatedAt: now},
		RoleAdmin:      {ID: ids.New(), Name: RoleAdmin, Permissions: []Permission{{Action: ActionAll, Resource: ResourceRecords}, {Action: ActionAll, Resource: ResourceUsers}}, CreatedAt: now, UpdatedAt: now},
		RoleEmployee:   {ID: ids.New(), Name: RoleEmployee, Permissions: []Permission{{Action: ActionRead, Resource: ResourceRecords}, {Action: ActionRead, Resource: ResourceUsers}}, CreatedAt: now, UpdatedAt: now},
		RoleCustomer:   {ID: ids.New(), Name: RoleCustomer, Permissions: []Permission{{Action: ActionRead, Resource: ResourceRecords}}, CreatedAt: now, UpdatedAt: now},
	}
	return &MemoryDirectory{
		byName: make(map[string]*StoredUser),
		byID:   make(map[string]*StoredUser),
		roles:  roles,
	}
}

// Seed inserts or replaces a user without the Create uniqueness check.
func (d *MemoryDirectory) Seed(user StoredUser) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if user.ID == "" {
		user.ID = ids.New()
	}
	u := user
	d.byName[u.Username] = &u
	d.byID[u.ID] = &u
}

func (d *MemoryDirectory) FindByUsername(ctx context.Context, username string) (*StoredUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	out := *user
	return &out, nil
}

func (d *MemoryDirectory) FindByID(ctx context.Context, id string) (*StoredUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *user
	return &out, nil
}

func (d *MemoryDirectory) Create(ctx context.Context, user *StoredUser) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byName[user.Username]; exists {
		return ErrAlreadyExists
	}
	u := *user
	d.byName[u.Username] = &u
	d.byID[u.ID] = &u
	return nil
}

func (d *MemoryDirectory) RoleByName(ctx context.Context, name RoleName) (*Role, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	role, ok := d.roles[name]
	if !ok {
		return nil, ErrNotFound
	}
	out := *role
	out.Permissions = append([]Permission(nil), role.Permissions...)
	return &out, nil
}

func (d *MemoryDirectory) List(ctx context.Context) ([]*Role, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Role, 0, len(d.roles))
	for _, role := range d.roles {
		r := *role
		r.Permissions = append([]Permission(nil), role.Permissions...)
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
