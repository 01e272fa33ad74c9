package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recordvault.org/internal/ids"
)

// PGDirectory implements Directory and RoleRegistry on PostgreSQL. It is the
// production collaborator behind the auth core; schema lives under
// internal/migrate/sql.
type PGDirectory struct {
	db *sql.DB
}

var _ Directory = (*PGDirectory)(nil)
var _ RoleRegistry = (*PGDirectory)(nil)

// NewPGDirectory wraps an open database handle.
func NewPGDirectory(db *sql.DB) *PGDirectory {
	return &PGDirectory{db: db}
}

const userColumns = `u.id, u.username, u.password_hash, r.name, u.created_at, u.updated_at`

func (d *PGDirectory) FindByUsername(ctx context.Context, username string) (*StoredUser, error) {
	row := d.db.QueryRowContext(ctx,
		`select `+userColumns+` from users u join roles r on r.id = u.role_id where u.username = $1`,
		username,
	)
	return scanUser(row)
}

func (d *PGDirectory) FindByID(ctx context.Context, id string) (*StoredUser, error) {
	row := d.db.QueryRowContext(ctx,
		`select `+userColumns+` from users u join roles r on r.id = u.role_id where u.id = $1`,
		id,
	)
	return scanUser(row)
}

func (d *PGDirectory) Create(ctx context.Context, user *StoredUser) error {
	if user.ID == "" {
		user.ID = ids.New()
	}
	res, err := d.db.ExecContext(ctx,
		`insert into users(id, username, password_hash, role_id)
		 select $1, $2, $3, r.id from roles r where r.name = $4
		 on conflict (username) do nothing`,
		user.ID, user.Username, user.PasswordHash, string(user.Role),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (d *PGDirectory) RoleByName(ctx context.Context, name RoleName) (*Role, error) {
	row := d.db.QueryRowContext(ctx,
		`select id, name, created_at, updated_at from roles where name = $1`, string(name),
	)
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	perms, err := d.permissionsForRole(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	return &role, nil
}

func (d *PGDirectory) List(ctx context.Context) ([]*Role, error) {
	rows, err := d.db.QueryContext(ctx,
		`select id, name, created_at, updated_at from roles order by name asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, role := range roles {
		perms, err := d.permissionsForRole(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
	}
	return roles, nil
}

func (d *PGDirectory) permissionsForRole(ctx context.Context, roleID string) ([]Permission, error) {
	rows, err := d.db.QueryContext(ctx,
		`select p.action, p.resource
		   from permissions p
		   join role_permissions rp on rp.permission_id = p.id
		  where rp.role_id = $1
		  order by p.resource, p.action`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.Action, &p.Resource); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func scanUser(row *sql.Row) (*StoredUser, error) {
	var user StoredUser
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
