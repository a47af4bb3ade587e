package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/live-event-checkin/internal/model"
)

// StaffRepo manages persistence for staff accounts. Accounts are created by
// the platform's provisioning tooling; this repository only reads them for
// login.
type StaffRepo struct {
	db *sql.DB
}

// NewStaffRepo constructs a StaffRepo with the given DB handle.
func NewStaffRepo(db *sql.DB) *StaffRepo {
	return &StaffRepo{db: db}
}

// GetByEmail fetches an active staff user by normalized email. It returns
// ErrStaffNotFound both for unknown emails and for deactivated accounts so
// the login handler cannot leak which case occurred.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT id, email, password_hash, role, is_active, created_at
               FROM staff_users WHERE email = ? AND is_active = 1`
	var u model.StaffUser
	err := r.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &u, nil
}
