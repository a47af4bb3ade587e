package model

import "time"

// StaffUser represents a staff account as stored in the `staff_users`
// table. Staff accounts are provisioned out of band; this service only
// authenticates them so dashboards can join the admin room and read
// aggregate stats.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (currently always STAFF).
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
type StaffUser struct {
	ID           uint64    // staff_users.id
	Email        string    // staff_users.email
	PasswordHash string    // staff_users.password_hash
	Role         string    // staff_users.role
	IsActive     bool      // staff_users.is_active
	CreatedAt    time.Time // staff_users.created_at
}
