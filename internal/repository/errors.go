// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto HTTP statuses without string matching.
package repository

import "errors"

// ErrDuplicateCheckin is returned when a user attempts to record a
// check-in for a window they already collected. Handlers should
// translate this into an HTTP 409 response.
var ErrDuplicateCheckin = errors.New("duplicate checkin")

// ErrStaffNotFound indicates that no active staff account matches the
// supplied email.
var ErrStaffNotFound = errors.New("staff user not found")
