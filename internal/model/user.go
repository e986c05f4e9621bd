package model

import "time"

// Roles recognized by the service. Students post to the feed; counselors work
// the review queue of their own school; admins may act cross-school.
const (
	RoleStudent   = "STUDENT"
	RoleCounselor = "COUNSELOR"
	RoleAdmin     = "ADMIN"
)

// CoppaAgeThreshold is the age (in years) below which a student account is
// subject to parental-consent enforcement.
const CoppaAgeThreshold = 13

// User represents an account record in the `users` table.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address (stored lower-cased).
//  PasswordHash – bcrypt hashed password.
//  Role         – STUDENT, COUNSELOR or ADMIN.
//  SchoolID     – school the account belongs to.
//  BirthDate    – used to decide COPPA applicability for students. Nullable
//                 for staff accounts.
//  IsActive     – whether the account is active.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Role         string
	SchoolID     uint64
	BirthDate    *time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsMinor reports whether the user is a student under the COPPA age threshold
// at the given instant. Staff accounts and students without a recorded birth
// date are never treated as minors.
func (u User) IsMinor(now time.Time) bool {
	if u.Role != RoleStudent || u.BirthDate == nil {
		return false
	}
	age := now.Year() - u.BirthDate.Year()
	// Subtract one if the birthday has not occurred yet this year.
	anniversary := time.Date(now.Year(), u.BirthDate.Month(), u.BirthDate.Day(), 0, 0, 0, 0, time.UTC)
	if now.Before(anniversary) {
		age--
	}
	return age < CoppaAgeThreshold
}
