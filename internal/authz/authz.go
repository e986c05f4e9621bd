// Package authz implements counselor authorization: the role and
// school-scoping checks applied to anyone touching flagged content.
package authz

import (
	"errors"

	"github.com/safehaven/peer-support-core/internal/model"
)

// Actor is the authenticated identity a request acts as, extracted from its
// access token. It is passed by value through every check so no hidden
// request state is involved.
type Actor struct {
	ID       uint64
	Role     string
	SchoolID uint64
	IsMinor  bool
	IP       string
}

// ErrInsufficientRole is returned when the actor's role cannot perform the
// operation at all.
var ErrInsufficientRole = errors.New("insufficient privileges")

// ErrCrossSchool is returned when a counselor targets a school other than
// their own. Admins are exempt.
var ErrCrossSchool = errors.New("cross-school access denied")

// Authorize checks that the actor may act on the given school's flagged
// content. Counselors are confined to their own school; admins may act
// cross-school. Everyone else is rejected outright.
func Authorize(actor Actor, schoolID uint64) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleCounselor:
		if actor.SchoolID != schoolID {
			return ErrCrossSchool
		}
		return nil
	}
	return ErrInsufficientRole
}
