// Package policy derives and enforces privilege for the current actor.
//
// Admin status is a pure function of the actor's identifier, computed on
// every call. It is never stored, so one user's login can never leak
// admin rights into another user's session.
package policy

import (
	"errors"

	"github.com/chiasentiment/Samsonsblog/types"
)

// ErrUnauthenticated is returned when an operation requires a logged-in
// actor and there is none.
var ErrUnauthenticated = errors.New("authentication required")

// ErrForbidden is returned when the actor is logged in but lacks admin
// privilege.
var ErrForbidden = errors.New("admin access required")

// adminUserID is the identifier of the first registered account, the
// sole administrator.
const adminUserID = 1

// IsAdmin reports whether the actor is the administrator.
func IsAdmin(actor *types.User) bool {
	return actor != nil && actor.ID == adminUserID
}

// RequireAuthenticated fails with ErrUnauthenticated for an anonymous
// actor.
func RequireAuthenticated(actor *types.User) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin fails with ErrUnauthenticated for an anonymous actor and
// ErrForbidden for any authenticated actor other than the administrator.
func RequireAdmin(actor *types.User) error {
	if err := RequireAuthenticated(actor); err != nil {
		return err
	}
	if !IsAdmin(actor) {
		return ErrForbidden
	}
	return nil
}
