package system

import (
	"orrery-server/internal/shared/errors"
)

// AuthorizeOwner checks that the acting user owns the system. Consulted
// before every mutating operation on a system or one of its planets; read
// operations never go through it.
func AuthorizeOwner(actingUserID int, sys *System) error {
	if sys.UserID != actingUserID {
		return errors.Forbiddenf("user %d does not own system %d", actingUserID, sys.ID)
	}
	return nil
}
