package service

import (
	"fmt"
	"time"

	"paceline.app/community/internal/entity"
	"paceline.app/community/pkg/apperror"
)

// CheckRegistration applies the registration rules in order: the event must
// exist and be active, registration must not have closed, must have opened,
// and a new registrant needs a free place. A runner who is already
// registered passes the capacity rule so repeating the call is a no-op.
func CheckRegistration(ev *entity.Event, alreadyRegistered bool, registered int64, now time.Time) error {
	if ev == nil || !ev.IsActive {
		return fmt.Errorf("event not found: %w", apperror.ErrNotFound)
	}
	if ev.RegistrationClosesAt != nil && now.After(*ev.RegistrationClosesAt) {
		return apperror.ErrRegistrationClosed
	}
	if ev.RegistrationOpensAt != nil && now.Before(*ev.RegistrationOpensAt) {
		return apperror.ErrRegistrationNotOpen
	}
	if alreadyRegistered {
		return nil
	}
	if ev.MaxParticipants != nil && registered >= int64(*ev.MaxParticipants) {
		return apperror.ErrEventFull
	}
	return nil
}
