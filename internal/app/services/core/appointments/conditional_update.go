package appointments

import (
	"context"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/exceptions"
	"time"
)

const maxConditionalUpdateAttempts = 3

// Mutation inspects and edits a fresh copy of the appointment. Returning
// changed=false skips the write. A returned error aborts without writing.
type Mutation func(appointment *models.Appointment) (changed bool, err error)

// ApplyConditionalUpdate runs a read-modify-write that commits only if no
// other writer bumped the version in between. On a lost race it reloads and
// re-runs mutate, so guards are always checked against the stored state.
// The returned bool reports whether a write happened.
func ApplyConditionalUpdate(ctx context.Context, repo contracts.AppointmentRepository, appointmentID string, mutate Mutation) (*models.Appointment, bool, error) {
	for attempt := 0; attempt < maxConditionalUpdateAttempts; attempt++ {
		current, err := repo.FindByID(ctx, appointmentID)
		if err != nil {
			return nil, false, err
		}
		if current == nil {
			return nil, false, exceptions.ErrAppointmentNotFound(nil)
		}

		next := current.Clone()
		changed, err := mutate(next)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return current, false, nil
		}

		expectedVersion := current.Version
		next.ID = current.ID
		next.Version = expectedVersion + 1
		next.UpdatedAt = time.Now().UTC()

		updated, err := repo.UpdateIfVersion(ctx, next, expectedVersion)
		if err != nil {
			return nil, false, err
		}
		if updated {
			return next, true, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
	}
	return nil, false, exceptions.ErrConcurrentModification(nil)
}
