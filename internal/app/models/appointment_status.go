package models

import "telemed-service/internal/pkg/constvars"

// Clinical status transitions:
//
//	pending     → accepted | rejected | rescheduled
//	accepted    → completed | rescheduled | canceled
//	rescheduled → accepted | rejected | canceled
//
// completed, rejected and canceled are terminal. Payment and refund status
// are tracked separately and guarded where they are changed.
var appointmentTransitions = map[string][]string{
	constvars.AppointmentStatusPending: {
		constvars.AppointmentStatusAccepted,
		constvars.AppointmentStatusRejected,
		constvars.AppointmentStatusRescheduled,
	},
	constvars.AppointmentStatusAccepted: {
		constvars.AppointmentStatusCompleted,
		constvars.AppointmentStatusRescheduled,
		constvars.AppointmentStatusCanceled,
	},
	constvars.AppointmentStatusRescheduled: {
		constvars.AppointmentStatusAccepted,
		constvars.AppointmentStatusRejected,
		constvars.AppointmentStatusCanceled,
	},
	constvars.AppointmentStatusCompleted: {},
	constvars.AppointmentStatusRejected:  {},
	constvars.AppointmentStatusCanceled:  {},
}

func (a *Appointment) CanTransitionTo(newStatus string) bool {
	for _, status := range appointmentTransitions[a.Status] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// AppointmentStatuses lists every clinical status.
func AppointmentStatuses() []string {
	return []string{
		constvars.AppointmentStatusPending,
		constvars.AppointmentStatusAccepted,
		constvars.AppointmentStatusRejected,
		constvars.AppointmentStatusRescheduled,
		constvars.AppointmentStatusCompleted,
		constvars.AppointmentStatusCanceled,
	}
}
