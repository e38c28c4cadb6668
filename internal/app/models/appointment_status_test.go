package models

import (
	"telemed-service/internal/pkg/constvars"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointment_CanTransitionTo(t *testing.T) {
	legal := map[string]map[string]bool{
		constvars.AppointmentStatusPending: {
			constvars.AppointmentStatusAccepted:    true,
			constvars.AppointmentStatusRejected:    true,
			constvars.AppointmentStatusRescheduled: true,
		},
		constvars.AppointmentStatusAccepted: {
			constvars.AppointmentStatusCompleted:   true,
			constvars.AppointmentStatusRescheduled: true,
			constvars.AppointmentStatusCanceled:    true,
		},
		constvars.AppointmentStatusRescheduled: {
			constvars.AppointmentStatusAccepted: true,
			constvars.AppointmentStatusRejected: true,
			constvars.AppointmentStatusCanceled: true,
		},
	}

	for _, from := range AppointmentStatuses() {
		for _, to := range AppointmentStatuses() {
			appointment := &Appointment{Status: from}
			expected := legal[from][to]
			assert.Equal(t, expected, appointment.CanTransitionTo(to), "transition %s -> %s", from, to)
		}
	}
}

func TestAppointment_Clone(t *testing.T) {
	original := &Appointment{
		Records: []string{"a"},
		Payment: &PaymentDetails{PaymentID: "pay_1"},
		Refund:  &RefundDetails{RefundID: "rfnd_1"},
	}

	clone := original.Clone()
	clone.Records[0] = "b"
	clone.Payment.PaymentID = "pay_2"
	clone.Refund.RefundID = "rfnd_2"

	assert.Equal(t, "a", original.Records[0], "records should be copied")
	assert.Equal(t, "pay_1", original.Payment.PaymentID, "payment should be copied")
	assert.Equal(t, "rfnd_1", original.Refund.RefundID, "refund should be copied")
}

func TestDateRange_Contains(t *testing.T) {
	day := func(d int) *time.Time {
		value := time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
		return &value
	}

	assert.True(t, DateRange{}.Contains(day(1)), "open range contains everything")
	assert.False(t, DateRange{}.Contains(nil), "nil time is never contained")
	assert.True(t, DateRange{From: day(1), To: day(3)}.Contains(day(3)), "upper bound is inclusive")
	assert.False(t, DateRange{From: day(2)}.Contains(day(1)))
	assert.False(t, DateRange{To: day(2)}.Contains(day(3)))
}
