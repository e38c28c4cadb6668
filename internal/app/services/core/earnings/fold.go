package earnings

import (
	"sort"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/commission"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/utils"
	"time"

	"github.com/shopspring/decimal"
)

// doctorTotals accumulates decimal sums so the fold is exact and the result
// does not depend on the order appointments are visited in.
type doctorTotals struct {
	gross       decimal.Decimal
	commission  decimal.Decimal
	net         decimal.Decimal
	lifetimeNet decimal.Decimal
	today       decimal.Decimal
	week        decimal.Decimal
	month       decimal.Decimal
	year        decimal.Decimal
	withdrawn   decimal.Decimal
	completed   int
	breakdown   []responses.AppointmentEarnings
}

// FoldDoctorEarnings aggregates a doctor's completed appointments and
// approved withdrawals. Appointments outside window still count towards the
// lifetime balance, so PendingPayout is the same for every window.
func FoldDoctorEarnings(doctorID string, appointments []models.Appointment, withdrawals []models.Withdrawal, window models.DateRange, now time.Time) (*responses.DoctorEarnings, error) {
	totals := doctorTotals{breakdown: make([]responses.AppointmentEarnings, 0)}
	periods := newPeriodBounds(now)

	for i := range appointments {
		appointment := &appointments[i]
		if appointment.DoctorID != doctorID || appointment.Status != constvars.AppointmentStatusCompleted {
			continue
		}
		fees, err := commission.ForAppointment(appointment)
		if err != nil {
			return nil, err
		}
		net := utils.Money(fees.DoctorNetEarning)
		totals.lifetimeNet = totals.lifetimeNet.Add(net)
		periods.add(&totals, appointment.CompletedAt, net)

		if !inWindow(window, appointment.CompletedAt) {
			continue
		}
		totals.completed++
		totals.gross = totals.gross.Add(utils.Money(fees.ConsultationFee))
		totals.commission = totals.commission.Add(utils.Money(fees.DoctorCommissionAmount))
		totals.net = totals.net.Add(net)
		totals.breakdown = append(totals.breakdown, responses.AppointmentEarnings{
			AppointmentID:   appointment.ID,
			PatientName:     appointment.PatientName,
			CompletedAt:     appointment.CompletedAt,
			ConsultationFee: fees.ConsultationFee,
			Commission:      fees.DoctorCommissionAmount,
			Net:             fees.DoctorNetEarning,
		})
	}

	for i := range withdrawals {
		withdrawal := &withdrawals[i]
		if withdrawal.DoctorID != doctorID || withdrawal.Status != constvars.WithdrawalStatusApproved {
			continue
		}
		totals.withdrawn = totals.withdrawn.Add(utils.Money(withdrawal.Settled()))
	}

	sortBreakdown(totals.breakdown)
	pending := decimal.Max(totals.lifetimeNet.Sub(totals.withdrawn), decimal.Zero)

	return &responses.DoctorEarnings{
		DoctorID:              doctorID,
		Gross:                 utils.RoundMoney(totals.gross),
		Commission:            utils.RoundMoney(totals.commission),
		Net:                   utils.RoundMoney(totals.net),
		LifetimeNet:           utils.RoundMoney(totals.lifetimeNet),
		TotalWithdrawn:        utils.RoundMoney(totals.withdrawn),
		PendingPayout:         utils.RoundMoney(pending),
		CompletedAppointments: totals.completed,
		Periods: responses.EarningsPeriods{
			Today:     utils.RoundMoney(totals.today),
			ThisWeek:  utils.RoundMoney(totals.week),
			ThisMonth: utils.RoundMoney(totals.month),
			ThisYear:  utils.RoundMoney(totals.year),
		},
		NextPayoutDate: nextPayoutDate(now).Format(constvars.DateLayout),
		Breakdown:      totals.breakdown,
	}, nil
}

// FoldPlatformEarnings sums commission revenue over completed appointments
// and the refund breakdowns stored on refunded ones. Canceled, paid
// appointments without an issued refund count at their refundable bound.
func FoldPlatformEarnings(appointments []models.Appointment, window models.DateRange, policy models.FinancePolicy) (*responses.PlatformEarnings, error) {
	var (
		gross, patientCommission, doctorCommission, payouts  decimal.Decimal
		refunded, pendingRefunds, gatewayFees, gst, residual decimal.Decimal
		completed, refundedCount                             int
	)
	cancellationFee := utils.Money(policy.CancellationFee)

	for i := range appointments {
		appointment := &appointments[i]
		switch {
		case appointment.Status == constvars.AppointmentStatusCompleted:
			if !inWindow(window, appointment.CompletedAt) {
				continue
			}
			fees, err := commission.ForAppointment(appointment)
			if err != nil {
				return nil, err
			}
			completed++
			gross = gross.Add(utils.Money(fees.TotalFee))
			patientCommission = patientCommission.Add(utils.Money(fees.PatientCommissionAmount))
			doctorCommission = doctorCommission.Add(utils.Money(fees.DoctorCommissionAmount))
			payouts = payouts.Add(utils.Money(fees.DoctorNetEarning))

		case appointment.RefundStatus == constvars.RefundStatusProcessed && appointment.Refund != nil:
			if !inWindow(window, appointment.RefundedAt) {
				continue
			}
			refundedCount++
			refunded = refunded.Add(utils.Money(appointment.Refund.Amount))
			gatewayFees = gatewayFees.Add(utils.Money(appointment.Refund.GatewayFee))
			gst = gst.Add(utils.Money(appointment.Refund.GSTOnGatewayFee))
			residual = residual.Add(utils.Money(appointment.Refund.ResidualAfterRefund))

		case appointment.Status == constvars.AppointmentStatusCanceled && appointment.PaymentStatus == constvars.PaymentStatusPaid:
			if !inWindow(window, appointment.CanceledAt) {
				continue
			}
			bound := decimal.Max(utils.Money(appointment.TotalFee).Sub(cancellationFee), decimal.Zero)
			pendingRefunds = pendingRefunds.Add(bound)
		}
	}

	platformRevenue := patientCommission.Add(doctorCommission)
	netProfit := platformRevenue.Sub(gatewayFees.Add(gst)).Add(residual)

	return &responses.PlatformEarnings{
		CompletedAppointments:  completed,
		RefundedAppointments:   refundedCount,
		GrossRevenue:           utils.RoundMoney(gross),
		PatientCommissionTotal: utils.RoundMoney(patientCommission),
		DoctorCommissionTotal:  utils.RoundMoney(doctorCommission),
		PlatformRevenue:        utils.RoundMoney(platformRevenue),
		DoctorPayouts:          utils.RoundMoney(payouts),
		RefundedAmount:         utils.RoundMoney(refunded),
		PendingRefundAmount:    utils.RoundMoney(pendingRefunds),
		GatewayFees:            utils.RoundMoney(gatewayFees),
		GSTOnGatewayFees:       utils.RoundMoney(gst),
		ResidualAfterRefunds:   utils.RoundMoney(residual),
		NetProfit:              utils.RoundMoney(netProfit),
	}, nil
}

// inWindow treats an open window as matching records without a timestamp.
func inWindow(window models.DateRange, at *time.Time) bool {
	if window.From == nil && window.To == nil {
		return true
	}
	return window.Contains(at)
}

// periodBounds are trailing windows ending now: the current calendar day and
// the last 7 days, month and year from the start of today.
type periodBounds struct {
	now, today, week, month, year time.Time
}

func newPeriodBounds(now time.Time) periodBounds {
	today := utils.StartOfDay(now)
	return periodBounds{
		now:   now,
		today: today,
		week:  today.AddDate(0, 0, -7),
		month: today.AddDate(0, -1, 0),
		year:  today.AddDate(-1, 0, 0),
	}
}

func (p periodBounds) add(totals *doctorTotals, completedAt *time.Time, net decimal.Decimal) {
	if completedAt == nil || completedAt.After(p.now) {
		return
	}
	at := completedAt.In(p.now.Location())
	if !at.Before(p.today) {
		totals.today = totals.today.Add(net)
	}
	if !at.Before(p.week) {
		totals.week = totals.week.Add(net)
	}
	if !at.Before(p.month) {
		totals.month = totals.month.Add(net)
	}
	if !at.Before(p.year) {
		totals.year = totals.year.Add(net)
	}
}

// nextPayoutDate is the coming Monday. Payouts run weekly.
func nextPayoutDate(now time.Time) time.Time {
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return utils.StartOfDay(now).AddDate(0, 0, days)
}

func sortBreakdown(breakdown []responses.AppointmentEarnings) {
	sort.Slice(breakdown, func(i, j int) bool {
		a, b := breakdown[i], breakdown[j]
		switch {
		case a.CompletedAt == nil && b.CompletedAt != nil:
			return false
		case a.CompletedAt != nil && b.CompletedAt == nil:
			return true
		case a.CompletedAt != nil && !a.CompletedAt.Equal(*b.CompletedAt):
			return a.CompletedAt.After(*b.CompletedAt)
		}
		return a.AppointmentID < b.AppointmentID
	})
}
