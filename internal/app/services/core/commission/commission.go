// Package commission splits a consultation fee between the doctor and the
// platform.
package commission

import (
	"strconv"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
)

type Fees struct {
	ConsultationFee         float64 `json:"consultationFee"`
	TotalFee                float64 `json:"totalFee"`
	PatientCommissionAmount float64 `json:"patientCommissionAmount"`
	DoctorCommissionAmount  float64 `json:"doctorCommissionAmount"`
	DoctorNetEarning        float64 `json:"doctorNetEarning"`
	PlatformEarning         float64 `json:"platformEarning"`
}

// ComputeFees applies the patient and doctor commission percentages to a
// consultation fee. Commission amounts are rounded to two places first and
// the derived figures are built from the rounded values, so
// DoctorNetEarning + DoctorCommissionAmount always equals the fee.
func ComputeFees(consultationFee, patientCommissionPct, doctorCommissionPct float64) (*Fees, error) {
	if !utils.IsFiniteAmount(consultationFee) || consultationFee < 0 {
		return nil, exceptions.ErrInvalidFee(nil, formatFloat(consultationFee))
	}
	if err := validateRate(patientCommissionPct); err != nil {
		return nil, err
	}
	if err := validateRate(doctorCommissionPct); err != nil {
		return nil, err
	}

	fee := utils.Money(consultationFee)
	patientCommission := utils.Percent(fee, patientCommissionPct).Round(2)
	doctorCommission := utils.Percent(fee, doctorCommissionPct).Round(2)

	return &Fees{
		ConsultationFee:         utils.RoundMoney(fee),
		TotalFee:                utils.RoundMoney(fee.Add(patientCommission)),
		PatientCommissionAmount: utils.RoundMoney(patientCommission),
		DoctorCommissionAmount:  utils.RoundMoney(doctorCommission),
		DoctorNetEarning:        utils.RoundMoney(fee.Sub(doctorCommission)),
		PlatformEarning:         utils.RoundMoney(patientCommission.Add(doctorCommission)),
	}, nil
}

// ForAppointment recomputes the split from the rates frozen on the record.
func ForAppointment(appointment *models.Appointment) (*Fees, error) {
	return ComputeFees(appointment.ConsultationFee, appointment.PatientCommissionRate, appointment.DoctorCommissionRate)
}

// ValidateRate reports an error when pct is not a percentage in [0, 100].
func ValidateRate(pct float64) error {
	return validateRate(pct)
}

func validateRate(pct float64) error {
	if !utils.IsFiniteAmount(pct) || pct < 0 || pct > 100 {
		return exceptions.ErrInvalidCommissionRate(nil, formatFloat(pct))
	}
	return nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
