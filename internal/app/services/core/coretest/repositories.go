// Package coretest holds in-memory repositories and testify mocks shared by
// the core usecase tests.
package coretest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"
)

// AppointmentRepository keeps appointments in memory and enforces the same
// version guard as the mongo implementation.
type AppointmentRepository struct {
	mu     sync.Mutex
	nextID int
	items  map[string]*models.Appointment

	// BeforeUpdate, when set, runs before each conditional update and can
	// simulate a concurrent writer.
	BeforeUpdate func(stored *models.Appointment)
	// BeforeCreate runs before each insert, outside the repository lock.
	BeforeCreate func()
	UpdateCalls  int
}

func NewAppointmentRepository(seed ...*models.Appointment) *AppointmentRepository {
	repo := &AppointmentRepository{items: make(map[string]*models.Appointment)}
	for _, appointment := range seed {
		repo.Put(appointment)
	}
	return repo
}

// Put stores a copy of the appointment as is, assigning an id when missing.
func (r *AppointmentRepository) Put(appointment *models.Appointment) *models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := appointment.Clone()
	if stored.ID == "" {
		r.nextID++
		stored.ID = fmt.Sprintf("appt-%d", r.nextID)
	}
	r.items[stored.ID] = stored
	return stored.Clone()
}

// Get returns a copy of the stored appointment or nil.
func (r *AppointmentRepository) Get(appointmentID string) *models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[appointmentID]
	if !ok {
		return nil
	}
	return stored.Clone()
}

// Create enforces the unique payment id like the mongo index does.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	if r.BeforeCreate != nil {
		r.BeforeCreate()
	}
	if appointment.Payment != nil && appointment.Payment.PaymentID != "" {
		if existing, _ := r.FindByPaymentID(ctx, appointment.Payment.PaymentID); existing != nil {
			return nil, exceptions.ErrPaymentAlreadyRecorded(nil, appointment.Payment.PaymentID)
		}
	}
	return r.Put(appointment), nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return r.Get(appointmentID), nil
}

func (r *AppointmentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.items {
		if stored.Payment != nil && stored.Payment.PaymentID == paymentID {
			return stored.Clone(), nil
		}
	}
	return nil, nil
}

func (r *AppointmentRepository) FindAll(ctx context.Context, filter *requests.AppointmentFilter) ([]models.Appointment, error) {
	return r.collect(func(a *models.Appointment) bool {
		if filter == nil {
			return true
		}
		return (filter.Status == "" || a.Status == filter.Status) &&
			(filter.DoctorID == "" || a.DoctorID == filter.DoctorID) &&
			(filter.PatientID == "" || a.PatientID == filter.PatientID)
	}), nil
}

func (r *AppointmentRepository) FindByDoctorIDAndStatus(ctx context.Context, doctorID, status string) ([]models.Appointment, error) {
	return r.collect(func(a *models.Appointment) bool {
		return a.DoctorID == doctorID && a.Status == status
	}), nil
}

func (r *AppointmentRepository) FindByStatuses(ctx context.Context, statuses []string) ([]models.Appointment, error) {
	return r.collect(func(a *models.Appointment) bool {
		for _, status := range statuses {
			if a.Status == status {
				return true
			}
		}
		return false
	}), nil
}

func (r *AppointmentRepository) UpdateIfVersion(ctx context.Context, appointment *models.Appointment, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls++

	stored, ok := r.items[appointment.ID]
	if !ok {
		return false, nil
	}
	if r.BeforeUpdate != nil {
		r.BeforeUpdate(stored)
	}
	if stored.Version != expectedVersion {
		return false, nil
	}
	if appointment.Payment != nil && appointment.Payment.PaymentID != "" {
		for id, other := range r.items {
			if id != appointment.ID && other.Payment != nil && other.Payment.PaymentID == appointment.Payment.PaymentID {
				return false, exceptions.ErrPaymentAlreadyRecorded(nil, appointment.Payment.PaymentID)
			}
		}
	}
	r.items[appointment.ID] = appointment.Clone()
	return true, nil
}

func (r *AppointmentRepository) collect(match func(*models.Appointment) bool) []models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Appointment, 0)
	for _, stored := range r.items {
		if match(stored) {
			result = append(result, *stored.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// WithdrawalRepository keeps withdrawals in memory and enforces the pending
// status guard.
type WithdrawalRepository struct {
	mu     sync.Mutex
	nextID int
	items  map[string]models.Withdrawal
}

func NewWithdrawalRepository(seed ...models.Withdrawal) *WithdrawalRepository {
	repo := &WithdrawalRepository{items: make(map[string]models.Withdrawal)}
	for _, withdrawal := range seed {
		repo.Put(withdrawal)
	}
	return repo
}

func (r *WithdrawalRepository) Put(withdrawal models.Withdrawal) models.Withdrawal {
	r.mu.Lock()
	defer r.mu.Unlock()
	if withdrawal.ID == "" {
		r.nextID++
		withdrawal.ID = fmt.Sprintf("wd-%d", r.nextID)
	}
	r.items[withdrawal.ID] = withdrawal
	return withdrawal
}

func (r *WithdrawalRepository) Get(withdrawalID string) *models.Withdrawal {
	r.mu.Lock()
	defer r.mu.Unlock()
	withdrawal, ok := r.items[withdrawalID]
	if !ok {
		return nil
	}
	return &withdrawal
}

func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) (*models.Withdrawal, error) {
	stored := r.Put(*withdrawal)
	return &stored, nil
}

func (r *WithdrawalRepository) FindByID(ctx context.Context, withdrawalID string) (*models.Withdrawal, error) {
	return r.Get(withdrawalID), nil
}

func (r *WithdrawalRepository) FindAll(ctx context.Context, filter *requests.WithdrawalFilter) ([]models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Withdrawal, 0)
	for _, withdrawal := range r.items {
		if filter != nil && filter.Status != "" && withdrawal.Status != filter.Status {
			continue
		}
		if filter != nil && filter.DoctorID != "" && withdrawal.DoctorID != filter.DoctorID {
			continue
		}
		result = append(result, withdrawal)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *WithdrawalRepository) UpdateIfStatus(ctx context.Context, withdrawal *models.Withdrawal, expectedStatus string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[withdrawal.ID]
	if !ok || stored.Status != expectedStatus {
		return false, nil
	}
	r.items[withdrawal.ID] = *withdrawal
	return true, nil
}

type DoctorRepository struct {
	Doctors map[string]*models.Doctor
}

func NewDoctorRepository(doctors ...*models.Doctor) *DoctorRepository {
	repo := &DoctorRepository{Doctors: make(map[string]*models.Doctor)}
	for _, doctor := range doctors {
		repo.Doctors[doctor.ID] = doctor
	}
	return repo
}

func (r *DoctorRepository) FindByID(ctx context.Context, doctorID string) (*models.Doctor, error) {
	doctor, ok := r.Doctors[doctorID]
	if !ok {
		return nil, nil
	}
	copied := *doctor
	return &copied, nil
}
