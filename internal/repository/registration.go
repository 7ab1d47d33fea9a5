package repository

import (
	"context"
	"fmt"

	"github.com/eventpass/eventpass-api/internal/domain"
	"github.com/eventpass/eventpass-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrRegistrationNotOwned = dao.ErrRegistrationNotOwned
	ErrAlreadyRegistered    = dao.ErrAlreadyRegistered
	ErrEventFull            = dao.ErrEventFull
	ErrEventNotPublished    = dao.ErrEventNotPublished
	ErrEventEnded           = dao.ErrEventEnded
	ErrTicketUsed           = dao.ErrTicketUsed
	ErrTicketCancelled      = dao.ErrTicketCancelled
)

type RegistrationDAO interface {
	Register(ctx context.Context, reg dao.Registration) (dao.Registration, error)
	Cancel(ctx context.Context, regID, userID string) error
	CheckIn(ctx context.Context, regID string) (dao.Registration, error)
	WalkIn(ctx context.Context, reg dao.Registration) (dao.Registration, error)
	FindByID(ctx context.Context, id string) (dao.Registration, error)
	FindByTicketCode(ctx context.Context, code string) (dao.Registration, error)
	ListByUser(ctx context.Context, userID string) ([]dao.Registration, error)
	ListByEventWithUsers(ctx context.Context, eventID string) ([]dao.AttendeeRow, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) Register(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Register(ctx, r.domainToDao(reg))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Register -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) Cancel(ctx context.Context, regID, userID string) error {
	if err := r.dao.Cancel(ctx, regID, userID); err != nil {
		return fmt.Errorf("r.dao.Cancel -> %w", err)
	}

	return nil
}

// CheckIn transitions the registration to checked_in. On ErrTicketUsed and
// ErrTicketCancelled the registration is still returned so the console can
// show whose ticket was presented.
func (r *RegistrationRepository) CheckIn(ctx context.Context, regID string) (domain.Registration, error) {
	checked, err := r.dao.CheckIn(ctx, regID)
	if err != nil {
		return r.daoToDomain(checked), fmt.Errorf("r.dao.CheckIn -> %w", err)
	}

	return r.daoToDomain(checked), nil
}

func (r *RegistrationRepository) WalkIn(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := r.dao.WalkIn(ctx, r.domainToDao(reg))
	if err != nil {
		return r.daoToDomain(created), fmt.Errorf("r.dao.WalkIn -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (domain.Registration, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindByTicketCode(ctx context.Context, code string) (domain.Registration, error) {
	found, err := r.dao.FindByTicketCode(ctx, code)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByTicketCode -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Registration, error) {
	found, err := r.dao.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByUser -> %w", err)
	}

	regs := make([]domain.Registration, len(found))
	for i, reg := range found {
		regs[i] = r.daoToDomain(reg)
	}

	return regs, nil
}

func (r *RegistrationRepository) ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	rows, err := r.dao.ListByEventWithUsers(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByEventWithUsers -> %w", err)
	}

	attendees := make([]domain.Attendee, len(rows))
	for i, row := range rows {
		attendees[i] = domain.Attendee{
			Registration:    r.daoToDomain(row.Registration),
			UserDisplayName: row.UserDisplayName,
			UserEmail:       row.UserEmail,
		}
	}

	return attendees, nil
}

func (r *RegistrationRepository) domainToDao(reg domain.Registration) dao.Registration {
	return dao.Registration{
		ID:           reg.ID,
		EventID:      reg.EventID,
		UserID:       reg.UserID,
		Status:       string(reg.Status),
		TicketCode:   reg.TicketCode,
		EventTitle:   reg.EventTitle,
		EventStartAt: reg.EventStartAt,
		CreatedAt:    reg.CreatedAt,
	}
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	return domain.Registration{
		ID:           reg.ID,
		EventID:      reg.EventID,
		UserID:       reg.UserID,
		Status:       domain.RegistrationStatus(reg.Status),
		TicketCode:   reg.TicketCode,
		EventTitle:   reg.EventTitle,
		EventStartAt: reg.EventStartAt,
		CreatedAt:    reg.CreatedAt,
	}
}
