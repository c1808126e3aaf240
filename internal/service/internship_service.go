package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/notification"
)

// InternshipStore is the catalog persistence surface.
// *repository.InternshipRepository implements it.
type InternshipStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, in *model.Internship) error
	GetByID(ctx context.Context, id int64) (*model.Internship, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Internship, error)
	ListOpen(ctx context.Context, filter model.InternshipFilter) ([]*model.Internship, error)
	ListByInstitution(ctx context.Context, institutionID int64) ([]*model.Internship, error)
	Update(ctx context.Context, in *model.Internship) error
	Delete(ctx context.Context, id int64) error
}

// ActiveReservationCounter is the slice of the reservation store the
// catalog needs to guard deletion.
type ActiveReservationCounter interface {
	CountActiveByInternship(ctx context.Context, internshipID int64) (int, error)
}

type CreateInternshipInput struct {
	Title       string
	Description string
	TotalSpots  int
	Period      string
	Shift       string
	MonthYear   string
	Address     string
	City        string
	Area        string
}

func (in CreateInternshipInput) validate() error {
	var missing []string
	for field, value := range map[string]string{
		"title":      in.Title,
		"period":     in.Period,
		"shift":      in.Shift,
		"month_year": in.MonthYear,
		"address":    in.Address,
		"city":       in.City,
		"area":       in.Area,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", model.ErrValidation, strings.Join(missing, ", "))
	}
	if in.TotalSpots < 1 {
		return fmt.Errorf("%w: total_spots must be at least 1", model.ErrValidation)
	}
	return nil
}

type UpdateInternshipInput struct {
	CreateInternshipInput
	Status model.InternshipStatus
}

func (in UpdateInternshipInput) validate() error {
	if err := in.CreateInternshipInput.validate(); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", model.ErrValidation, in.Status)
	}
	return nil
}

// InternshipService owns internship metadata. Capacity adjustments and
// deletion run through the same row lock as the reservation ledger so the
// spots invariant cannot be bypassed.
type InternshipService struct {
	internships  InternshipStore
	reservations ActiveReservationCounter
	notifier     notification.Notifier
	logger       *zap.Logger
}

func NewInternshipService(
	internships InternshipStore,
	reservations ActiveReservationCounter,
	notifier notification.Notifier,
	logger *zap.Logger,
) *InternshipService {
	return &InternshipService{
		internships:  internships,
		reservations: reservations,
		notifier:     notifier,
		logger:       logger,
	}
}

// ListOpen returns active internships with free spots for students to
// browse.
func (s *InternshipService) ListOpen(ctx context.Context, filter model.InternshipFilter) ([]*model.Internship, error) {
	return s.internships.ListOpen(ctx, filter)
}

// Get returns one internship with institution details.
func (s *InternshipService) Get(ctx context.Context, id int64) (*model.Internship, error) {
	internship, err := s.internships.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if internship == nil {
		return nil, model.ErrInternshipNotFound
	}
	return internship, nil
}

// ListByInstitution returns everything the institution has posted.
func (s *InternshipService) ListByInstitution(ctx context.Context, institutionID int64) ([]*model.Internship, error) {
	return s.internships.ListByInstitution(ctx, institutionID)
}

// Create posts a new internship with every spot available.
func (s *InternshipService) Create(ctx context.Context, institutionID int64, in CreateInternshipInput) (*model.Internship, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	internship := &model.Internship{
		InstitutionID:  institutionID,
		Title:          in.Title,
		Description:    in.Description,
		TotalSpots:     in.TotalSpots,
		AvailableSpots: in.TotalSpots,
		Period:         in.Period,
		Shift:          in.Shift,
		MonthYear:      in.MonthYear,
		Address:        in.Address,
		City:           in.City,
		Area:           in.Area,
		Status:         model.InternshipActive,
	}

	if err := s.internships.Create(ctx, internship); err != nil {
		return nil, err
	}

	s.logger.Info("internship created",
		zap.Int64("internship_id", internship.ID),
		zap.Int64("institution_id", institutionID),
		zap.Int("total_spots", internship.TotalSpots),
	)

	s.notifier.Publish(notification.Event{
		Type:    notification.EventInternshipCreated,
		Payload: internship,
	})

	return internship, nil
}

// Update edits metadata and, when total_spots changes, adjusts capacity:
// spots already committed to active reservations stay committed, and
// available = max(0, newTotal - held). Lowering capacity below the held
// count never revokes existing reservations.
func (s *InternshipService) Update(ctx context.Context, id, institutionID int64, in UpdateInternshipInput) (*model.Internship, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *model.Internship

	err := s.internships.WithTx(ctx, func(txCtx context.Context) error {
		internship, err := s.internships.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if internship == nil {
			return model.ErrInternshipNotFound
		}
		if internship.InstitutionID != institutionID {
			return model.ErrNotOwner
		}

		availableSpots := internship.AvailableSpots
		if in.TotalSpots != internship.TotalSpots {
			held := internship.HeldSpots()
			availableSpots = in.TotalSpots - held
			if availableSpots < 0 {
				availableSpots = 0
			}
		}

		internship.Title = in.Title
		internship.Description = in.Description
		internship.TotalSpots = in.TotalSpots
		internship.AvailableSpots = availableSpots
		internship.Period = in.Period
		internship.Shift = in.Shift
		internship.MonthYear = in.MonthYear
		internship.Address = in.Address
		internship.City = in.City
		internship.Area = in.Area
		if in.Status != "" {
			internship.Status = in.Status
		}

		if err := s.internships.Update(txCtx, internship); err != nil {
			return err
		}

		updated = internship
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("internship updated",
		zap.Int64("internship_id", id),
		zap.Int("total_spots", updated.TotalSpots),
		zap.Int("available_spots", updated.AvailableSpots),
	)

	s.notifier.Publish(notification.Event{
		Type: notification.EventCapacityChanged,
		Payload: notification.CapacityChange{
			InternshipID:   id,
			AvailableSpots: updated.AvailableSpots,
		},
	})

	return updated, nil
}

// Delete removes an internship. Refused while any reservation still holds
// a spot.
func (s *InternshipService) Delete(ctx context.Context, id, institutionID int64) error {
	err := s.internships.WithTx(ctx, func(txCtx context.Context) error {
		internship, err := s.internships.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if internship == nil {
			return model.ErrInternshipNotFound
		}
		if internship.InstitutionID != institutionID {
			return model.ErrNotOwner
		}

		active, err := s.reservations.CountActiveByInternship(txCtx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return model.ErrHasActiveReservations
		}

		return s.internships.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("internship deleted",
		zap.Int64("internship_id", id),
		zap.Int64("institution_id", institutionID),
	)

	s.notifier.Publish(notification.Event{
		Type:    notification.EventInternshipDeleted,
		Payload: map[string]int64{"internship_id": id},
	})

	return nil
}
