package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/notification"
)

// ReservationStore is the persistence surface the ledger needs for
// reservations. *repository.ReservationRepository implements it.
type ReservationStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	FindActive(ctx context.Context, studentID, internshipID int64) (*model.Reservation, error)
	CountActiveByStudent(ctx context.Context, studentID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus, resolvedAt *time.Time) error
	ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error)
	ListByInternship(ctx context.Context, internshipID int64) ([]*model.Reservation, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]*model.Reservation, error)
}

// CapacityStore is the slice of internship persistence the ledger mutates.
// GetForUpdate must lock the row until the enclosing transaction ends so
// concurrent operations on the same internship serialize.
type CapacityStore interface {
	GetForUpdate(ctx context.Context, id int64) (*model.Internship, error)
	UpdateSpots(ctx context.Context, id int64, totalSpots, availableSpots int) error
}

// ReservationService is the reservation ledger. It owns every transition
// that affects available_spots, so the invariant
// available == total - active reservations holds at all times.
type ReservationService struct {
	reservations ReservationStore
	internships  CapacityStore
	notifier     notification.Notifier
	logger       *zap.Logger
}

func NewReservationService(
	reservations ReservationStore,
	internships CapacityStore,
	notifier notification.Notifier,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		internships:  internships,
		notifier:     notifier,
		logger:       logger,
	}
}

// Reserve creates a pending reservation and takes one spot, atomically.
// Precondition order matters: availability is checked before the
// per-student limits so callers get the most actionable failure.
func (s *ReservationService) Reserve(ctx context.Context, internshipID, studentID int64) (*model.Reservation, error) {
	var (
		reservation *model.Reservation
		spotsLeft   int
	)

	err := s.reservations.WithTx(ctx, func(txCtx context.Context) error {
		internship, err := s.internships.GetForUpdate(txCtx, internshipID)
		if err != nil {
			return fmt.Errorf("get internship: %w", err)
		}
		if internship == nil || internship.Status != model.InternshipActive {
			return model.ErrInternshipUnavailable
		}
		if internship.AvailableSpots < 1 {
			return model.ErrInternshipUnavailable
		}

		existing, err := s.reservations.FindActive(txCtx, studentID, internshipID)
		if err != nil {
			return fmt.Errorf("find active reservation: %w", err)
		}
		if existing != nil {
			return model.ErrDuplicateReservation
		}

		active, err := s.reservations.CountActiveByStudent(txCtx, studentID)
		if err != nil {
			return fmt.Errorf("count active reservations: %w", err)
		}
		if active > 0 {
			return model.ErrReservationLimit
		}

		reservation = &model.Reservation{
			StudentID:    studentID,
			InternshipID: internshipID,
			Status:       model.ReservationPending,
		}
		if err := s.reservations.Create(txCtx, reservation); err != nil {
			return err
		}

		spotsLeft = internship.AvailableSpots - 1
		return s.internships.UpdateSpots(txCtx, internshipID, internship.TotalSpots, spotsLeft)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("spot reserved",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("internship_id", internshipID),
		zap.Int("available_spots", spotsLeft),
	)

	s.notifier.Publish(notification.Event{
		Type: notification.EventCapacityChanged,
		Payload: notification.CapacityChange{
			InternshipID:   internshipID,
			AvailableSpots: spotsLeft,
		},
	})

	return reservation, nil
}

// Release is the single restore path for a held spot. Students may cancel
// their own pending reservations; the owning institution may reject a
// pending or approved one. Either way the spot comes back exactly once.
func (s *ReservationService) Release(ctx context.Context, reservationID int64, principal model.Principal) error {
	var (
		internshipID int64
		spotsLeft    int
		finalStatus  model.ReservationStatus
	)

	err := s.reservations.WithTx(ctx, func(txCtx context.Context) error {
		reservation, err := s.reservations.GetByID(txCtx, reservationID)
		if err != nil {
			return fmt.Errorf("get reservation: %w", err)
		}
		if reservation == nil {
			return model.ErrReservationNotFound
		}
		internshipID = reservation.InternshipID

		// Lock the internship before touching state so releases serialize
		// with concurrent reserves on the same posting.
		internship, err := s.internships.GetForUpdate(txCtx, reservation.InternshipID)
		if err != nil {
			return fmt.Errorf("get internship: %w", err)
		}
		if internship == nil {
			return model.ErrInternshipNotFound
		}

		switch {
		case principal.Role == model.RoleStudent:
			if reservation.StudentID != principal.UserID {
				return model.ErrReservationNotFound
			}
			if reservation.Status == model.ReservationApproved {
				return model.ErrAlreadyApproved
			}
			if reservation.Status.Terminal() {
				return model.ErrAlreadyResolved
			}
			finalStatus = model.ReservationCancelled

		default: // institution owner (or admin acting on its behalf)
			if principal.Role != model.RoleAdmin && internship.InstitutionID != principal.UserID {
				return model.ErrNotOwner
			}
			if reservation.Status.Terminal() {
				return model.ErrAlreadyResolved
			}
			finalStatus = model.ReservationRejected
		}

		now := time.Now().UTC()
		if err := s.reservations.UpdateStatus(txCtx, reservation.ID, finalStatus, &now); err != nil {
			return err
		}

		spotsLeft = internship.AvailableSpots + 1
		if spotsLeft > internship.TotalSpots {
			// Capacity was lowered below the held count earlier; the spot
			// has nowhere to return to.
			spotsLeft = internship.TotalSpots
		}
		return s.internships.UpdateSpots(txCtx, internship.ID, internship.TotalSpots, spotsLeft)
	})
	if err != nil {
		return err
	}

	s.logger.Info("spot released",
		zap.Int64("reservation_id", reservationID),
		zap.Int64("internship_id", internshipID),
		zap.String("status", string(finalStatus)),
		zap.Int("available_spots", spotsLeft),
	)

	s.notifier.Publish(notification.Event{
		Type: notification.EventCapacityChanged,
		Payload: notification.CapacityChange{
			InternshipID:   internshipID,
			AvailableSpots: spotsLeft,
		},
	})

	return nil
}

// Approve locks a pending reservation in: the student can no longer
// self-cancel, only the institution can release it. No capacity change;
// the spot was taken at Reserve time.
func (s *ReservationService) Approve(ctx context.Context, reservationID int64, principal model.Principal) error {
	err := s.reservations.WithTx(ctx, func(txCtx context.Context) error {
		reservation, _, err := s.getOwned(txCtx, reservationID, principal)
		if err != nil {
			return err
		}

		if reservation.Status == model.ReservationApproved {
			return model.ErrAlreadyApproved
		}
		if reservation.Status.Terminal() {
			return model.ErrAlreadyResolved
		}

		return s.reservations.UpdateStatus(txCtx, reservation.ID, model.ReservationApproved, nil)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reservation approved",
		zap.Int64("reservation_id", reservationID),
		zap.Int64("institution_id", principal.UserID),
	)

	return nil
}

// Complete marks an approved reservation as carried out. Terminal; no
// capacity change.
func (s *ReservationService) Complete(ctx context.Context, reservationID int64, principal model.Principal) error {
	err := s.reservations.WithTx(ctx, func(txCtx context.Context) error {
		reservation, _, err := s.getOwned(txCtx, reservationID, principal)
		if err != nil {
			return err
		}

		if reservation.Status.Terminal() {
			return model.ErrAlreadyResolved
		}
		if reservation.Status != model.ReservationApproved {
			return model.ErrInvalidTransition
		}

		now := time.Now().UTC()
		return s.reservations.UpdateStatus(txCtx, reservation.ID, model.ReservationCompleted, &now)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reservation completed",
		zap.Int64("reservation_id", reservationID),
		zap.Int64("institution_id", principal.UserID),
	)

	return nil
}

// getOwned loads a reservation and its internship under the row lock and
// verifies the principal owns the internship.
func (s *ReservationService) getOwned(ctx context.Context, reservationID int64, principal model.Principal) (*model.Reservation, *model.Internship, error) {
	reservation, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, nil, fmt.Errorf("get reservation: %w", err)
	}
	if reservation == nil {
		return nil, nil, model.ErrReservationNotFound
	}

	internship, err := s.internships.GetForUpdate(ctx, reservation.InternshipID)
	if err != nil {
		return nil, nil, fmt.Errorf("get internship: %w", err)
	}
	if internship == nil {
		return nil, nil, model.ErrInternshipNotFound
	}
	if principal.Role != model.RoleAdmin && internship.InstitutionID != principal.UserID {
		return nil, nil, model.ErrNotOwner
	}

	return reservation, internship, nil
}

// ReleaseExpired cancels pending reservations older than ttl and restores
// their spots. Each reservation goes through the regular release
// transaction so conservation holds even if one release fails.
func (s *ReservationService) ReleaseExpired(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)

	expired, err := s.reservations.ListExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list expired reservations: %w", err)
	}

	released := 0
	for _, res := range expired {
		err := s.reservations.WithTx(ctx, func(txCtx context.Context) error {
			reservation, err := s.reservations.GetByID(txCtx, res.ID)
			if err != nil {
				return fmt.Errorf("get reservation: %w", err)
			}
			// Someone may have resolved it between the scan and now.
			if reservation == nil || reservation.Status != model.ReservationPending {
				return nil
			}

			internship, err := s.internships.GetForUpdate(txCtx, reservation.InternshipID)
			if err != nil {
				return fmt.Errorf("get internship: %w", err)
			}
			if internship == nil {
				return model.ErrInternshipNotFound
			}

			now := time.Now().UTC()
			if err := s.reservations.UpdateStatus(txCtx, reservation.ID, model.ReservationCancelled, &now); err != nil {
				return err
			}

			spots := internship.AvailableSpots + 1
			if spots > internship.TotalSpots {
				spots = internship.TotalSpots
			}
			if err := s.internships.UpdateSpots(txCtx, internship.ID, internship.TotalSpots, spots); err != nil {
				return err
			}

			released++
			s.notifier.Publish(notification.Event{
				Type: notification.EventCapacityChanged,
				Payload: notification.CapacityChange{
					InternshipID:   internship.ID,
					AvailableSpots: spots,
				},
			})
			return nil
		})
		if err != nil {
			s.logger.Error("failed to release expired reservation",
				zap.Int64("reservation_id", res.ID),
				zap.Error(err),
			)
		}
	}

	if released > 0 {
		s.logger.Info("expired reservations released", zap.Int("count", released))
	}

	return released, nil
}

// ListByStudent returns the student's reservation history.
func (s *ReservationService) ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error) {
	return s.reservations.ListByStudent(ctx, studentID)
}

// ListByInternship returns the roster for an internship, owner only.
func (s *ReservationService) ListByInternship(ctx context.Context, internshipID int64, principal model.Principal) ([]*model.Reservation, error) {
	var roster []*model.Reservation

	err := s.reservations.WithTx(ctx, func(txCtx context.Context) error {
		internship, err := s.internships.GetForUpdate(txCtx, internshipID)
		if err != nil {
			return fmt.Errorf("get internship: %w", err)
		}
		if internship == nil {
			return model.ErrInternshipNotFound
		}
		if principal.Role != model.RoleAdmin && internship.InstitutionID != principal.UserID {
			return model.ErrNotOwner
		}

		roster, err = s.reservations.ListByInternship(txCtx, internshipID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return roster, nil
}
