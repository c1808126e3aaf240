package service

import (
	"context"

	"github.com/vagago/internmatch/internal/model"
)

// StatsStore serves the dashboard aggregates.
// *repository.StatsRepository implements it.
type StatsStore interface {
	AdminStats(ctx context.Context) (*model.AdminStats, error)
	ReservationsByMonth(ctx context.Context) ([]model.MonthCount, error)
	InternshipsByArea(ctx context.Context) ([]model.AreaCount, error)
	MostActiveInstitutions(ctx context.Context) ([]model.InstitutionActivity, error)
	InstitutionStats(ctx context.Context, institutionID int64) (*model.InstitutionStats, error)
	StudentStats(ctx context.Context, studentID int64) (*model.StudentStats, error)
}

type StatsService struct {
	stats StatsStore
}

func NewStatsService(stats StatsStore) *StatsService {
	return &StatsService{stats: stats}
}

func (s *StatsService) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	return s.stats.AdminStats(ctx)
}

func (s *StatsService) AdminCharts(ctx context.Context) (*model.AdminCharts, error) {
	byMonth, err := s.stats.ReservationsByMonth(ctx)
	if err != nil {
		return nil, err
	}
	byArea, err := s.stats.InternshipsByArea(ctx)
	if err != nil {
		return nil, err
	}
	institutions, err := s.stats.MostActiveInstitutions(ctx)
	if err != nil {
		return nil, err
	}

	return &model.AdminCharts{
		ReservationsByMonth: byMonth,
		InternshipsByArea:   byArea,
		ActiveInstitutions:  institutions,
	}, nil
}

func (s *StatsService) InstitutionStats(ctx context.Context, institutionID int64) (*model.InstitutionStats, error) {
	return s.stats.InstitutionStats(ctx, institutionID)
}

func (s *StatsService) StudentStats(ctx context.Context, studentID int64) (*model.StudentStats, error) {
	return s.stats.StudentStats(ctx, studentID)
}
