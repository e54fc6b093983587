package service

import (
	"errors"
	"time"

	"fedman/app_error"
	"fedman/metrics"
	"fedman/reconcile"
	"fedman/repository"

	"gorm.io/gorm"
)

type AthleteResults struct {
	Athlete *repository.Athlete
	Results []*reconcile.Result
	Tally   reconcile.MedalTally
}

type AthleteService struct {
	athleteRepository     *repository.AthleteRepository
	submissionRepository  *repository.SubmissionRepository
	competitionRepository *repository.CompetitionRepository
}

func NewAthleteService(db *gorm.DB) *AthleteService {
	return &AthleteService{
		athleteRepository:     repository.NewAthleteRepository(db),
		submissionRepository:  repository.NewSubmissionRepository(db),
		competitionRepository: repository.NewCompetitionRepository(db),
	}
}

func (s *AthleteService) GetAthleteById(athleteId int) (*repository.Athlete, error) {
	athlete, err := s.athleteRepository.GetAthleteById(athleteId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NotFound("athlete", athleteId)
		}
		return nil, app_error.Internal(err)
	}
	return athlete, nil
}

// GetReconciledResults recomputes the merged result view from the current
// submission and placement snapshot. Nothing here is cached.
func (s *AthleteService) GetReconciledResults(athleteId int) (*AthleteResults, error) {
	athlete, err := s.GetAthleteById(athleteId)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissionRepository.GetCompetitionResultsForAthlete(athleteId)
	if err != nil {
		return nil, app_error.Internal(err)
	}
	placements, err := s.competitionRepository.GetPlacementsForAthlete(athleteId)
	if err != nil {
		return nil, app_error.Internal(err)
	}
	teamPlacements, err := s.competitionRepository.GetTeamPlacementsForAthlete(athleteId)
	if err != nil {
		return nil, app_error.Internal(err)
	}

	start := time.Now()
	results := reconcile.Reconcile(athleteId, submissions, placements, teamPlacements)
	tally := reconcile.CountMedals(results)
	metrics.ReconcileDuration.Observe(time.Since(start).Seconds())

	return &AthleteResults{
		Athlete: athlete,
		Results: results,
		Tally:   tally,
	}, nil
}
