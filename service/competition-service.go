package service

import (
	"fedman/app_error"
	"fedman/repository"

	"gorm.io/gorm"
)

type CompetitionService struct {
	competitionRepository *repository.CompetitionRepository
}

func NewCompetitionService(db *gorm.DB) *CompetitionService {
	return &CompetitionService{
		competitionRepository: repository.NewCompetitionRepository(db),
	}
}

func (s *CompetitionService) GetCompetitions() ([]*repository.Competition, error) {
	competitions, err := s.competitionRepository.GetCompetitions()
	if err != nil {
		return nil, app_error.Internal(err)
	}
	return competitions, nil
}

func (s *CompetitionService) GetCategoriesForCompetition(competitionId int) ([]*repository.Category, error) {
	// an unknown competition just lists as empty, the lookup is not a
	// 404 surface
	categories, err := s.competitionRepository.GetCategoriesForCompetition(competitionId)
	if err != nil {
		return nil, app_error.Internal(err)
	}
	return categories, nil
}
