package repository

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Competition struct {
	Id        int       `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Location  string    `gorm:"null"`
	StartDate time.Time `gorm:"null"`

	Categories []*Category `gorm:"foreignKey:CompetitionId;constraint:OnDelete:CASCADE"`
}

type Category struct {
	Id            int     `gorm:"primaryKey"`
	CompetitionId int     `gorm:"not null;references:competitions(id)"`
	Name          string  `gorm:"not null"`
	GroupName     *string `gorm:"null"`

	Competition *Competition `gorm:"foreignKey:CompetitionId;constraint:OnDelete:CASCADE"`
}

// CategoryPlacement is owned by the competition-management subsystem.
// This core only ever reads it.
type CategoryPlacement struct {
	Id            int  `gorm:"primaryKey"`
	CategoryId    int  `gorm:"not null;uniqueIndex;references:categories(id)"`
	FirstPlaceId  *int `gorm:"null;references:athletes(id)"`
	SecondPlaceId *int `gorm:"null;references:athletes(id)"`
	ThirdPlaceId  *int `gorm:"null;references:athletes(id)"`

	Category *Category `gorm:"foreignKey:CategoryId;constraint:OnDelete:CASCADE"`
}

// TeamPlacement records one placed team in a category, members included.
type TeamPlacement struct {
	Id         int           `gorm:"primaryKey"`
	CategoryId int           `gorm:"not null;references:categories(id)"`
	Rank       int           `gorm:"not null"`
	TeamName   string        `gorm:"not null"`
	MemberIds  pq.Int64Array `gorm:"type:integer[];not null"`

	Category *Category `gorm:"foreignKey:CategoryId;constraint:OnDelete:CASCADE"`
}

type Grade struct {
	Id    int    `gorm:"primaryKey"`
	Name  string `gorm:"not null"`
	Level int    `gorm:"not null"`
}

type Seminar struct {
	Id   int       `gorm:"primaryKey"`
	Name string    `gorm:"not null"`
	Date time.Time `gorm:"null"`
}

type CompetitionRepository struct {
	DB *gorm.DB
}

func NewCompetitionRepository(db *gorm.DB) *CompetitionRepository {
	return &CompetitionRepository{DB: db}
}

func (r *CompetitionRepository) GetCompetitions() ([]*Competition, error) {
	var competitions []*Competition
	result := r.DB.Order("start_date DESC").Find(&competitions)
	if result.Error != nil {
		return nil, result.Error
	}
	return competitions, nil
}

func (r *CompetitionRepository) GetCategoriesForCompetition(competitionId int) ([]*Category, error) {
	var categories []*Category
	result := r.DB.Find(&categories, "competition_id = ?", competitionId)
	if result.Error != nil {
		return nil, result.Error
	}
	return categories, nil
}

func (r *CompetitionRepository) GetCategoryById(categoryId int) (*Category, error) {
	var category Category
	result := r.DB.Preload("Competition").First(&category, categoryId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &category, nil
}

func (r *CompetitionRepository) GetGradeById(gradeId int) (*Grade, error) {
	var grade Grade
	result := r.DB.First(&grade, gradeId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &grade, nil
}

func (r *CompetitionRepository) GetSeminarById(seminarId int) (*Seminar, error) {
	var seminar Seminar
	result := r.DB.First(&seminar, seminarId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &seminar, nil
}

// GetPlacementsForAthlete returns every individual placement naming the athlete.
func (r *CompetitionRepository) GetPlacementsForAthlete(athleteId int) ([]*CategoryPlacement, error) {
	var placements []*CategoryPlacement
	result := r.DB.Preload("Category").Preload("Category.Competition").
		Find(&placements, "first_place_id = ? OR second_place_id = ? OR third_place_id = ?", athleteId, athleteId, athleteId)
	if result.Error != nil {
		return nil, result.Error
	}
	return placements, nil
}

// GetTeamPlacementsForAthlete returns every placed team the athlete was part of.
func (r *CompetitionRepository) GetTeamPlacementsForAthlete(athleteId int) ([]*TeamPlacement, error) {
	var placements []*TeamPlacement
	result := r.DB.Preload("Category").Preload("Category.Competition").
		Find(&placements, "? = ANY(member_ids)", athleteId)
	if result.Error != nil {
		return nil, result.Error
	}
	return placements, nil
}
