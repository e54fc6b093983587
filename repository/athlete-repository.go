package repository

import (
	"gorm.io/gorm"
)

type Club struct {
	Id   int    `gorm:"primaryKey"`
	Name string `gorm:"not null"`
	City string `gorm:"null"`
}

type Athlete struct {
	Id        int    `gorm:"primaryKey"`
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	ClubId    *int   `gorm:"null"`

	Club *Club `gorm:"foreignKey:ClubId"`
}

func (a *Athlete) FullName() string {
	return a.FirstName + " " + a.LastName
}

type AthleteRepository struct {
	DB *gorm.DB
}

func NewAthleteRepository(db *gorm.DB) *AthleteRepository {
	return &AthleteRepository{DB: db}
}

func (r *AthleteRepository) GetAthleteById(athleteId int) (*Athlete, error) {
	var athlete Athlete
	result := r.DB.Preload("Club").First(&athlete, athleteId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &athlete, nil
}
