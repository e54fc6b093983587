package repository

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Permission = string

const (
	PermissionAdmin    Permission = "admin"
	PermissionReviewer Permission = "reviewer"
)

type User struct {
	Id          int            `gorm:"primaryKey"`
	DisplayName string         `gorm:"not null"`
	Permissions pq.StringArray `gorm:"type:text[]"`
	AthleteId   *int           `gorm:"null"`

	Athlete *Athlete `gorm:"foreignKey:AthleteId"`
}

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) GetUserById(userId int) (*User, error) {
	var user User
	result := r.DB.First(&user, userId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}
