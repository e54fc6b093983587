package config

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var enumQueries = []string{
	`CREATE TYPE fed.submission_kind AS ENUM ('GRADE_EXAM', 'SEMINAR_PARTICIPATION', 'COMPETITION_RESULT')`,
	`CREATE TYPE fed.submission_status AS ENUM ('PENDING', 'APPROVED', 'REJECTED', 'REVISION_REQUESTED')`,
	`CREATE TYPE fed.result_type AS ENUM ('INDIVIDUAL', 'TEAM')`,
}

// One pending submission per (athlete, kind, target). Enforced in the
// database so two concurrent submits cannot both pass the check.
const onePendingIndexQuery = `CREATE UNIQUE INDEX IF NOT EXISTS submissions_one_pending
	ON fed.submissions (athlete_id, kind, target_id) WHERE status = 'PENDING'`

func InitDB(host string, port string, user string, password string, dbName string, models ...any) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbName)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   "fed.",
			SingularTable: false,
		},
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, Migrate(db, models...)
}

// Migrate creates the schema, enum types, tables and the partial unique
// index backing the duplicate-pending rule.
func Migrate(db *gorm.DB, models ...any) error {
	x := db.Exec(`CREATE SCHEMA IF NOT EXISTS fed`)
	if x.Error != nil {
		return x.Error
	}
	for _, query := range enumQueries {
		x := db.Exec(query)
		if x.Error != nil {
			if strings.Contains(x.Error.Error(), "already exists") {
				continue
			}
			return x.Error
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	return db.Exec(onePendingIndexQuery).Error
}
