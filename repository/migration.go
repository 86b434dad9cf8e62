package repository

import (
	"log"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const Schema = "tabulator"

var enumQueries = []string{
	`CREATE TYPE tabulator.scoring_method AS ENUM ('AVERAGE', 'SUM', 'WEIGHTED')`,
	`CREATE TYPE tabulator.deduction_status AS ENUM ('PENDING', 'APPROVED', 'REJECTED')`,
}

// Migrate creates the schema and enum types and brings every table up to date.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(Schema)).Error; err != nil {
		return err
	}
	for _, query := range enumQueries {
		if err := db.Exec(query).Error; err != nil {
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			return err
		}
	}
	err := db.AutoMigrate(
		&Category{},
		&Criterion{},
		&Contestant{},
		&JudgeAssignment{},
		&Score{},
		&Deduction{},
		&CertificationRecord{},
	)
	if err != nil {
		return err
	}
	log.Println("Database schema is up to date")
	return nil
}
