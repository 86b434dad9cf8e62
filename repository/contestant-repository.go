package repository

import (
	"context"

	"gorm.io/gorm"
)

type Contestant struct {
	ID     int    `gorm:"primaryKey"`
	Name   string `gorm:"not null"`
	Number string `gorm:"null"`
}

type ContestantRepository struct {
	DB *gorm.DB
}

func NewContestantRepository(db *gorm.DB) *ContestantRepository {
	return &ContestantRepository{DB: db}
}

func (r *ContestantRepository) WithTx(tx *gorm.DB) *ContestantRepository {
	return &ContestantRepository{DB: tx}
}

func (r *ContestantRepository) GetContestants(ctx context.Context) ([]*Contestant, error) {
	contestants := make([]*Contestant, 0)
	result := r.DB.WithContext(ctx).Order("id ASC").Find(&contestants)
	if result.Error != nil {
		return nil, result.Error
	}
	return contestants, nil
}

func (r *ContestantRepository) GetContestantById(ctx context.Context, contestantId int) (*Contestant, error) {
	var contestant Contestant
	result := r.DB.WithContext(ctx).First(&contestant, "id = ?", contestantId)
	if result.Error != nil {
		return nil, notFound(result.Error, "contestant %d not found", contestantId)
	}
	return &contestant, nil
}

func (r *ContestantRepository) GetContestantsByIds(ctx context.Context, ids []int) (map[int]*Contestant, error) {
	contestants := make([]*Contestant, 0)
	result := r.DB.WithContext(ctx).Find(&contestants, "id IN ?", ids)
	if result.Error != nil {
		return nil, result.Error
	}
	contestantMap := make(map[int]*Contestant, len(contestants))
	for _, contestant := range contestants {
		contestantMap[contestant.ID] = contestant
	}
	return contestantMap, nil
}

func (r *ContestantRepository) SaveContestant(ctx context.Context, contestant *Contestant) (*Contestant, error) {
	result := r.DB.WithContext(ctx).Save(contestant)
	if result.Error != nil {
		return nil, result.Error
	}
	return contestant, nil
}
