package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JudgeAssignment places a judge on a category's panel. The panel is the
// quorum that has to sign before the category seals.
type JudgeAssignment struct {
	CategoryID int `gorm:"primaryKey"`
	JudgeID    int `gorm:"primaryKey"`
}

type JudgeAssignmentRepository struct {
	DB *gorm.DB
}

func NewJudgeAssignmentRepository(db *gorm.DB) *JudgeAssignmentRepository {
	return &JudgeAssignmentRepository{DB: db}
}

func (r *JudgeAssignmentRepository) WithTx(tx *gorm.DB) *JudgeAssignmentRepository {
	return &JudgeAssignmentRepository{DB: tx}
}

func (r *JudgeAssignmentRepository) IsAssignedJudge(ctx context.Context, categoryId int, judgeId int) (bool, error) {
	var count int64
	result := r.DB.WithContext(ctx).Model(&JudgeAssignment{}).
		Where("category_id = ? AND judge_id = ?", categoryId, judgeId).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *JudgeAssignmentRepository) RequiredJudges(ctx context.Context, categoryId int) ([]int, error) {
	judgeIds := make([]int, 0)
	result := r.DB.WithContext(ctx).Model(&JudgeAssignment{}).
		Where("category_id = ?", categoryId).
		Order("judge_id ASC").
		Pluck("judge_id", &judgeIds)
	if result.Error != nil {
		return nil, result.Error
	}
	return judgeIds, nil
}

func (r *JudgeAssignmentRepository) AssignJudges(ctx context.Context, categoryId int, judgeIds []int) error {
	if len(judgeIds) == 0 {
		return nil
	}
	assignments := make([]*JudgeAssignment, 0, len(judgeIds))
	for _, judgeId := range judgeIds {
		assignments = append(assignments, &JudgeAssignment{CategoryID: categoryId, JudgeID: judgeId})
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(assignments, len(assignments)).Error
}
