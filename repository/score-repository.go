package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Score is one judge's raw value for one criterion of one contestant. The
// natural key (category, contestant, judge, criterion) is unique; resubmitting
// overwrites the value.
type Score struct {
	ID           int        `gorm:"primaryKey"`
	CategoryID   int        `gorm:"not null;uniqueIndex:idx_score_natural_key,priority:1"`
	ContestantID int        `gorm:"not null;uniqueIndex:idx_score_natural_key,priority:2"`
	JudgeID      int        `gorm:"not null;uniqueIndex:idx_score_natural_key,priority:3"`
	CriterionID  int        `gorm:"not null;uniqueIndex:idx_score_natural_key,priority:4"`
	Value        float64    `gorm:"not null;check:value >= 0"`
	Comment      string     `gorm:"not null;default:''"`
	IsSigned     bool       `gorm:"not null;default:false"`
	SignedAt     *time.Time `gorm:"null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var scoreNaturalKey = []clause.Column{
	{Name: "category_id"},
	{Name: "contestant_id"},
	{Name: "judge_id"},
	{Name: "criterion_id"},
}

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

func (r *ScoreRepository) WithTx(tx *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: tx}
}

// UpsertScore writes the score in a single INSERT ... ON CONFLICT statement and
// returns the stored row.
func (r *ScoreRepository) UpsertScore(ctx context.Context, score *Score) (*Score, error) {
	defer observeQuery("upsert_score")()
	now := time.Now()
	row := &Score{
		CategoryID:   score.CategoryID,
		ContestantID: score.ContestantID,
		JudgeID:      score.JudgeID,
		CriterionID:  score.CriterionID,
		Value:        score.Value,
		Comment:      score.Comment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	result := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   scoreNaturalKey,
		DoUpdates: clause.AssignmentColumns([]string{"value", "comment", "updated_at"}),
	}).Create(row)
	if result.Error != nil {
		return nil, result.Error
	}
	return r.GetScore(ctx, score.CategoryID, score.ContestantID, score.JudgeID, score.CriterionID)
}

func (r *ScoreRepository) GetScore(ctx context.Context, categoryId, contestantId, judgeId, criterionId int) (*Score, error) {
	var score Score
	result := r.DB.WithContext(ctx).First(&score,
		"category_id = ? AND contestant_id = ? AND judge_id = ? AND criterion_id = ?",
		categoryId, contestantId, judgeId, criterionId)
	if result.Error != nil {
		return nil, notFound(result.Error, "score not found")
	}
	return &score, nil
}

func (r *ScoreRepository) GetScoresFor(ctx context.Context, categoryId int, contestantId int) ([]*Score, error) {
	defer observeQuery("get_scores_for")()
	scores := make([]*Score, 0)
	result := r.DB.WithContext(ctx).
		Where("category_id = ? AND contestant_id = ?", categoryId, contestantId).
		Order("criterion_id ASC, judge_id ASC").
		Find(&scores)
	if result.Error != nil {
		return nil, result.Error
	}
	return scores, nil
}

func (r *ScoreRepository) GetScoresForCategory(ctx context.Context, categoryId int) ([]*Score, error) {
	defer observeQuery("get_scores_for_category")()
	scores := make([]*Score, 0)
	result := r.DB.WithContext(ctx).
		Where("category_id = ?", categoryId).
		Order("contestant_id ASC, criterion_id ASC, judge_id ASC").
		Find(&scores)
	if result.Error != nil {
		return nil, result.Error
	}
	return scores, nil
}

// MarkSigned flags every score the judge submitted in the category as signed.
func (r *ScoreRepository) MarkSigned(ctx context.Context, categoryId int, judgeId int, signedAt time.Time) error {
	return r.DB.WithContext(ctx).
		Model(&Score{}).
		Where("category_id = ? AND judge_id = ? AND is_signed = ?", categoryId, judgeId, false).
		Updates(map[string]any{"is_signed": true, "signed_at": signedAt}).Error
}
