package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type DeductionStatus string

const (
	DeductionPending  DeductionStatus = "PENDING"
	DeductionApproved DeductionStatus = "APPROVED"
	DeductionRejected DeductionStatus = "REJECTED"
)

type Deduction struct {
	ID              int             `gorm:"primaryKey"`
	CategoryID      int             `gorm:"not null;index:idx_deduction_category_contestant,priority:1"`
	ContestantID    int             `gorm:"not null;index:idx_deduction_category_contestant,priority:2"`
	Points          float64         `gorm:"not null;check:points > 0"`
	Reason          string          `gorm:"not null"`
	RequestedBy     int             `gorm:"not null"`
	Status          DeductionStatus `gorm:"not null;type:tabulator.deduction_status;default:'PENDING'"`
	ApprovedBy      *string         `gorm:"null"`
	RejectionReason *string         `gorm:"null"`
	ResolvedBy      *int            `gorm:"null"`
	ResolvedAt      *time.Time      `gorm:"null"`
	CreatedAt       time.Time
}

func (d *Deduction) IsResolved() bool {
	return d.Status != DeductionPending
}

type DeductionFilter struct {
	CategoryID   int
	ContestantID *int
	Status       *DeductionStatus
}

type DeductionRepository struct {
	DB *gorm.DB
}

func NewDeductionRepository(db *gorm.DB) *DeductionRepository {
	return &DeductionRepository{DB: db}
}

func (r *DeductionRepository) WithTx(tx *gorm.DB) *DeductionRepository {
	return &DeductionRepository{DB: tx}
}

func (r *DeductionRepository) CreateDeduction(ctx context.Context, deduction *Deduction) (*Deduction, error) {
	defer observeQuery("create_deduction")()
	result := r.DB.WithContext(ctx).Create(deduction)
	if result.Error != nil {
		return nil, result.Error
	}
	return deduction, nil
}

func (r *DeductionRepository) GetDeductionById(ctx context.Context, deductionId int) (*Deduction, error) {
	var deduction Deduction
	result := r.DB.WithContext(ctx).First(&deduction, "id = ?", deductionId)
	if result.Error != nil {
		return nil, notFound(result.Error, "deduction %d not found", deductionId)
	}
	return &deduction, nil
}

func (r *DeductionRepository) GetDeductions(ctx context.Context, filter DeductionFilter) ([]*Deduction, error) {
	deductions := make([]*Deduction, 0)
	query := r.DB.WithContext(ctx).Where("category_id = ?", filter.CategoryID)
	if filter.ContestantID != nil {
		query = query.Where("contestant_id = ?", *filter.ContestantID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	result := query.Order("id ASC").Find(&deductions)
	if result.Error != nil {
		return nil, result.Error
	}
	return deductions, nil
}

// ResolveDeduction moves a PENDING deduction to a terminal status. The update
// only matches while the row is still PENDING, so of several concurrent
// resolutions exactly one reports true.
func (r *DeductionRepository) ResolveDeduction(ctx context.Context, deductionId int, status DeductionStatus, resolution map[string]any) (bool, error) {
	defer observeQuery("resolve_deduction")()
	updates := map[string]any{"status": status}
	for column, value := range resolution {
		updates[column] = value
	}
	result := r.DB.WithContext(ctx).
		Model(&Deduction{}).
		Where("id = ? AND status = ?", deductionId, DeductionPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

type ContestantPoints struct {
	ContestantID int
	Points       float64
}

func (r *DeductionRepository) GetApprovedPoints(ctx context.Context, categoryId int, contestantId int) (float64, error) {
	var points float64
	result := r.DB.WithContext(ctx).
		Model(&Deduction{}).
		Select("COALESCE(SUM(points), 0)").
		Where("category_id = ? AND contestant_id = ? AND status = ?", categoryId, contestantId, DeductionApproved).
		Scan(&points)
	if result.Error != nil {
		return 0, result.Error
	}
	return points, nil
}

func (r *DeductionRepository) GetApprovedPointsByContestant(ctx context.Context, categoryId int) (map[int]float64, error) {
	rows := make([]ContestantPoints, 0)
	result := r.DB.WithContext(ctx).
		Model(&Deduction{}).
		Select("contestant_id, SUM(points) AS points").
		Where("category_id = ? AND status = ?", categoryId, DeductionApproved).
		Group("contestant_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	points := make(map[int]float64, len(rows))
	for _, row := range rows {
		points[row.ContestantID] = row.Points
	}
	return points, nil
}

// GetContestantIds lists every contestant that has any deduction in the category.
func (r *DeductionRepository) GetContestantIds(ctx context.Context, categoryId int) ([]int, error) {
	ids := make([]int, 0)
	result := r.DB.WithContext(ctx).
		Model(&Deduction{}).
		Where("category_id = ?", categoryId).
		Distinct().
		Pluck("contestant_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}
