package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CertificationRecord is a judge's sign-off on a category. Its presence is the
// signature; the composite key prevents duplicates.
type CertificationRecord struct {
	CategoryID int       `gorm:"primaryKey"`
	JudgeID    int       `gorm:"primaryKey"`
	Signature  string    `gorm:"not null"`
	SignedAt   time.Time `gorm:"not null"`
}

type CertificationRepository struct {
	DB *gorm.DB
}

func NewCertificationRepository(db *gorm.DB) *CertificationRepository {
	return &CertificationRepository{DB: db}
}

func (r *CertificationRepository) WithTx(tx *gorm.DB) *CertificationRepository {
	return &CertificationRepository{DB: tx}
}

// RecordSignature inserts the record unless the judge already signed. It
// reports whether a new row was written.
func (r *CertificationRepository) RecordSignature(ctx context.Context, record *CertificationRecord) (bool, error) {
	defer observeQuery("record_signature")()
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *CertificationRepository) GetRecords(ctx context.Context, categoryId int) ([]*CertificationRecord, error) {
	records := make([]*CertificationRecord, 0)
	result := r.DB.WithContext(ctx).
		Where("category_id = ?", categoryId).
		Order("judge_id ASC").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

func (r *CertificationRepository) GetSignedJudgeIds(ctx context.Context, categoryId int) ([]int, error) {
	judgeIds := make([]int, 0)
	result := r.DB.WithContext(ctx).
		Model(&CertificationRecord{}).
		Where("category_id = ?", categoryId).
		Order("judge_id ASC").
		Pluck("judge_id", &judgeIds)
	if result.Error != nil {
		return nil, result.Error
	}
	return judgeIds, nil
}

func (r *CertificationRepository) HasSigned(ctx context.Context, categoryId int, judgeId int) (bool, error) {
	var count int64
	result := r.DB.WithContext(ctx).
		Model(&CertificationRecord{}).
		Where("category_id = ? AND judge_id = ?", categoryId, judgeId).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
