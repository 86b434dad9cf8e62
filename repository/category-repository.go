package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoringMethod string

const (
	AVERAGE  ScoringMethod = "AVERAGE"
	SUM      ScoringMethod = "SUM"
	WEIGHTED ScoringMethod = "WEIGHTED"
)

func (m ScoringMethod) Valid() bool {
	return m == AVERAGE || m == SUM || m == WEIGHTED
}

const (
	LockShare  = "SHARE"
	LockUpdate = "UPDATE"
)

type Category struct {
	ID            int           `gorm:"primaryKey"`
	Name          string        `gorm:"not null"`
	ScoringMethod ScoringMethod `gorm:"not null;type:tabulator.scoring_method"`
	MinScore      float64       `gorm:"not null;default:0"`
	MaxScore      float64       `gorm:"not null"`
	ScoreCap      *float64      `gorm:"null"`
	SealedAt      *time.Time    `gorm:"null"`
	CreatedAt     time.Time

	Criteria []*Criterion `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// UpperBound is the ceiling applied to a final score: the cap when set, the
// category maximum otherwise.
func (c *Category) UpperBound() float64 {
	if c.ScoreCap != nil {
		return *c.ScoreCap
	}
	return c.MaxScore
}

func (c *Category) IsSealed() bool {
	return c.SealedAt != nil
}

type Criterion struct {
	ID         int     `gorm:"primaryKey"`
	CategoryID int     `gorm:"not null;index"`
	Name       string  `gorm:"not null"`
	MaxScore   float64 `gorm:"not null"`
	Weight     float64 `gorm:"not null;default:1"`
}

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: tx}
}

func (r *CategoryRepository) GetCategoryById(ctx context.Context, categoryId int, preloads ...string) (*Category, error) {
	defer observeQuery("get_category")()
	var category Category
	query := r.DB.WithContext(ctx)
	for _, preload := range preloads {
		if preload == "Criteria" {
			query = query.Preload("Criteria", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
			continue
		}
		query = query.Preload(preload)
	}
	result := query.First(&category, "id = ?", categoryId)
	if result.Error != nil {
		return nil, notFound(result.Error, "category %d not found", categoryId)
	}
	return &category, nil
}

func (r *CategoryRepository) GetCategories(ctx context.Context) ([]*Category, error) {
	categories := make([]*Category, 0)
	result := r.DB.WithContext(ctx).Order("id ASC").Find(&categories)
	if result.Error != nil {
		return nil, result.Error
	}
	return categories, nil
}

// LockCategory reads the category row under a row lock. Mutations of scores and
// deductions take a SHARE lock; sealing takes an UPDATE lock so it excludes them.
func (r *CategoryRepository) LockCategory(ctx context.Context, categoryId int, strength string) (*Category, error) {
	defer observeQuery("lock_category")()
	var category Category
	result := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: strength}).
		First(&category, "id = ?", categoryId)
	if result.Error != nil {
		return nil, notFound(result.Error, "category %d not found", categoryId)
	}
	return &category, nil
}

func (r *CategoryRepository) MarkSealed(ctx context.Context, categoryId int, sealedAt time.Time) error {
	return r.DB.WithContext(ctx).
		Model(&Category{}).
		Where("id = ? AND sealed_at IS NULL", categoryId).
		Update("sealed_at", sealedAt).Error
}

func (r *CategoryRepository) SaveCategory(ctx context.Context, category *Category) (*Category, error) {
	result := r.DB.WithContext(ctx).Omit("Criteria").Save(category)
	if result.Error != nil {
		return nil, result.Error
	}
	return category, nil
}

func (r *CategoryRepository) GetCriteria(ctx context.Context, categoryId int) ([]*Criterion, error) {
	criteria := make([]*Criterion, 0)
	result := r.DB.WithContext(ctx).Where("category_id = ?", categoryId).Order("id ASC").Find(&criteria)
	if result.Error != nil {
		return nil, result.Error
	}
	return criteria, nil
}

func (r *CategoryRepository) GetCriterionById(ctx context.Context, criterionId int) (*Criterion, error) {
	var criterion Criterion
	result := r.DB.WithContext(ctx).First(&criterion, "id = ?", criterionId)
	if result.Error != nil {
		return nil, notFound(result.Error, "criterion %d not found", criterionId)
	}
	return &criterion, nil
}

func (r *CategoryRepository) SaveCriteria(ctx context.Context, criteria []*Criterion) error {
	if len(criteria) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Save(criteria).Error
}

func (r *CategoryRepository) HasScores(ctx context.Context, categoryId int) (bool, error) {
	var count int64
	result := r.DB.WithContext(ctx).Model(&Score{}).Where("category_id = ?", categoryId).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *CategoryRepository) DeleteCriteria(ctx context.Context, categoryId int) error {
	return r.DB.WithContext(ctx).Delete(&Criterion{}, "category_id = ?", categoryId).Error
}
