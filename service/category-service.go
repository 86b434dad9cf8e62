package service

import (
	"context"

	"tabulator/app_error"
	"tabulator/repository"

	"gorm.io/gorm"
)

type CriterionDefinition struct {
	Name     string  `validate:"required"`
	MaxScore float64 `validate:"gt=0"`
	Weight   float64 `validate:"gte=0"`
}

type CategoryDefinition struct {
	Name          string                   `validate:"required"`
	ScoringMethod repository.ScoringMethod `validate:"required,oneof=AVERAGE SUM WEIGHTED"`
	MinScore      float64
	MaxScore      float64
	ScoreCap      *float64
	Criteria      []CriterionDefinition `validate:"required,min=1,dive"`
}

func (d *CategoryDefinition) check() error {
	if err := validateStruct(d); err != nil {
		return err
	}
	if d.MaxScore <= d.MinScore {
		return app_error.Validation("maxScore %g must be greater than minScore %g", d.MaxScore, d.MinScore)
	}
	if d.ScoreCap != nil && *d.ScoreCap < d.MinScore {
		return app_error.Validation("scoreCap %g must not be below minScore %g", *d.ScoreCap, d.MinScore)
	}
	if d.ScoringMethod == repository.WEIGHTED {
		// a zero weight would let a scored criterion contribute nothing
		for _, criterion := range d.Criteria {
			if criterion.Weight <= 0 {
				return app_error.Validation("criterion %q of weighted category %q needs a weight above zero", criterion.Name, d.Name)
			}
		}
	}
	return nil
}

func (d *CategoryDefinition) criteria(categoryId int) []*repository.Criterion {
	criteria := make([]*repository.Criterion, 0, len(d.Criteria))
	for _, definition := range d.Criteria {
		criteria = append(criteria, &repository.Criterion{
			CategoryID: categoryId,
			Name:       definition.Name,
			MaxScore:   definition.MaxScore,
			Weight:     definition.Weight,
		})
	}
	return criteria
}

// CategoryService manages the competition configuration the engine scores
// against: categories with their criteria, contestants and judge panels.
type CategoryService struct {
	db                        *gorm.DB
	categoryRepository        *repository.CategoryRepository
	contestantRepository      *repository.ContestantRepository
	judgeAssignmentRepository *repository.JudgeAssignmentRepository
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{
		db:                        db,
		categoryRepository:        repository.NewCategoryRepository(db),
		contestantRepository:      repository.NewContestantRepository(db),
		judgeAssignmentRepository: repository.NewJudgeAssignmentRepository(db),
	}
}

func (s *CategoryService) CreateCategory(ctx context.Context, actor Actor, definition CategoryDefinition) (*repository.Category, error) {
	if !CanConfigureCompetition(actor.Role) {
		return nil, app_error.Authorization("role %q cannot configure categories", actor.Role)
	}
	if err := definition.check(); err != nil {
		return nil, err
	}
	var category *repository.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := s.categoryRepository.WithTx(tx)
		var err error
		category, err = categories.SaveCategory(ctx, &repository.Category{
			Name:          definition.Name,
			ScoringMethod: definition.ScoringMethod,
			MinScore:      definition.MinScore,
			MaxScore:      definition.MaxScore,
			ScoreCap:      definition.ScoreCap,
		})
		if err != nil {
			return err
		}
		category.Criteria = definition.criteria(category.ID)
		return categories.SaveCriteria(ctx, category.Criteria)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory replaces a category's configuration. Once any score exists
// the configuration is frozen.
func (s *CategoryService) UpdateCategory(ctx context.Context, actor Actor, categoryId int, definition CategoryDefinition) (*repository.Category, error) {
	if !CanConfigureCompetition(actor.Role) {
		return nil, app_error.Authorization("role %q cannot configure categories", actor.Role)
	}
	if err := definition.check(); err != nil {
		return nil, err
	}
	var category *repository.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := s.categoryRepository.WithTx(tx)
		var err error
		category, err = categories.LockCategory(ctx, categoryId, repository.LockUpdate)
		if err != nil {
			return err
		}
		scored, err := categories.HasScores(ctx, categoryId)
		if err != nil {
			return err
		}
		if scored || category.IsSealed() {
			return app_error.Conflict("category %d already has scores; its configuration is frozen", categoryId)
		}
		category.Name = definition.Name
		category.ScoringMethod = definition.ScoringMethod
		category.MinScore = definition.MinScore
		category.MaxScore = definition.MaxScore
		category.ScoreCap = definition.ScoreCap
		if _, err := categories.SaveCategory(ctx, category); err != nil {
			return err
		}
		if err := categories.DeleteCriteria(ctx, categoryId); err != nil {
			return err
		}
		category.Criteria = definition.criteria(categoryId)
		return categories.SaveCriteria(ctx, category.Criteria)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, categoryId int) (*repository.Category, error) {
	return s.categoryRepository.GetCategoryById(ctx, categoryId, "Criteria")
}

func (s *CategoryService) GetCategories(ctx context.Context) ([]*repository.Category, error) {
	return s.categoryRepository.GetCategories(ctx)
}

func (s *CategoryService) CreateContestant(ctx context.Context, actor Actor, contestant *repository.Contestant) (*repository.Contestant, error) {
	if !CanConfigureCompetition(actor.Role) {
		return nil, app_error.Authorization("role %q cannot register contestants", actor.Role)
	}
	if err := requireText("contestant name", contestant.Name); err != nil {
		return nil, err
	}
	contestant.ID = 0
	return s.contestantRepository.SaveContestant(ctx, contestant)
}

func (s *CategoryService) GetContestants(ctx context.Context) ([]*repository.Contestant, error) {
	return s.contestantRepository.GetContestants(ctx)
}

// AssignJudges adds judges to a category's panel. A sealed panel cannot grow,
// since the seal certifies the panel as it stood.
func (s *CategoryService) AssignJudges(ctx context.Context, actor Actor, categoryId int, judgeIds []int) error {
	if !CanConfigureCompetition(actor.Role) {
		return app_error.Authorization("role %q cannot assign judges", actor.Role)
	}
	for _, judgeId := range judgeIds {
		if judgeId <= 0 {
			return app_error.Validation("invalid judge id %d", judgeId)
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.categoryRepository.WithTx(tx).LockCategory(ctx, categoryId, repository.LockUpdate)
		if err != nil {
			return err
		}
		if category.IsSealed() {
			return app_error.Conflict("category %d is sealed; its judge panel is final", categoryId)
		}
		return s.judgeAssignmentRepository.WithTx(tx).AssignJudges(ctx, categoryId, judgeIds)
	})
}

func (s *CategoryService) GetJudges(ctx context.Context, categoryId int) ([]int, error) {
	if _, err := s.categoryRepository.GetCategoryById(ctx, categoryId); err != nil {
		return nil, err
	}
	return s.judgeAssignmentRepository.RequiredJudges(ctx, categoryId)
}
