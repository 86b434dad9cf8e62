package service

import (
	"context"
	"database/sql"

	"tabulator/metrics"
	"tabulator/repository"
	"tabulator/scoring"
	"tabulator/utils"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

var snapshotOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// ResultService composes results from the current ledger and approved
// deductions on every call. Nothing is cached: scores change until sealing and
// deductions can be approved after a total was first read.
type ResultService struct {
	db                   *gorm.DB
	categoryRepository   *repository.CategoryRepository
	contestantRepository *repository.ContestantRepository
	scoreRepository      *repository.ScoreRepository
	deductionRepository  *repository.DeductionRepository
}

func NewResultService(db *gorm.DB) *ResultService {
	return &ResultService{
		db:                   db,
		categoryRepository:   repository.NewCategoryRepository(db),
		contestantRepository: repository.NewContestantRepository(db),
		scoreRepository:      repository.NewScoreRepository(db),
		deductionRepository:  repository.NewDeductionRepository(db),
	}
}

// GetResult reads scores and approved deductions from one snapshot so the
// total and the deductions always describe the same moment.
func (s *ResultService) GetResult(ctx context.Context, categoryId int, contestantId int) (result *scoring.Result, err error) {
	ctx, span := startSpan(ctx, "ResultService.GetResult",
		attribute.Int("category.id", categoryId), attribute.Int("contestant.id", contestantId))
	defer func() { finish(span, "get_result", err) }()
	timer := prometheus.NewTimer(metrics.ResultComputationDuration.WithLabelValues("contestant"))
	defer timer.ObserveDuration()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.categoryRepository.WithTx(tx).GetCategoryById(ctx, categoryId, "Criteria")
		if err != nil {
			return err
		}
		if _, err := s.contestantRepository.WithTx(tx).GetContestantById(ctx, contestantId); err != nil {
			return err
		}
		scores, err := s.scoreRepository.WithTx(tx).GetScoresFor(ctx, categoryId, contestantId)
		if err != nil {
			return err
		}
		deductionPoints, err := s.deductionRepository.WithTx(tx).GetApprovedPoints(ctx, categoryId, contestantId)
		if err != nil {
			return err
		}
		rawTotal, err := scoring.Aggregate(category.ScoringMethod, category.Criteria, scores)
		if err != nil {
			return err
		}
		composed := scoring.ComposeResult(category, rawTotal, deductionPoints)
		result = &composed
		return nil
	}, snapshotOptions)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetCategoryResults ranks every contestant that has scores or deductions in
// the category.
func (s *ResultService) GetCategoryResults(ctx context.Context, categoryId int) (standings []*scoring.Standing, err error) {
	ctx, span := startSpan(ctx, "ResultService.GetCategoryResults", attribute.Int("category.id", categoryId))
	defer func() { finish(span, "get_category_results", err) }()
	timer := prometheus.NewTimer(metrics.ResultComputationDuration.WithLabelValues("category"))
	defer timer.ObserveDuration()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.categoryRepository.WithTx(tx).GetCategoryById(ctx, categoryId, "Criteria")
		if err != nil {
			return err
		}
		scores, err := s.scoreRepository.WithTx(tx).GetScoresForCategory(ctx, categoryId)
		if err != nil {
			return err
		}
		deductions := s.deductionRepository.WithTx(tx)
		deductionPoints, err := deductions.GetApprovedPointsByContestant(ctx, categoryId)
		if err != nil {
			return err
		}
		deductedContestants, err := deductions.GetContestantIds(ctx, categoryId)
		if err != nil {
			return err
		}

		scoresByContestant := make(map[int][]*repository.Score)
		for _, score := range scores {
			scoresByContestant[score.ContestantID] = append(scoresByContestant[score.ContestantID], score)
		}
		contestantIds := utils.Uniques(append(utils.Keys(scoresByContestant), deductedContestants...))

		standings = make([]*scoring.Standing, 0, len(contestantIds))
		for _, contestantId := range contestantIds {
			rawTotal, err := scoring.Aggregate(category.ScoringMethod, category.Criteria, scoresByContestant[contestantId])
			if err != nil {
				return err
			}
			standings = append(standings, &scoring.Standing{
				ContestantID: contestantId,
				Result:       scoring.ComposeResult(category, rawTotal, deductionPoints[contestantId]),
			})
		}
		return nil
	}, snapshotOptions)
	if err != nil {
		return nil, err
	}
	return scoring.RankStandings(standings), nil
}
