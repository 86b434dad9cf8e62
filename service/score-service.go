package service

import (
	"context"
	"strconv"

	"tabulator/app_error"
	"tabulator/metrics"
	"tabulator/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type ScoreSubmission struct {
	CategoryID   int     `validate:"gt=0"`
	ContestantID int     `validate:"gt=0"`
	JudgeID      int     `validate:"gt=0"`
	CriterionID  int     `validate:"gt=0"`
	Value        float64 `validate:"gte=0"`
	Comment      string  `validate:"max=2000"`
}

// ScoreService is the score ledger: one live value per (category, contestant,
// judge, criterion), last write wins until the category seals.
type ScoreService struct {
	db                      *gorm.DB
	scoreRepository         *repository.ScoreRepository
	categoryRepository      *repository.CategoryRepository
	contestantRepository    *repository.ContestantRepository
	certificationRepository *repository.CertificationRepository
	directory               JudgeDirectory
	guard                   MutationGuard
}

func NewScoreService(db *gorm.DB, directory JudgeDirectory, guard MutationGuard) *ScoreService {
	return &ScoreService{
		db:                      db,
		scoreRepository:         repository.NewScoreRepository(db),
		categoryRepository:      repository.NewCategoryRepository(db),
		contestantRepository:    repository.NewContestantRepository(db),
		certificationRepository: repository.NewCertificationRepository(db),
		directory:               directory,
		guard:                   guard,
	}
}

func (s *ScoreService) SubmitScore(ctx context.Context, actor Actor, submission ScoreSubmission) (score *repository.Score, err error) {
	ctx, span := startSpan(ctx, "ScoreService.SubmitScore",
		attribute.Int("category.id", submission.CategoryID),
		attribute.Int("contestant.id", submission.ContestantID),
		attribute.Int("judge.id", submission.JudgeID),
		attribute.Int("criterion.id", submission.CriterionID))
	defer func() { finish(span, "submit_score", err) }()

	if err := validateStruct(submission); err != nil {
		return nil, err
	}
	if !CanSubmitScore(actor, submission.JudgeID) {
		return nil, app_error.Authorization("actor %d cannot submit scores as judge %d", actor.ID, submission.JudgeID)
	}
	if _, err := s.categoryRepository.GetCategoryById(ctx, submission.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.contestantRepository.GetContestantById(ctx, submission.ContestantID); err != nil {
		return nil, err
	}
	if err := checkCriterion(ctx, s.categoryRepository, submission); err != nil {
		return nil, err
	}
	assigned, err := s.directory.IsAssignedJudge(ctx, submission.CategoryID, submission.JudgeID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, app_error.Authorization("judge %d is not assigned to category %d", submission.JudgeID, submission.CategoryID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.guard.GuardMutation(ctx, tx, submission.CategoryID); err != nil {
			return err
		}
		// criteria only change under the exclusive category lock
		if err := checkCriterion(ctx, s.categoryRepository.WithTx(tx), submission); err != nil {
			return err
		}
		signed, err := s.certificationRepository.WithTx(tx).HasSigned(ctx, submission.CategoryID, submission.JudgeID)
		if err != nil {
			return err
		}
		if signed {
			return app_error.Conflict("judge %d already signed category %d; their scores are certified", submission.JudgeID, submission.CategoryID)
		}
		score, err = s.scoreRepository.WithTx(tx).UpsertScore(ctx, &repository.Score{
			CategoryID:   submission.CategoryID,
			ContestantID: submission.ContestantID,
			JudgeID:      submission.JudgeID,
			CriterionID:  submission.CriterionID,
			Value:        submission.Value,
			Comment:      submission.Comment,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.ScoresSubmittedCounter.WithLabelValues(strconv.Itoa(submission.CategoryID)).Inc()
	return score, nil
}

// checkCriterion requires the criterion to belong to the category and the value
// to fit its range.
func checkCriterion(ctx context.Context, categories *repository.CategoryRepository, submission ScoreSubmission) error {
	criterion, err := categories.GetCriterionById(ctx, submission.CriterionID)
	if err != nil {
		return err
	}
	if criterion.CategoryID != submission.CategoryID {
		return app_error.NotFound("criterion %d not found in category %d", submission.CriterionID, submission.CategoryID)
	}
	if submission.Value > criterion.MaxScore {
		return app_error.Validation("value %g is outside [0, %g] for criterion %d", submission.Value, criterion.MaxScore, criterion.ID)
	}
	return nil
}

func (s *ScoreService) GetScoresFor(ctx context.Context, categoryId int, contestantId int) ([]*repository.Score, error) {
	if _, err := s.categoryRepository.GetCategoryById(ctx, categoryId); err != nil {
		return nil, err
	}
	if _, err := s.contestantRepository.GetContestantById(ctx, contestantId); err != nil {
		return nil, err
	}
	return s.scoreRepository.GetScoresFor(ctx, categoryId, contestantId)
}
