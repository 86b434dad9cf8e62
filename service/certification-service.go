package service

import (
	"context"
	"log"
	"time"

	"tabulator/app_error"
	"tabulator/audit"
	"tabulator/metrics"
	"tabulator/repository"
	"tabulator/utils"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type SignOutcome struct {
	// Recorded is false when the judge had already signed.
	Recorded bool
	Sealed   bool
	// SealedNow is true only for the signature that completed the quorum.
	SealedNow bool
}

type CertificationStatus struct {
	CategoryID     int
	RequiredJudges []int
	SignedJudges   []int
	Records        []*repository.CertificationRecord
	SealedAt       *time.Time
}

func (s *CertificationStatus) IsSealed() bool {
	return s.SealedAt != nil
}

type CertificationService struct {
	db                      *gorm.DB
	categoryRepository      *repository.CategoryRepository
	certificationRepository *repository.CertificationRepository
	scoreRepository         *repository.ScoreRepository
	directory               JudgeDirectory
	auditSink               audit.Sink
}

func NewCertificationService(db *gorm.DB, directory JudgeDirectory, auditSink audit.Sink) *CertificationService {
	return &CertificationService{
		db:                      db,
		categoryRepository:      repository.NewCategoryRepository(db),
		certificationRepository: repository.NewCertificationRepository(db),
		scoreRepository:         repository.NewScoreRepository(db),
		directory:               directory,
		auditSink:               auditSink,
	}
}

// GuardMutation locks the category row for sharing within tx and fails when the
// category is sealed. Sealing needs the exclusive lock, so a write that passed
// the guard commits before any seal can land.
func (s *CertificationService) GuardMutation(ctx context.Context, tx *gorm.DB, categoryId int) (*repository.Category, error) {
	category, err := s.categoryRepository.WithTx(tx).LockCategory(ctx, categoryId, repository.LockShare)
	if err != nil {
		return nil, err
	}
	if category.IsSealed() {
		return nil, app_error.Conflict("category %d is sealed; its results are final", categoryId)
	}
	return category, nil
}

// Sign records the judge's signature and seals the category when it completes
// the quorum. Signing twice is a no-op.
func (s *CertificationService) Sign(ctx context.Context, actor Actor, categoryId int, judgeId int, signature string) (outcome *SignOutcome, err error) {
	ctx, span := startSpan(ctx, "CertificationService.Sign",
		attribute.Int("category.id", categoryId), attribute.Int("judge.id", judgeId))
	defer func() { finish(span, "sign", err) }()

	if err := requireText("signature", signature); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepository.GetCategoryById(ctx, categoryId); err != nil {
		return nil, err
	}
	assigned, err := s.directory.IsAssignedJudge(ctx, categoryId, judgeId)
	if err != nil {
		return nil, err
	}
	if !CanSign(actor, judgeId, assigned) {
		return nil, app_error.Authorization("judge %d cannot sign category %d", judgeId, categoryId)
	}

	outcome = &SignOutcome{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.categoryRepository.WithTx(tx).LockCategory(ctx, categoryId, repository.LockUpdate)
		if err != nil {
			return err
		}
		now := time.Now()
		outcome.Recorded, err = s.certificationRepository.WithTx(tx).RecordSignature(ctx, &repository.CertificationRecord{
			CategoryID: categoryId,
			JudgeID:    judgeId,
			Signature:  signature,
			SignedAt:   now,
		})
		if err != nil {
			return err
		}
		if outcome.Recorded {
			if err := s.scoreRepository.WithTx(tx).MarkSigned(ctx, categoryId, judgeId, now); err != nil {
				return err
			}
		}
		if category.IsSealed() {
			outcome.Sealed = true
			return nil
		}
		// panel changes take the same lock, so this is the panel being sealed
		required, err := s.directory.InTx(tx).RequiredJudges(ctx, categoryId)
		if err != nil {
			return err
		}
		signed, err := s.certificationRepository.WithTx(tx).GetSignedJudgeIds(ctx, categoryId)
		if err != nil {
			return err
		}
		if !quorumReached(required, signed) {
			return nil
		}
		if err := s.categoryRepository.WithTx(tx).MarkSealed(ctx, categoryId, now); err != nil {
			return err
		}
		outcome.Sealed = true
		outcome.SealedNow = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Recorded {
		metrics.SignaturesCounter.Inc()
		emit(ctx, s.auditSink, audit.Record{
			Action:     audit.CategorySigned,
			CategoryID: categoryId,
			JudgeID:    intPtr(judgeId),
			ActorID:    actor.ID,
			ActorRole:  string(actor.Role),
			Detail:     signature,
		})
	}
	if outcome.SealedNow {
		metrics.CategoriesSealedCounter.Inc()
		log.Printf("Category %d sealed by the signature of judge %d", categoryId, judgeId)
		emit(ctx, s.auditSink, audit.Record{
			Action:     audit.CategorySealed,
			CategoryID: categoryId,
			JudgeID:    intPtr(judgeId),
			ActorID:    actor.ID,
			ActorRole:  string(actor.Role),
		})
	}
	return outcome, nil
}

// quorumReached is true when every required judge has signed. An empty panel
// never reaches quorum.
func quorumReached(required []int, signed []int) bool {
	if len(required) == 0 {
		return false
	}
	signedSet := make(map[int]bool, len(signed))
	for _, judgeId := range signed {
		signedSet[judgeId] = true
	}
	for _, judgeId := range required {
		if !signedSet[judgeId] {
			return false
		}
	}
	return true
}

func (s *CertificationService) IsSealed(ctx context.Context, categoryId int) (bool, error) {
	category, err := s.categoryRepository.GetCategoryById(ctx, categoryId)
	if err != nil {
		return false, err
	}
	return category.IsSealed(), nil
}

func (s *CertificationService) GetCertificationStatus(ctx context.Context, categoryId int) (*CertificationStatus, error) {
	category, err := s.categoryRepository.GetCategoryById(ctx, categoryId)
	if err != nil {
		return nil, err
	}
	required, err := s.directory.RequiredJudges(ctx, categoryId)
	if err != nil {
		return nil, err
	}
	records, err := s.certificationRepository.GetRecords(ctx, categoryId)
	if err != nil {
		return nil, err
	}
	return &CertificationStatus{
		CategoryID:     categoryId,
		RequiredJudges: required,
		SignedJudges: utils.Map(records, func(record *repository.CertificationRecord) int {
			return record.JudgeID
		}),
		Records:  records,
		SealedAt: category.SealedAt,
	}, nil
}
