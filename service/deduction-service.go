package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"tabulator/app_error"
	"tabulator/audit"
	"tabulator/metrics"
	"tabulator/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type DeductionRequest struct {
	CategoryID   int     `validate:"gt=0"`
	ContestantID int     `validate:"gt=0"`
	Points       float64 `validate:"gt=0"`
	Reason       string  `validate:"required,max=2000"`
}

// DeductionService runs point penalties through PENDING -> APPROVED | REJECTED.
// Only APPROVED deductions reach the result view.
type DeductionService struct {
	db                   *gorm.DB
	deductionRepository  *repository.DeductionRepository
	categoryRepository   *repository.CategoryRepository
	contestantRepository *repository.ContestantRepository
	guard                MutationGuard
	policy               Policy
	auditSink            audit.Sink
}

func NewDeductionService(db *gorm.DB, guard MutationGuard, policy Policy, auditSink audit.Sink) *DeductionService {
	return &DeductionService{
		db:                   db,
		deductionRepository:  repository.NewDeductionRepository(db),
		categoryRepository:   repository.NewCategoryRepository(db),
		contestantRepository: repository.NewContestantRepository(db),
		guard:                guard,
		policy:               policy,
		auditSink:            auditSink,
	}
}

func (s *DeductionService) RequestDeduction(ctx context.Context, actor Actor, request DeductionRequest) (deduction *repository.Deduction, err error) {
	ctx, span := startSpan(ctx, "DeductionService.RequestDeduction",
		attribute.Int("category.id", request.CategoryID),
		attribute.Int("contestant.id", request.ContestantID))
	defer func() { finish(span, "request_deduction", err) }()

	if err := validateStruct(request); err != nil {
		return nil, err
	}
	if math.IsInf(request.Points, 0) {
		return nil, app_error.Validation("points must be finite")
	}
	if err := requireText("reason", request.Reason); err != nil {
		return nil, err
	}
	if !CanRequestDeduction(actor.Role) {
		return nil, app_error.Authorization("role %q cannot request deductions", actor.Role)
	}
	if _, err := s.categoryRepository.GetCategoryById(ctx, request.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.contestantRepository.GetContestantById(ctx, request.ContestantID); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.guard.GuardMutation(ctx, tx, request.CategoryID); err != nil {
			return err
		}
		deduction, err = s.deductionRepository.WithTx(tx).CreateDeduction(ctx, &repository.Deduction{
			CategoryID:   request.CategoryID,
			ContestantID: request.ContestantID,
			Points:       request.Points,
			Reason:       request.Reason,
			RequestedBy:  actor.ID,
			Status:       repository.DeductionPending,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.DeductionsCounter.WithLabelValues(string(repository.DeductionPending)).Inc()
	emit(ctx, s.auditSink, audit.Record{
		Action:       audit.DeductionRequested,
		CategoryID:   deduction.CategoryID,
		ContestantID: intPtr(deduction.ContestantID),
		DeductionID:  intPtr(deduction.ID),
		ActorID:      actor.ID,
		ActorRole:    string(actor.Role),
		Detail:       fmt.Sprintf("%g points: %s", deduction.Points, deduction.Reason),
	})
	return deduction, nil
}

// ApproveDeduction resolves a PENDING deduction as APPROVED, recording the
// approver's signature.
func (s *DeductionService) ApproveDeduction(ctx context.Context, actor Actor, deductionId int, signature string) (deduction *repository.Deduction, err error) {
	ctx, span := startSpan(ctx, "DeductionService.ApproveDeduction", attribute.Int("deduction.id", deductionId))
	defer func() { finish(span, "approve_deduction", err) }()

	if err := requireText("signature", signature); err != nil {
		return nil, err
	}
	deduction, err = s.resolve(ctx, actor, deductionId, repository.DeductionApproved, map[string]any{
		"approved_by": signature,
	})
	if err != nil {
		return nil, err
	}
	emit(ctx, s.auditSink, audit.Record{
		Action:       audit.DeductionApproved,
		CategoryID:   deduction.CategoryID,
		ContestantID: intPtr(deduction.ContestantID),
		DeductionID:  intPtr(deduction.ID),
		ActorID:      actor.ID,
		ActorRole:    string(actor.Role),
		Detail:       fmt.Sprintf("%g points approved by %s", deduction.Points, signature),
	})
	return deduction, nil
}

func (s *DeductionService) RejectDeduction(ctx context.Context, actor Actor, deductionId int, reason string) (deduction *repository.Deduction, err error) {
	ctx, span := startSpan(ctx, "DeductionService.RejectDeduction", attribute.Int("deduction.id", deductionId))
	defer func() { finish(span, "reject_deduction", err) }()

	if err := requireText("rejection reason", reason); err != nil {
		return nil, err
	}
	deduction, err = s.resolve(ctx, actor, deductionId, repository.DeductionRejected, map[string]any{
		"rejection_reason": reason,
	})
	if err != nil {
		return nil, err
	}
	emit(ctx, s.auditSink, audit.Record{
		Action:       audit.DeductionRejected,
		CategoryID:   deduction.CategoryID,
		ContestantID: intPtr(deduction.ContestantID),
		DeductionID:  intPtr(deduction.ID),
		ActorID:      actor.ID,
		ActorRole:    string(actor.Role),
		Detail:       reason,
	})
	return deduction, nil
}

// resolve performs the PENDING compare-and-set under the category's mutation
// guard and returns the resolved row.
func (s *DeductionService) resolve(ctx context.Context, actor Actor, deductionId int, status repository.DeductionStatus, resolution map[string]any) (*repository.Deduction, error) {
	existing, err := s.deductionRepository.GetDeductionById(ctx, deductionId)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeResolution(actor, existing); err != nil {
		return nil, err
	}

	var resolved *repository.Deduction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.guard.GuardMutation(ctx, tx, existing.CategoryID); err != nil {
			return err
		}
		resolution["resolved_by"] = actor.ID
		resolution["resolved_at"] = time.Now()
		deductions := s.deductionRepository.WithTx(tx)
		ok, err := deductions.ResolveDeduction(ctx, deductionId, status, resolution)
		if err != nil {
			return err
		}
		if !ok {
			return app_error.Conflict("deduction %d already resolved", deductionId)
		}
		resolved, err = deductions.GetDeductionById(ctx, deductionId)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.DeductionsCounter.WithLabelValues(string(status)).Inc()
	return resolved, nil
}

func (s *DeductionService) GetDeduction(ctx context.Context, deductionId int) (*repository.Deduction, error) {
	return s.deductionRepository.GetDeductionById(ctx, deductionId)
}

func (s *DeductionService) GetDeductions(ctx context.Context, filter repository.DeductionFilter) ([]*repository.Deduction, error) {
	if _, err := s.categoryRepository.GetCategoryById(ctx, filter.CategoryID); err != nil {
		return nil, err
	}
	if filter.Status != nil {
		switch *filter.Status {
		case repository.DeductionPending, repository.DeductionApproved, repository.DeductionRejected:
		default:
			return nil, app_error.Validation("unknown deduction status %q", *filter.Status)
		}
	}
	return s.deductionRepository.GetDeductions(ctx, filter)
}
