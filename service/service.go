package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tabulator/app_error"
	"tabulator/audit"
	"tabulator/metrics"
	"tabulator/repository"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("tabulator/service")

var validate = validator.New()

// JudgeDirectory answers which judges sit on a category's panel. InTx returns
// a directory that reads through tx, so the panel seen under a category lock is
// the one that lock protects.
type JudgeDirectory interface {
	IsAssignedJudge(ctx context.Context, categoryId int, judgeId int) (bool, error)
	RequiredJudges(ctx context.Context, categoryId int) ([]int, error)
	InTx(tx *gorm.DB) JudgeDirectory
}

type judgePanel struct {
	*repository.JudgeAssignmentRepository
}

// NewJudgeDirectory serves panels from the judge assignment table.
func NewJudgeDirectory(db *gorm.DB) JudgeDirectory {
	return judgePanel{repository.NewJudgeAssignmentRepository(db)}
}

func (p judgePanel) InTx(tx *gorm.DB) JudgeDirectory {
	return judgePanel{p.WithTx(tx)}
}

// MutationGuard is taken inside every score and deduction write transaction.
type MutationGuard interface {
	GuardMutation(ctx context.Context, tx *gorm.DB, categoryId int) (*repository.Category, error)
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, fmt.Sprintf("%s failed %q", fieldErr.Field(), fieldErr.Tag()))
		}
		return app_error.Validation("invalid input: %s", strings.Join(messages, ", "))
	}
	return app_error.Validation("invalid input: %v", err)
}

func requireText(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return app_error.Validation("%s must not be empty", field)
	}
	return nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// finish closes the span and counts a rejected operation by its error kind.
func finish(span trace.Span, operation string, err error) {
	defer span.End()
	if err == nil {
		return
	}
	kind, ok := app_error.KindOf(err)
	if !ok {
		kind = "INTERNAL"
	}
	metrics.RejectedOperationsCounter.WithLabelValues(operation, string(kind)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func emit(ctx context.Context, sink audit.Sink, record audit.Record) {
	if sink == nil {
		return
	}
	record.Timestamp = time.Now()
	if err := sink.Emit(ctx, record); err != nil {
		metrics.AuditFailuresCounter.Inc()
		log.Printf("failed to emit %s audit record for category %d: %v", record.Action, record.CategoryID, err)
	}
}

func intPtr(i int) *int {
	return &i
}
