package audit

import (
	"context"
	"errors"
	"log"
	"time"
)

type Action string

const (
	DeductionRequested Action = "DEDUCTION_REQUESTED"
	DeductionApproved  Action = "DEDUCTION_APPROVED"
	DeductionRejected  Action = "DEDUCTION_REJECTED"
	CategorySigned     Action = "CATEGORY_SIGNED"
	CategorySealed     Action = "CATEGORY_SEALED"
)

// Record is one compliance-relevant event emitted by the engine.
type Record struct {
	Action       Action    `json:"action"`
	CategoryID   int       `json:"category_id"`
	ContestantID *int      `json:"contestant_id,omitempty"`
	DeductionID  *int      `json:"deduction_id,omitempty"`
	JudgeID      *int      `json:"judge_id,omitempty"`
	ActorID      int       `json:"actor_id"`
	ActorRole    string    `json:"actor_role"`
	Detail       string    `json:"detail,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Sink receives audit records. The engine does not depend on delivery: a
// failing sink is logged and otherwise ignored.
type Sink interface {
	Emit(ctx context.Context, record Record) error
}

// MultiSink fans a record out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, record Record) error {
	errs := make([]error, 0)
	for _, sink := range m {
		if err := sink.Emit(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type LogSink struct{}

func (LogSink) Emit(_ context.Context, record Record) error {
	log.Printf("audit: %s category=%d actor=%d role=%s %s", record.Action, record.CategoryID, record.ActorID, record.ActorRole, record.Detail)
	return nil
}

// Discard drops every record.
type Discard struct{}

func (Discard) Emit(context.Context, Record) error { return nil }
