package controller

import (
	"strconv"
	"time"

	"tabulator/app_error"
	"tabulator/repository"
	"tabulator/scoring"
	"tabulator/service"
	"tabulator/utils"

	"github.com/gin-gonic/gin"
)

func intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		abort(c, app_error.Validation("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return value, true
}

func bindJSON(c *gin.Context, body any) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		abort(c, app_error.Validation("invalid request body: %v", err))
		return false
	}
	return true
}

type Criterion struct {
	Id       int     `json:"id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	MaxScore float64 `json:"max_score" binding:"required"`
	Weight   float64 `json:"weight" binding:"required"`
}

type Category struct {
	Id            int                      `json:"id" binding:"required"`
	Name          string                   `json:"name" binding:"required"`
	ScoringMethod repository.ScoringMethod `json:"scoring_method" binding:"required"`
	MinScore      float64                  `json:"min_score" binding:"required"`
	MaxScore      float64                  `json:"max_score" binding:"required"`
	ScoreCap      *float64                 `json:"score_cap"`
	SealedAt      *time.Time               `json:"sealed_at"`
	Criteria      []*Criterion             `json:"criteria"`
}

// CategorySummary is the cacheable listing of a category. Seal state and
// criteria are only served by the single-category endpoint.
type CategorySummary struct {
	Id            int                      `json:"id" binding:"required"`
	Name          string                   `json:"name" binding:"required"`
	ScoringMethod repository.ScoringMethod `json:"scoring_method" binding:"required"`
	MinScore      float64                  `json:"min_score" binding:"required"`
	MaxScore      float64                  `json:"max_score" binding:"required"`
	ScoreCap      *float64                 `json:"score_cap"`
}

type CriterionCreate struct {
	Name     string  `json:"name" binding:"required"`
	MaxScore float64 `json:"max_score" binding:"required"`
	Weight   float64 `json:"weight"`
}

type CategoryCreate struct {
	Name          string             `json:"name" binding:"required"`
	ScoringMethod string             `json:"scoring_method" binding:"required"`
	MinScore      float64            `json:"min_score"`
	MaxScore      float64            `json:"max_score" binding:"required"`
	ScoreCap      *float64           `json:"score_cap"`
	Criteria      []*CriterionCreate `json:"criteria" binding:"required"`
}

func (e *CategoryCreate) toDefinition() service.CategoryDefinition {
	return service.CategoryDefinition{
		Name:          e.Name,
		ScoringMethod: repository.ScoringMethod(e.ScoringMethod),
		MinScore:      e.MinScore,
		MaxScore:      e.MaxScore,
		ScoreCap:      e.ScoreCap,
		Criteria: utils.Map(e.Criteria, func(criterion *CriterionCreate) service.CriterionDefinition {
			return service.CriterionDefinition{Name: criterion.Name, MaxScore: criterion.MaxScore, Weight: criterion.Weight}
		}),
	}
}

func toCriterionResponse(criterion *repository.Criterion) *Criterion {
	return &Criterion{
		Id:       criterion.ID,
		Name:     criterion.Name,
		MaxScore: criterion.MaxScore,
		Weight:   criterion.Weight,
	}
}

func toCategoryResponse(category *repository.Category) *Category {
	return &Category{
		Id:            category.ID,
		Name:          category.Name,
		ScoringMethod: category.ScoringMethod,
		MinScore:      category.MinScore,
		MaxScore:      category.MaxScore,
		ScoreCap:      category.ScoreCap,
		SealedAt:      category.SealedAt,
		Criteria:      utils.Map(category.Criteria, toCriterionResponse),
	}
}

func toCategorySummaryResponse(category *repository.Category) *CategorySummary {
	return &CategorySummary{
		Id:            category.ID,
		Name:          category.Name,
		ScoringMethod: category.ScoringMethod,
		MinScore:      category.MinScore,
		MaxScore:      category.MaxScore,
		ScoreCap:      category.ScoreCap,
	}
}

type Contestant struct {
	Id     int    `json:"id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Number string `json:"number"`
}

type ContestantCreate struct {
	Name   string `json:"name" binding:"required"`
	Number string `json:"number"`
}

func (e *ContestantCreate) toModel() *repository.Contestant {
	return &repository.Contestant{Name: e.Name, Number: e.Number}
}

func toContestantResponse(contestant *repository.Contestant) *Contestant {
	return &Contestant{Id: contestant.ID, Name: contestant.Name, Number: contestant.Number}
}

type JudgeAssignment struct {
	JudgeIds []int `json:"judge_ids" binding:"required"`
}

type Score struct {
	Id           int       `json:"id" binding:"required"`
	CategoryId   int       `json:"category_id" binding:"required"`
	ContestantId int       `json:"contestant_id" binding:"required"`
	JudgeId      int       `json:"judge_id" binding:"required"`
	CriterionId  int       `json:"criterion_id" binding:"required"`
	Value        float64   `json:"value" binding:"required"`
	Comment      string    `json:"comment"`
	IsSigned     bool      `json:"is_signed" binding:"required"`
	UpdatedAt    time.Time `json:"updated_at" binding:"required"`
}

type ScoreCreate struct {
	ContestantId int     `json:"contestant_id" binding:"required"`
	CriterionId  int     `json:"criterion_id" binding:"required"`
	Value        float64 `json:"value"`
	Comment      string  `json:"comment"`
}

func toScoreResponse(score *repository.Score) *Score {
	return &Score{
		Id:           score.ID,
		CategoryId:   score.CategoryID,
		ContestantId: score.ContestantID,
		JudgeId:      score.JudgeID,
		CriterionId:  score.CriterionID,
		Value:        score.Value,
		Comment:      score.Comment,
		IsSigned:     score.IsSigned,
		UpdatedAt:    score.UpdatedAt,
	}
}

type Deduction struct {
	Id              int                        `json:"id" binding:"required"`
	CategoryId      int                        `json:"category_id" binding:"required"`
	ContestantId    int                        `json:"contestant_id" binding:"required"`
	Points          float64                    `json:"points" binding:"required"`
	Reason          string                     `json:"reason" binding:"required"`
	RequestedBy     int                        `json:"requested_by" binding:"required"`
	Status          repository.DeductionStatus `json:"status" binding:"required"`
	ApprovedBy      *string                    `json:"approved_by"`
	RejectionReason *string                    `json:"rejection_reason"`
	ResolvedBy      *int                       `json:"resolved_by"`
	ResolvedAt      *time.Time                 `json:"resolved_at"`
	CreatedAt       time.Time                  `json:"created_at" binding:"required"`
}

type DeductionCreate struct {
	ContestantId int     `json:"contestant_id" binding:"required"`
	Points       float64 `json:"points" binding:"required"`
	Reason       string  `json:"reason" binding:"required"`
}

type DeductionRejection struct {
	Reason string `json:"reason" binding:"required"`
}

func toDeductionResponse(deduction *repository.Deduction) *Deduction {
	return &Deduction{
		Id:              deduction.ID,
		CategoryId:      deduction.CategoryID,
		ContestantId:    deduction.ContestantID,
		Points:          deduction.Points,
		Reason:          deduction.Reason,
		RequestedBy:     deduction.RequestedBy,
		Status:          deduction.Status,
		ApprovedBy:      deduction.ApprovedBy,
		RejectionReason: deduction.RejectionReason,
		ResolvedBy:      deduction.ResolvedBy,
		ResolvedAt:      deduction.ResolvedAt,
		CreatedAt:       deduction.CreatedAt,
	}
}

type Signature struct {
	Signature string `json:"signature" binding:"required"`
}

type SignOutcome struct {
	Recorded  bool `json:"recorded" binding:"required"`
	Sealed    bool `json:"sealed" binding:"required"`
	SealedNow bool `json:"sealed_now" binding:"required"`
}

type CertificationRecord struct {
	JudgeId   int       `json:"judge_id" binding:"required"`
	Signature string    `json:"signature" binding:"required"`
	SignedAt  time.Time `json:"signed_at" binding:"required"`
}

type CertificationStatus struct {
	CategoryId     int                    `json:"category_id" binding:"required"`
	RequiredJudges []int                  `json:"required_judges" binding:"required"`
	SignedJudges   []int                  `json:"signed_judges" binding:"required"`
	Records        []*CertificationRecord `json:"records" binding:"required"`
	Sealed         bool                   `json:"sealed" binding:"required"`
	SealedAt       *time.Time             `json:"sealed_at"`
}

func toCertificationStatusResponse(status *service.CertificationStatus) *CertificationStatus {
	return &CertificationStatus{
		CategoryId:     status.CategoryID,
		RequiredJudges: status.RequiredJudges,
		SignedJudges:   status.SignedJudges,
		Records: utils.Map(status.Records, func(record *repository.CertificationRecord) *CertificationRecord {
			return &CertificationRecord{JudgeId: record.JudgeID, Signature: record.Signature, SignedAt: record.SignedAt}
		}),
		Sealed:   status.IsSealed(),
		SealedAt: status.SealedAt,
	}
}

type Result struct {
	RawTotal                float64 `json:"raw_total" binding:"required"`
	ApprovedDeductionPoints float64 `json:"approved_deduction_points" binding:"required"`
	FinalScore              float64 `json:"final_score" binding:"required"`
}

type Standing struct {
	ContestantId int    `json:"contestant_id" binding:"required"`
	Rank         int    `json:"rank" binding:"required"`
	Result       Result `json:"result" binding:"required"`
}

type CategoryStandings struct {
	CategoryId int         `json:"category_id" binding:"required"`
	Sealed     bool        `json:"sealed" binding:"required"`
	Standings  []*Standing `json:"standings" binding:"required"`
}

func toResultResponse(result scoring.Result) Result {
	return Result{
		RawTotal:                result.RawTotal,
		ApprovedDeductionPoints: result.ApprovedDeductionPoints,
		FinalScore:              result.FinalScore,
	}
}

func toStandingResponse(standing *scoring.Standing) *Standing {
	return &Standing{
		ContestantId: standing.ContestantID,
		Rank:         standing.Rank,
		Result:       toResultResponse(standing.Result),
	}
}
