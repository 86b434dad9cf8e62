package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"tabulator/app_error"
	"tabulator/audit"
	"tabulator/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestQuorumReached(t *testing.T) {
	assert.False(t, quorumReached(nil, nil), "an empty panel never seals")
	assert.False(t, quorumReached([]int{}, []int{1}))
	assert.False(t, quorumReached([]int{1, 2}, []int{1}))
	assert.True(t, quorumReached([]int{1, 2}, []int{2, 1}))
	assert.True(t, quorumReached([]int{1}, []int{1, 5}))
}

func TestSigningSealsOnFullQuorum(t *testing.T) {
	f := setUp(t)
	f.submit(t, judgeOne, f.criterionA, 80)
	f.submit(t, judgeTwo, f.criterionA, 90)

	outcome, err := f.certification.Sign(f.ctx, judgeOne, f.category.ID, judgeOne.ID, "J. One")
	require.NoError(t, err)
	assert.Equal(t, &SignOutcome{Recorded: true}, outcome)

	sealed, err := f.certification.IsSealed(f.ctx, f.category.ID)
	require.NoError(t, err)
	assert.False(t, sealed)

	outcome, err = f.certification.Sign(f.ctx, judgeOne, f.category.ID, judgeOne.ID, "J. One")
	require.NoError(t, err)
	assert.Equal(t, &SignOutcome{}, outcome, "signing twice is a no-op")

	outcome, err = f.certification.Sign(f.ctx, judgeTwo, f.category.ID, judgeTwo.ID, "J. Two")
	require.NoError(t, err)
	assert.Equal(t, &SignOutcome{Recorded: true, Sealed: true, SealedNow: true}, outcome)

	status, err := f.certification.GetCertificationStatus(f.ctx, f.category.ID)
	require.NoError(t, err)
	assert.True(t, status.IsSealed())
	assert.ElementsMatch(t, []int{judgeOne.ID, judgeTwo.ID}, status.SignedJudges)
	assert.Equal(t, []int{judgeOne.ID, judgeTwo.ID}, status.RequiredJudges)

	scores, err := f.scores.GetScoresFor(f.ctx, f.category.ID, f.contestant.ID)
	require.NoError(t, err)
	for _, score := range scores {
		assert.True(t, score.IsSigned)
		assert.NotNil(t, score.SignedAt)
	}

	assert.Equal(t, []audit.Action{audit.CategorySigned, audit.CategorySigned, audit.CategorySealed}, f.sink.actions())
}

func TestSealedCategoryRejectsMutations(t *testing.T) {
	f := setUp(t)
	f.submit(t, judgeOne, f.criterionA, 80)
	f.submit(t, judgeTwo, f.criterionA, 90)
	pending := f.requestDeduction(t, 4)

	_, err := f.certification.Sign(f.ctx, judgeOne, f.category.ID, judgeOne.ID, "J. One")
	require.NoError(t, err)
	_, err = f.certification.Sign(f.ctx, judgeTwo, f.category.ID, judgeTwo.ID, "J. Two")
	require.NoError(t, err)

	before, err := f.results.GetResult(f.ctx, f.category.ID, f.contestant.ID)
	require.NoError(t, err)

	_, err = f.scores.SubmitScore(f.ctx, judgeOne, ScoreSubmission{
		CategoryID:   f.category.ID,
		ContestantID: f.contestant.ID,
		JudgeID:      judgeOne.ID,
		CriterionID:  f.criterionA.ID,
		Value:        10,
	})
	assert.True(t, app_error.IsConflict(err), "score after seal: %v", err)

	_, err = f.deductions.RequestDeduction(f.ctx, judgeOne, DeductionRequest{
		CategoryID:   f.category.ID,
		ContestantID: f.contestant.ID,
		Points:       1,
		Reason:       "late",
	})
	assert.True(t, app_error.IsConflict(err), "deduction request after seal: %v", err)

	_, err = f.deductions.ApproveDeduction(f.ctx, tallyMaster, pending.ID, "T. Master")
	assert.True(t, app_error.IsConflict(err), "approval after seal: %v", err)
	_, err = f.deductions.RejectDeduction(f.ctx, tallyMaster, pending.ID, "too late")
	assert.True(t, app_error.IsConflict(err), "rejection after seal: %v", err)

	err = f.categories.AssignJudges(f.ctx, organizer, f.category.ID, []int{judgeThree.ID})
	assert.True(t, app_error.IsConflict(err), "panel change after seal: %v", err)

	after, err := f.results.GetResult(f.ctx, f.category.ID, f.contestant.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 85.0, after.FinalScore)

	stored, err := f.deductions.GetDeduction(f.ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.DeductionPending, stored.Status)

	outcome, err := f.certification.Sign(f.ctx, judgeOne, f.category.ID, judgeOne.ID, "J. One")
	require.NoError(t, err, "signing a sealed category stays a no-op")
	assert.Equal(t, &SignOutcome{Sealed: true}, outcome)
}

func TestSignRequiresAssignedJudge(t *testing.T) {
	f := setUp(t)

	_, err := f.certification.Sign(f.ctx, judgeThree, f.category.ID, judgeThree.ID, "J. Three")
	assert.True(t, app_error.IsAuthorization(err), "unassigned judge: %v", err)

	_, err = f.certification.Sign(f.ctx, judgeTwo, f.category.ID, judgeOne.ID, "J. One")
	assert.True(t, app_error.IsAuthorization(err), "signing for someone else: %v", err)

	_, err = f.certification.Sign(f.ctx, judgeOne, f.category.ID, judgeOne.ID, " ")
	assert.True(t, app_error.IsValidation(err))

	_, err = f.certification.Sign(f.ctx, judgeOne, f.category.ID+1000, judgeOne.ID, "J. One")
	assert.True(t, app_error.IsNotFound(err))
}

func TestEmptyPanelNeverSeals(t *testing.T) {
	f := setUp(t)
	empty, err := f.categories.CreateCategory(f.ctx, organizer, CategoryDefinition{
		Name:          "Unstaffed",
		ScoringMethod: repository.AVERAGE,
		MaxScore:      10,
		Criteria:      []CriterionDefinition{{Name: "Anything", MaxScore: 10}},
	})
	require.NoError(t, err)

	_, err = f.certification.Sign(f.ctx, judgeOne, empty.ID, judgeOne.ID, "J. One")
	assert.True(t, app_error.IsAuthorization(err))
	sealed, err := f.certification.IsSealed(f.ctx, empty.ID)
	require.NoError(t, err)
	assert.False(t, sealed)
}

func TestConcurrentSignaturesSealOnce(t *testing.T) {
	f := setUp(t)
	f.submit(t, judgeOne, f.criterionA, 80)
	f.submit(t, judgeTwo, f.criterionA, 90)

	var sealedNow atomic.Int32
	var g errgroup.Group
	for _, judge := range []Actor{judgeOne, judgeTwo} {
		g.Go(func() error {
			outcome, err := f.certification.Sign(f.ctx, judge, f.category.ID, judge.ID, "signed")
			if err != nil {
				return err
			}
			if !outcome.Recorded {
				return assert.AnError
			}
			if outcome.SealedNow {
				sealedNow.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), sealedNow.Load())

	status, err := f.certification.GetCertificationStatus(f.ctx, f.category.ID)
	require.NoError(t, err)
	assert.True(t, status.IsSealed())
	assert.Len(t, status.Records, 2)
}

// growingPanel adds judges to the panel right after the pre-lock assignment
// check, the way a concurrent AssignJudges can commit before Sign locks.
type growingPanel struct {
	JudgeDirectory
	once sync.Once
	grow func()
}

func (p *growingPanel) IsAssignedJudge(ctx context.Context, categoryId int, judgeId int) (bool, error) {
	assigned, err := p.JudgeDirectory.IsAssignedJudge(ctx, categoryId, judgeId)
	p.once.Do(p.grow)
	return assigned, err
}

func TestSignCountsJudgesAssignedBeforeTheLock(t *testing.T) {
	f := setUp(t)
	_, err := f.certification.Sign(f.ctx, judgeOne, f.category.ID, judgeOne.ID, "J. One")
	require.NoError(t, err)

	panel := &growingPanel{
		JudgeDirectory: NewJudgeDirectory(db),
		grow: func() {
			require.NoError(t, f.categories.AssignJudges(f.ctx, organizer, f.category.ID, []int{judgeThree.ID}))
		},
	}
	certification := NewCertificationService(db, panel, f.sink)

	outcome, err := certification.Sign(f.ctx, judgeTwo, f.category.ID, judgeTwo.ID, "J. Two")
	require.NoError(t, err)
	assert.Equal(t, &SignOutcome{Recorded: true}, outcome, "judge 3 joined the panel and has not signed")
	sealed, err := f.certification.IsSealed(f.ctx, f.category.ID)
	require.NoError(t, err)
	assert.False(t, sealed)

	outcome, err = f.certification.Sign(f.ctx, judgeThree, f.category.ID, judgeThree.ID, "J. Three")
	require.NoError(t, err)
	assert.Equal(t, &SignOutcome{Recorded: true, Sealed: true, SealedNow: true}, outcome)
}
