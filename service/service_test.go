package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"testing"

	"tabulator/audit"
	"tabulator/config"
	"tabulator/repository"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Printf("Could not construct pool, skipping database tests: %s", err)
		m.Run()
		return
	}
	if err = pool.Client.Ping(); err != nil {
		log.Printf("Could not connect to Docker, skipping database tests: %s", err)
		m.Run()
		return
	}

	resource, err := pool.Run("postgres", "17.2-alpine", []string{"POSTGRES_USER=postgres", "POSTGRES_PASSWORD=postgres", "DATABASE_NAME=postgres"})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}
	resource.Expire(600)
	dsn := fmt.Sprintf(
		"host=localhost port=%s user=postgres password=postgres dbname=postgres sslmode=disable",
		resource.GetPort("5432/tcp"))

	if err := pool.Retry(func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), config.GormConfig())
		if err != nil {
			return err
		}
		return repository.Migrate(db)
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Fatalf("Could not purge resource: %s", err)
		}
	}()
	m.Run()
}

func tearDown() {
	session := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	session.Delete(&repository.CertificationRecord{})
	session.Delete(&repository.Deduction{})
	session.Delete(&repository.Score{})
	session.Delete(&repository.JudgeAssignment{})
	session.Delete(&repository.Criterion{})
	session.Delete(&repository.Contestant{})
	session.Delete(&repository.Category{})
}

type recordingSink struct {
	mu      sync.Mutex
	records []audit.Record
}

func (s *recordingSink) Emit(_ context.Context, record audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *recordingSink) actions() []audit.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]audit.Action, 0, len(s.records))
	for _, record := range s.records {
		actions = append(actions, record.Action)
	}
	return actions
}

var (
	organizer   = Actor{ID: 100, Role: RoleOrganizer}
	tallyMaster = Actor{ID: 200, Role: RoleTallyMaster}
	judgeOne    = Actor{ID: 1, Role: RoleJudge}
	judgeTwo    = Actor{ID: 2, Role: RoleJudge}
	judgeThree  = Actor{ID: 3, Role: RoleJudge}
)

type fixture struct {
	ctx           context.Context
	sink          *recordingSink
	categories    *CategoryService
	scores        *ScoreService
	deductions    *DeductionService
	certification *CertificationService
	results       *ResultService
	category      *repository.Category
	contestant    *repository.Contestant
	criterionA    *repository.Criterion
	criterionB    *repository.Criterion
}

// setUp creates an AVERAGE category scored 0..100 on two criteria with judges 1
// and 2 on its panel, plus one contestant.
func setUp(t *testing.T) *fixture {
	t.Helper()
	if db == nil {
		t.Skip("database not available")
	}
	tearDown()
	t.Cleanup(tearDown)

	f := &fixture{ctx: context.Background(), sink: &recordingSink{}}
	judges := NewJudgeDirectory(db)
	f.categories = NewCategoryService(db)
	f.certification = NewCertificationService(db, judges, f.sink)
	f.scores = NewScoreService(db, judges, f.certification)
	f.deductions = NewDeductionService(db, f.certification, DefaultPolicy(), f.sink)
	f.results = NewResultService(db)

	var err error
	f.category, err = f.categories.CreateCategory(f.ctx, organizer, CategoryDefinition{
		Name:          "Talent",
		ScoringMethod: repository.AVERAGE,
		MinScore:      0,
		MaxScore:      100,
		Criteria: []CriterionDefinition{
			{Name: "Technique", MaxScore: 100, Weight: 1},
			{Name: "Stage presence", MaxScore: 100, Weight: 1},
		},
	})
	require.NoError(t, err)
	f.criterionA = f.category.Criteria[0]
	f.criterionB = f.category.Criteria[1]

	f.contestant, err = f.categories.CreateContestant(f.ctx, organizer, &repository.Contestant{Name: "Contestant One", Number: "7"})
	require.NoError(t, err)
	require.NoError(t, f.categories.AssignJudges(f.ctx, organizer, f.category.ID, []int{judgeOne.ID, judgeTwo.ID}))
	return f
}

func (f *fixture) submit(t *testing.T, judge Actor, criterion *repository.Criterion, value float64) *repository.Score {
	t.Helper()
	score, err := f.scores.SubmitScore(f.ctx, judge, ScoreSubmission{
		CategoryID:   f.category.ID,
		ContestantID: f.contestant.ID,
		JudgeID:      judge.ID,
		CriterionID:  criterion.ID,
		Value:        value,
	})
	require.NoError(t, err)
	return score
}

func (f *fixture) requestDeduction(t *testing.T, points float64) *repository.Deduction {
	t.Helper()
	deduction, err := f.deductions.RequestDeduction(f.ctx, judgeOne, DeductionRequest{
		CategoryID:   f.category.ID,
		ContestantID: f.contestant.ID,
		Points:       points,
		Reason:       "exceeded time limit",
	})
	require.NoError(t, err)
	return deduction
}
