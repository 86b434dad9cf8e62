package parser

import (
	"context"
	"strings"
	"testing"

	"tabulator/repository"
	"tabulator/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const competitionYaml = `
contestants:
  - name: Ada
    number: "1"
  - name: Grace
    number: "2"
categories:
  - name: Talent
    scoring_method: WEIGHTED
    max_score: 100
    judges: [1, 2]
    criteria:
      - {name: Technique, max_score: 100, weight: 3}
      - {name: Presence, max_score: 100, weight: 1}
  - name: Interview
    scoring_method: AVERAGE
    max_score: 10
    score_cap: 9.5
    criteria:
      - {name: Poise, max_score: 10}
`

type fakeSeeder struct {
	existing    []*repository.Category
	definitions []service.CategoryDefinition
	contestants []*repository.Contestant
	judges      map[int][]int
}

func (f *fakeSeeder) GetCategories(context.Context) ([]*repository.Category, error) {
	return f.existing, nil
}

func (f *fakeSeeder) CreateCategory(_ context.Context, _ service.Actor, definition service.CategoryDefinition) (*repository.Category, error) {
	f.definitions = append(f.definitions, definition)
	return &repository.Category{ID: len(f.definitions)}, nil
}

func (f *fakeSeeder) CreateContestant(_ context.Context, _ service.Actor, contestant *repository.Contestant) (*repository.Contestant, error) {
	f.contestants = append(f.contestants, contestant)
	return contestant, nil
}

func (f *fakeSeeder) AssignJudges(_ context.Context, _ service.Actor, categoryId int, judgeIds []int) error {
	if f.judges == nil {
		f.judges = make(map[int][]int)
	}
	f.judges[categoryId] = judgeIds
	return nil
}

func TestParseCompetition(t *testing.T) {
	competition, err := ParseCompetition(strings.NewReader(competitionYaml))
	require.NoError(t, err)
	require.Len(t, competition.Contestants, 2)
	require.Len(t, competition.Categories, 2)

	talent := competition.Categories[0].Definition()
	assert.Equal(t, repository.WEIGHTED, talent.ScoringMethod)
	assert.Equal(t, 3.0, talent.Criteria[0].Weight)

	interview := competition.Categories[1].Definition()
	require.NotNil(t, interview.ScoreCap)
	assert.Equal(t, 9.5, *interview.ScoreCap)
	assert.Equal(t, 1.0, interview.Criteria[0].Weight, "unweighted methods default to weight 1")
}

func TestParseCompetitionRejectsUnknownKeys(t *testing.T) {
	_, err := ParseCompetition(strings.NewReader("categories:\n  - name: Talent\n    scoring: SUM\n"))
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	competition, err := ParseCompetition(strings.NewReader(competitionYaml))
	require.NoError(t, err)
	seeder := &fakeSeeder{}
	organizer := service.Actor{ID: 1, Role: service.RoleOrganizer}

	require.NoError(t, Seed(context.Background(), seeder, organizer, competition))
	assert.Len(t, seeder.contestants, 2)
	assert.Len(t, seeder.definitions, 2)
	assert.Equal(t, map[int][]int{1: {1, 2}}, seeder.judges)
}

func TestSeedSkipsPopulatedDatabase(t *testing.T) {
	competition, err := ParseCompetition(strings.NewReader(competitionYaml))
	require.NoError(t, err)
	seeder := &fakeSeeder{existing: []*repository.Category{{ID: 9}}}

	require.NoError(t, Seed(context.Background(), seeder, service.Actor{ID: 1, Role: service.RoleOrganizer}, competition))
	assert.Empty(t, seeder.definitions)
	assert.Empty(t, seeder.contestants)
}
