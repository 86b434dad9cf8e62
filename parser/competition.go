package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"tabulator/repository"
	"tabulator/service"

	"gopkg.in/yaml.v3"
)

type CriterionSpec struct {
	Name     string  `yaml:"name"`
	MaxScore float64 `yaml:"max_score"`
	Weight   float64 `yaml:"weight"`
}

type CategorySpec struct {
	Name          string          `yaml:"name"`
	ScoringMethod string          `yaml:"scoring_method"`
	MinScore      float64         `yaml:"min_score"`
	MaxScore      float64         `yaml:"max_score"`
	ScoreCap      *float64        `yaml:"score_cap"`
	Criteria      []CriterionSpec `yaml:"criteria"`
	Judges        []int           `yaml:"judges"`
}

type ContestantSpec struct {
	Name   string `yaml:"name"`
	Number string `yaml:"number"`
}

// Competition is the seed file layout:
//
//	contestants:
//	  - name: Ada
//	    number: "1"
//	categories:
//	  - name: Talent
//	    scoring_method: WEIGHTED
//	    max_score: 100
//	    judges: [1, 2, 3]
//	    criteria:
//	      - {name: Technique, max_score: 100, weight: 3}
type Competition struct {
	Contestants []ContestantSpec `yaml:"contestants"`
	Categories  []CategorySpec   `yaml:"categories"`
}

func (c *CategorySpec) Definition() service.CategoryDefinition {
	criteria := make([]service.CriterionDefinition, 0, len(c.Criteria))
	for _, criterion := range c.Criteria {
		weight := criterion.Weight
		if weight == 0 && c.ScoringMethod != string(repository.WEIGHTED) {
			weight = 1
		}
		criteria = append(criteria, service.CriterionDefinition{
			Name:     criterion.Name,
			MaxScore: criterion.MaxScore,
			Weight:   weight,
		})
	}
	return service.CategoryDefinition{
		Name:          c.Name,
		ScoringMethod: repository.ScoringMethod(c.ScoringMethod),
		MinScore:      c.MinScore,
		MaxScore:      c.MaxScore,
		ScoreCap:      c.ScoreCap,
		Criteria:      criteria,
	}
}

// ParseCompetition decodes a seed file, rejecting unknown keys.
func ParseCompetition(r io.Reader) (*Competition, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	competition := &Competition{}
	if err := decoder.Decode(competition); err != nil {
		if err == io.EOF {
			return competition, nil
		}
		return nil, fmt.Errorf("invalid competition file: %w", err)
	}
	return competition, nil
}

type CompetitionSeeder interface {
	GetCategories(ctx context.Context) ([]*repository.Category, error)
	CreateCategory(ctx context.Context, actor service.Actor, definition service.CategoryDefinition) (*repository.Category, error)
	CreateContestant(ctx context.Context, actor service.Actor, contestant *repository.Contestant) (*repository.Contestant, error)
	AssignJudges(ctx context.Context, actor service.Actor, categoryId int, judgeIds []int) error
}

// Seed creates the competition through the regular configuration operations.
// A database that already holds categories is left untouched.
func Seed(ctx context.Context, seeder CompetitionSeeder, actor service.Actor, competition *Competition) error {
	existing, err := seeder.GetCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Printf("Skipping competition seed, %d categories already exist", len(existing))
		return nil
	}
	for _, contestant := range competition.Contestants {
		if _, err := seeder.CreateContestant(ctx, actor, &repository.Contestant{Name: contestant.Name, Number: contestant.Number}); err != nil {
			return fmt.Errorf("contestant %q: %w", contestant.Name, err)
		}
	}
	for _, categorySpec := range competition.Categories {
		category, err := seeder.CreateCategory(ctx, actor, categorySpec.Definition())
		if err != nil {
			return fmt.Errorf("category %q: %w", categorySpec.Name, err)
		}
		if len(categorySpec.Judges) == 0 {
			continue
		}
		if err := seeder.AssignJudges(ctx, actor, category.ID, categorySpec.Judges); err != nil {
			return fmt.Errorf("judges of category %q: %w", categorySpec.Name, err)
		}
	}
	log.Printf("Seeded %d contestants and %d categories", len(competition.Contestants), len(competition.Categories))
	return nil
}

func SeedFromFile(ctx context.Context, seeder CompetitionSeeder, actor service.Actor, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	competition, err := ParseCompetition(file)
	if err != nil {
		return err
	}
	return Seed(ctx, seeder, actor, competition)
}
