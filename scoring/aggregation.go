package scoring

import (
	"fmt"
	"sort"
	"tabulator/repository"
)

// CriterionMean is the judges' mean for one criterion, over the judges that
// actually scored it.
type CriterionMean struct {
	Criterion *repository.Criterion
	Mean      float64
	Sum       float64
	Count     int
}

type aggregationFunc func(means []*CriterionMean) float64

var aggregationFunctions = map[repository.ScoringMethod]aggregationFunc{
	repository.AVERAGE:  aggregateAverage,
	repository.SUM:      aggregateSum,
	repository.WEIGHTED: aggregateWeighted,
}

// Aggregate turns a contestant's raw scores into the category total. Criteria
// are visited by ascending id and judges by ascending id, so identical inputs
// always sum in the same order and produce the same bits.
func Aggregate(method repository.ScoringMethod, criteria []*repository.Criterion, scores []*repository.Score) (float64, error) {
	fun, ok := aggregationFunctions[method]
	if !ok {
		return 0, fmt.Errorf("unknown scoring method %q", method)
	}
	return fun(CriterionMeans(criteria, scores)), nil
}

// CriterionMeans groups scores by criterion and averages each group. Criteria
// without any score are left out, as are scores for criteria not in the list.
func CriterionMeans(criteria []*repository.Criterion, scores []*repository.Score) []*CriterionMean {
	ordered := make([]*repository.Criterion, len(criteria))
	copy(ordered, criteria)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	byCriterion := make(map[int][]*repository.Score)
	for _, score := range scores {
		byCriterion[score.CriterionID] = append(byCriterion[score.CriterionID], score)
	}

	means := make([]*CriterionMean, 0, len(ordered))
	for _, criterion := range ordered {
		criterionScores := byCriterion[criterion.ID]
		if len(criterionScores) == 0 {
			continue
		}
		sort.Slice(criterionScores, func(i, j int) bool {
			return criterionScores[i].JudgeID < criterionScores[j].JudgeID
		})
		mean := &CriterionMean{Criterion: criterion, Count: len(criterionScores)}
		for _, score := range criterionScores {
			mean.Sum += score.Value
		}
		mean.Mean = mean.Sum / float64(mean.Count)
		means = append(means, mean)
	}
	return means
}

func aggregateAverage(means []*CriterionMean) float64 {
	if len(means) == 0 {
		return 0
	}
	total := 0.0
	for _, mean := range means {
		total += mean.Mean
	}
	return total / float64(len(means))
}

func aggregateSum(means []*CriterionMean) float64 {
	total := 0.0
	for _, mean := range means {
		total += mean.Sum
	}
	return total
}

// aggregateWeighted normalises by the weights of the scored criteria only, so
// an unscored criterion neither adds nor dilutes.
func aggregateWeighted(means []*CriterionMean) float64 {
	weightSum := 0.0
	for _, mean := range means {
		weightSum += mean.Criterion.Weight
	}
	if weightSum <= 0 {
		return 0
	}
	total := 0.0
	for _, mean := range means {
		total += mean.Mean * (mean.Criterion.Weight / weightSum)
	}
	return total
}
