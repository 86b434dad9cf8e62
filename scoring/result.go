package scoring

import (
	"sort"
	"tabulator/repository"
)

type Result struct {
	RawTotal                float64
	ApprovedDeductionPoints float64
	FinalScore              float64
}

// ComposeResult subtracts approved deductions from the raw total and clamps the
// outcome to [minScore, scoreCap or maxScore].
func ComposeResult(category *repository.Category, rawTotal float64, approvedDeductionPoints float64) Result {
	return Result{
		RawTotal:                rawTotal,
		ApprovedDeductionPoints: approvedDeductionPoints,
		FinalScore:              clamp(rawTotal-approvedDeductionPoints, category.MinScore, category.UpperBound()),
	}
}

func clamp(value, lower, upper float64) float64 {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}

type Standing struct {
	ContestantID int
	Rank         int
	Result       Result
}

// RankStandings orders standings by final score (highest first, contestant id
// breaking ties for ordering only) and assigns competition ranks: equal final
// scores share a rank and the next distinct score skips ahead.
func RankStandings(standings []*Standing) []*Standing {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Result.FinalScore == standings[j].Result.FinalScore {
			return standings[i].ContestantID < standings[j].ContestantID
		}
		return standings[i].Result.FinalScore > standings[j].Result.FinalScore
	})
	for i, standing := range standings {
		if i > 0 && standing.Result.FinalScore == standings[i-1].Result.FinalScore {
			standing.Rank = standings[i-1].Rank
			continue
		}
		standing.Rank = i + 1
	}
	return standings
}
